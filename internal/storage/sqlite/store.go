// Package sqlite 本機單檔設定儲存，預設用來保存 API Key
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ViralGen-admin/internal/credential"
	"ViralGen-admin/internal/logging"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store 以 app_settings 資料表實作 credential.SettingsStore
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open 開啟 (必要時建立) 資料庫檔案並套用遷移；path 為 ":memory:" 時不建立目錄
func Open(path string, logger *slog.Logger) (*Store, error) {
	logger = logging.WithComponent(logger, "SQLiteStore")
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("無法建立資料庫目錄: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("開啟 SQLite 資料庫失敗: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("無法連線到 SQLite 資料庫 (ping 失敗): %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("執行 %s 失敗: %w", pragma, err)
		}
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("SQLite 遷移失敗: %w", err)
	}
	logger.Info("SQLite 設定儲存初始化成功", "path", path)
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("讀取遷移檔案失敗: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if s.isApplied(name) {
			continue
		}
		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("讀取遷移 %s 失敗: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("執行遷移 %s 失敗: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO _migrations (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("記錄遷移 %s 失敗: %w", name, err)
		}
		s.logger.Info("已套用遷移", "name", name)
	}
	return nil
}

func (s *Store) isApplied(name string) bool {
	var exists int
	if err := s.db.QueryRow("SELECT 1 FROM sqlite_master WHERE type='table' AND name='_migrations'").Scan(&exists); err != nil {
		return false
	}
	var applied int
	err := s.db.QueryRow("SELECT 1 FROM _migrations WHERE name = ?", name).Scan(&applied)
	return err == nil && applied == 1
}

func (s *Store) GetSetting(ctx context.Context, name string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM app_settings WHERE name = ?", name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", credential.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("查詢設定 %s 失敗: %w", name, err)
	}
	return value, nil
}

func (s *Store) PutSetting(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_settings (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, name, value)
	if err != nil {
		return fmt.Errorf("寫入設定 %s 失敗: %w", name, err)
	}
	return nil
}

func (s *Store) DeleteSetting(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM app_settings WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("刪除設定 %s 失敗: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return credential.ErrNotFound
	}
	return nil
}
