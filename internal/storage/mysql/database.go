// Package mysql 以 MySQL 的 app_settings 資料表保存設定，供多台主機共用同一把 API Key
package mysql

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ViralGen-admin/internal/config"
	"ViralGen-admin/internal/credential"
	"ViralGen-admin/internal/logging"

	driver "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MySQLStore 結構
type MySQLStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// DSN 依設定組出連線字串
func DSN(dbCfg config.DatabaseConfig) string {
	c := driver.NewConfig()
	c.User = dbCfg.User
	c.Passwd = dbCfg.Password
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", dbCfg.Host, dbCfg.Port)
	c.DBName = dbCfg.DBName
	c.ParseTime = true
	c.Loc = time.Local
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

// NewMySQLStore 連線、設定連線池並執行遷移
func NewMySQLStore(ctx context.Context, dbCfg config.DatabaseConfig, logger *slog.Logger) (*MySQLStore, error) {
	logger = logging.WithComponent(logger, "MySQLStore")
	if dbCfg.Driver != "mysql" {
		return nil, fmt.Errorf("不支援的資料庫驅動程式: %s", dbCfg.Driver)
	}
	db, err := sql.Open("mysql", DSN(dbCfg))
	if err != nil {
		return nil, fmt.Errorf("開啟資料庫連線失敗: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("無法連線到資料庫 (ping 失敗): %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &MySQLStore{db: db, logger: logger}
	if err := s.migrate(dbCfg.DBName); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("成功連線到 MySQL 資料庫", "host", dbCfg.Host, "db", dbCfg.DBName)
	return s, nil
}

func (s *MySQLStore) migrate(dbName string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("讀取遷移檔案失敗: %w", err)
	}
	target, err := migratemysql.WithInstance(s.db, &migratemysql.Config{DatabaseName: dbName})
	if err != nil {
		return fmt.Errorf("建立遷移實例失敗: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "mysql", target)
	if err != nil {
		return fmt.Errorf("建立遷移實例失敗: %w", err)
	}

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("獲取資料庫遷移版本失敗: %w", err)
	}
	if dirty {
		return fmt.Errorf("資料庫處於 dirty 狀態 (版本 %d)，遷移失敗", currentVersion)
	}
	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		s.logger.Info("資料庫結構已是最新，無需遷移", "version", currentVersion)
	case err != nil:
		return fmt.Errorf("執行資料庫遷移 (m.Up) 失敗: %w", err)
	default:
		newVersion, _, _ := m.Version()
		s.logger.Info("資料庫遷移成功完成", "version", newVersion)
	}
	return nil
}

func (s *MySQLStore) Close() error {
	if s.db != nil {
		s.logger.Info("正在關閉 MySQL 資料庫連線")
		return s.db.Close()
	}
	return nil
}

func (s *MySQLStore) GetSetting(ctx context.Context, name string) (string, error) {
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

func (s *MySQLStore) PutSetting(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO app_settings (name, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)",
		name, value)
	if err != nil {
		return fmt.Errorf("寫入設定 %s 失敗: %w", name, err)
	}
	return nil
}

func (s *MySQLStore) DeleteSetting(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM app_settings WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("刪除設定 %s 失敗: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return credential.ErrNotFound
	}
	return nil
}
