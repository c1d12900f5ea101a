// Package storage 依設定選擇 API Key 的保存位置
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"ViralGen-admin/internal/config"
	"ViralGen-admin/internal/credential"
	"ViralGen-admin/internal/logging"
	"ViralGen-admin/internal/storage/mysql"
	"ViralGen-admin/internal/storage/sqlite"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenCredentialProvider 依 credential.store 建立 Provider；回傳的 Closer 需在結束時關閉
func OpenCredentialProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (credential.Provider, io.Closer, error) {
	var store interface {
		credential.SettingsStore
		io.Closer
	}
	switch cfg.Credential.Store {
	case "memory":
		logging.WithComponent(logger, "CredentialProvider").Warn("API Key 只保存在記憶體中，重新啟動後需重新輸入")
		return credential.NewMemoryProvider(), nopCloser{}, nil
	case "sqlite":
		s, err := sqlite.Open(cfg.Credential.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		store = s
	case "mysql":
		s, err := mysql.NewMySQLStore(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		store = s
	default:
		return nil, nil, fmt.Errorf("不支援的 credential.store: %s", cfg.Credential.Store)
	}

	p, err := credential.NewStoreProvider(store, cfg.Credential.Key, logger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return p, store, nil
}
