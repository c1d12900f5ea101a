// Package credential 保存使用者輸入的 Gemini API Key
package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"ViralGen-admin/internal/logging"
)

// ErrBlankKey 儲存空白金鑰
var ErrBlankKey = errors.New("API Key 不得為空")

// ErrNotFound 由 SettingsStore 在找不到設定時回傳
var ErrNotFound = errors.New("設定不存在")

// Provider 讀取/儲存/清除 API Key，呼叫分析時才讀取
type Provider interface {
	// Load 尚未儲存時回傳空字串與 nil
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// SettingsStore 鍵值設定表，由 sqlite 與 mysql 套件實作
type SettingsStore interface {
	GetSetting(ctx context.Context, name string) (string, error)
	PutSetting(ctx context.Context, name, value string) error
	DeleteSetting(ctx context.Context, name string) error
}

// Status 頁面顯示用，不含完整金鑰
type Status struct {
	Saved  bool   `json:"saved"`
	Masked string `json:"masked,omitempty"`
}

// Describe 回傳目前的保存狀態
func Describe(ctx context.Context, p Provider) (Status, error) {
	key, err := p.Load(ctx)
	if err != nil {
		return Status{}, err
	}
	if key == "" {
		return Status{}, nil
	}
	return Status{Saved: true, Masked: logging.SanitizeToken(key)}, nil
}

// MemoryProvider 只存在記憶體中，程序結束即消失
type MemoryProvider struct {
	mu  sync.RWMutex
	key string
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{}
}

func (m *MemoryProvider) Load(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.key, nil
}

func (m *MemoryProvider) Save(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrBlankKey
	}
	m.mu.Lock()
	m.key = key
	m.mu.Unlock()
	return nil
}

func (m *MemoryProvider) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.key = ""
	m.mu.Unlock()
	return nil
}

// StoreProvider 將金鑰存放在 SettingsStore 的單一設定項目
type StoreProvider struct {
	store  SettingsStore
	name   string
	logger *slog.Logger
}

// NewStoreProvider name 為設定項目名稱，例如 "gemini_api_key"
func NewStoreProvider(store SettingsStore, name string, logger *slog.Logger) (*StoreProvider, error) {
	if store == nil {
		return nil, fmt.Errorf("SettingsStore 不得為 nil")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("設定項目名稱不得為空")
	}
	return &StoreProvider{store: store, name: name, logger: logging.WithComponent(logger, "CredentialStore")}, nil
}

func (p *StoreProvider) Load(ctx context.Context) (string, error) {
	v, err := p.store.GetSetting(ctx, p.name)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("讀取 API Key 失敗: %w", err)
	}
	return v, nil
}

func (p *StoreProvider) Save(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrBlankKey
	}
	if err := p.store.PutSetting(ctx, p.name, key); err != nil {
		return fmt.Errorf("儲存 API Key 失敗: %w", err)
	}
	p.logger.Info("API Key 已儲存", "key", logging.SanitizeToken(key))
	return nil
}

func (p *StoreProvider) Clear(ctx context.Context) error {
	if err := p.store.DeleteSetting(ctx, p.name); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("清除 API Key 失敗: %w", err)
	}
	p.logger.Info("API Key 已清除")
	return nil
}
