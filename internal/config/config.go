package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AnalysisPrompts 目前使用的 Prompt 版本
type AnalysisPrompts struct {
	CurrentVersion string `mapstructure:"currentVersion"`
}

// PromptConfig 結構
type PromptConfig struct {
	Analysis AnalysisPrompts `mapstructure:"analysis"`
}

// SchedulerConfig 暫存清理排程
type SchedulerConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	SweepCronSpec string `mapstructure:"sweepCronSpec"`
}

// Config 結構
type Config struct {
	AppName    string           `mapstructure:"appName"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Prompts    PromptConfig     `mapstructure:"prompts"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Credential CredentialConfig `mapstructure:"credential"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Staging    StagingConfig    `mapstructure:"staging"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// GeminiConfig 不包含 API Key；金鑰由 credential.Provider 在呼叫時讀取
type GeminiConfig struct {
	Model             string        `mapstructure:"model"`
	Endpoint          string        `mapstructure:"endpoint"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requestsPerMinute"`
}

type UploadConfig struct {
	MaxVideoBytes int64 `mapstructure:"maxVideoBytes"`
	MaxImageBytes int64 `mapstructure:"maxImageBytes"`
}

// CredentialConfig 決定 API Key 的儲存位置
// store: sqlite | mysql | memory
type CredentialConfig struct {
	Store      string `mapstructure:"store"`
	Key        string `mapstructure:"key"`
	SQLitePath string `mapstructure:"sqlitePath"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbName"`
}

type StagingConfig struct {
	Path      string        `mapstructure:"path"`
	Retention time.Duration `mapstructure:"retention"`
}

// Load 讀取設定檔、.env 與環境變數
func Load(configPath string, configName string) (*Config, error) {
	// 正式環境由部署平台注入環境變數，不讀 .env
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Printf("警告：讀取 .env 失敗: %v\n", err)
		}
	}

	v := viper.New()
	v.AddConfigPath(configPath)
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			fmt.Println("警告：找不到設定檔，將使用預設值和環境變數。")
		} else {
			return nil, fmt.Errorf("讀取設定檔時發生錯誤: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("無法解析設定檔到結構: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("appName", "ViralGen")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")

	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.endpoint", "")
	v.SetDefault("gemini.timeout", 5*time.Minute)
	v.SetDefault("gemini.requestsPerMinute", 10)

	v.SetDefault("prompts.analysis.currentVersion", "feature-mimicry")

	v.SetDefault("upload.maxVideoBytes", 10*1024*1024)
	v.SetDefault("upload.maxImageBytes", 20*1024*1024)

	v.SetDefault("credential.store", "sqlite")
	v.SetDefault("credential.key", "gemini_api_key")
	v.SetDefault("credential.sqlitePath", "./data/viralgen.db")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)

	v.SetDefault("staging.path", "./data/staging")
	v.SetDefault("staging.retention", 24*time.Hour)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.sweepCronSpec", "0 */15 * * * *")
}

// Validate 檢查彼此相依的設定
func (c *Config) Validate() error {
	switch c.Credential.Store {
	case "sqlite", "memory":
	case "mysql":
		if c.Database.DBName == "" {
			return fmt.Errorf("credential.store 為 mysql 時必須設定 database.dbName")
		}
	default:
		return fmt.Errorf("不支援的 credential.store: %s", c.Credential.Store)
	}
	if c.Credential.Key == "" {
		return fmt.Errorf("credential.key 不得為空")
	}
	if c.Upload.MaxVideoBytes <= 0 {
		return fmt.Errorf("upload.maxVideoBytes 必須大於 0")
	}
	if c.Upload.MaxImageBytes <= 0 {
		return fmt.Errorf("upload.maxImageBytes 必須大於 0")
	}
	if c.Gemini.Model == "" {
		return fmt.Errorf("gemini.model 不得為空")
	}
	return nil
}
