// generate-report 以本機檔案執行一次分析，輸出 result.json 與 Word 報告
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"ViralGen-admin/internal/clients/gemini"
	"ViralGen-admin/internal/config"
	"ViralGen-admin/internal/credential"
	"ViralGen-admin/internal/logging"
	"ViralGen-admin/internal/storage"
)

// apiKeyEnv 設定後優先於已保存的金鑰，且不會寫入儲存
const apiKeyEnv = "GEMINI_API_KEY"

type options struct {
	VideoPath   string
	ImagePath   string
	Description string
	Variant     string
	OutDir      string
	ConfigPath  string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("generate-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.VideoPath, "video", "", "參考影片路徑 (mp4 / mov / webm)")
	fs.StringVar(&opts.ImagePath, "image", "", "產品圖片路徑 (選填)")
	fs.StringVar(&opts.Description, "description", "", "產品描述")
	fs.StringVar(&opts.Variant, "variant", "", "Prompt 版本 (basic-structured / feature-mimicry / rhythm-clone)")
	fs.StringVar(&opts.OutDir, "out", "reports", "輸出目錄")
	fs.StringVar(&opts.ConfigPath, "config", "./configs", "設定檔目錄")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.VideoPath == "" {
		return opts, errors.New("必須以 -video 指定參考影片")
	}
	if strings.TrimSpace(opts.Description) == "" {
		return opts, errors.New("必須以 -description 指定產品描述")
	}
	return opts, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, "錯誤：", err)
		return 2
	}

	cfg, err := config.Load(opts.ConfigPath, "config")
	if err != nil {
		fmt.Fprintln(os.Stderr, "錯誤：無法載入設定：", err)
		return 1
	}
	logger := logging.NewLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	credentials, closer, err := openCredentials(ctx, cfg, logger)
	if err != nil {
		logger.Error("初始化 API Key 儲存失敗", "error", err)
		return 1
	}
	defer closer.Close()

	client := gemini.NewClient(gemini.Options{
		Factory: gemini.NewGenAIFactory(gemini.GenAIOptions{Endpoint: cfg.Gemini.Endpoint, Logger: logger}),
		Timeout: cfg.Gemini.Timeout,
		Logger:  logger,
	})

	paths, err := generate(ctx, cfg, opts, credentials, client, time.Now(), logger)
	if err != nil {
		if gemini.Kind(err) != nil {
			fmt.Fprintln(os.Stderr, "分析失敗：", gemini.UserMessage(err))
		} else {
			fmt.Fprintln(os.Stderr, "分析失敗：", err)
		}
		return 1
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return 0
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }

func openCredentials(ctx context.Context, cfg *config.Config, logger *slog.Logger) (credential.Provider, io.Closer, error) {
	if key := strings.TrimSpace(os.Getenv(apiKeyEnv)); key != "" {
		p := credential.NewMemoryProvider()
		if err := p.Save(ctx, key); err != nil {
			return nil, nil, err
		}
		logger.Info("使用環境變數中的 API Key", "env", apiKeyEnv, "key", logging.SanitizeToken(key))
		return p, noopCloser{}, nil
	}
	return storage.OpenCredentialProvider(ctx, cfg, logger)
}
