package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ViralGen-admin/internal/clients/gemini"
	"ViralGen-admin/internal/config"
	"ViralGen-admin/internal/logging"
	"ViralGen-admin/internal/media"
	"ViralGen-admin/internal/scheduler"
	"ViralGen-admin/internal/services"
	"ViralGen-admin/internal/storage"
	"ViralGen-admin/internal/storage/staging"
	"ViralGen-admin/internal/web"
)

func main() {
	cfg, err := config.Load("./configs", "config")
	if err != nil {
		logging.NewLogger("info").Error("無法載入設定", "error", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.Log.Level)
	logger.Info("應用程式設定載入成功", "app", cfg.AppName, "credentialStore", cfg.Credential.Store)

	if err := run(cfg, logger); err != nil {
		logger.Error("應用程式異常結束", "error", err)
		os.Exit(1)
	}
	logger.Info("應用程式已成功關閉")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	credentials, closer, err := storage.OpenCredentialProvider(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("初始化 API Key 儲存失敗: %w", err)
	}
	defer closer.Close()

	stagingStorage, err := staging.NewFileSystemStorage(cfg.Staging, logger)
	if err != nil {
		return fmt.Errorf("初始化暫存區失敗: %w", err)
	}

	geminiClient := gemini.NewClient(gemini.Options{
		Factory:           gemini.NewGenAIFactory(gemini.GenAIOptions{Endpoint: cfg.Gemini.Endpoint, Logger: logger}),
		RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
		Timeout:           cfg.Gemini.Timeout,
		Logger:            logger,
	})

	uploadSvc, err := services.NewUploadService(media.UploadLimits{MaxVideoBytes: cfg.Upload.MaxVideoBytes, MaxImageBytes: cfg.Upload.MaxImageBytes}, stagingStorage, logger)
	if err != nil {
		return fmt.Errorf("初始化上傳服務失敗: %w", err)
	}
	analyzeSvc, err := services.NewAnalyzeService(cfg, credentials, stagingStorage, geminiClient, logger)
	if err != nil {
		return fmt.Errorf("初始化分析服務失敗: %w", err)
	}

	if cfg.Scheduler.Enabled {
		logger.Info("排程器已在設定檔中啟用，正在初始化...")
		sweepJob := scheduler.NewSweepJob(stagingStorage, cfg.Staging.Retention, logger)
		appScheduler, err := scheduler.NewScheduler(sweepJob, cfg.Scheduler.SweepCronSpec, logger)
		if err != nil {
			return err
		}
		appScheduler.Start()
		defer appScheduler.Stop()
	} else {
		logger.Info("排程器已在設定檔中禁用")
	}

	router, err := web.SetupRouter(web.Dependencies{
		Config:      cfg,
		Credentials: credentials,
		Uploads:     uploadSvc,
		Staging:     stagingStorage,
		Analyze:     analyzeSvc,
		Processing:  geminiClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP 伺服器正在監聽", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("HTTP 伺服器監聽失敗: %w", err)
	case sig := <-quit:
		logger.Info("收到關閉訊號，正在關閉應用程式...", "signal", sig.String())
	}

	// 分析呼叫可能長達數分鐘，等待時間與 Gemini 逾時一致
	shutdownTimeout := cfg.Gemini.Timeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP 伺服器優雅關閉失敗: %w", err)
	}
	logger.Info("HTTP 伺服器已關閉")
	return nil
}
