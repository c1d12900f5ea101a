package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ViralGen-admin/internal/config"
	"ViralGen-admin/internal/credential"
	"ViralGen-admin/internal/services"
	"ViralGen-admin/internal/web/handlers"

	"github.com/go-chi/chi/v5"
)

// ProcessingReporter 由 gemini.Client 實作，供健康檢查回報是否有分析進行中
type ProcessingReporter interface {
	IsProcessing() bool
}

// Dependencies 組裝路由所需的元件
type Dependencies struct {
	Config      *config.Config
	Credentials credential.Provider
	Uploads     *services.UploadService
	Staging     handlers.StagedFileGetter
	Analyze     *services.AnalyzeService
	Processing  ProcessingReporter
	Now         func() time.Time
	Logger      *slog.Logger
}

// SetupRouter 建立 chi 路由；頁面、API 與媒體預覽共用同一組中介層
func SetupRouter(deps Dependencies) (http.Handler, error) {
	if deps.Config == nil || deps.Credentials == nil || deps.Uploads == nil || deps.Staging == nil || deps.Analyze == nil {
		return nil, fmt.Errorf("SetupRouter：缺少必要的相依元件")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dashboardHandler, err := handlers.NewDashboardHandler(deps.Credentials, handlers.DashboardOptions{
		AppName:        deps.Config.AppName,
		DefaultVariant: deps.Analyze.DefaultVariant(),
		MaxVideoBytes:  deps.Uploads.Limits().MaxVideoBytes,
		MaxImageBytes:  deps.Uploads.Limits().MaxImageBytes,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("無法建立 Dashboard Handler: %w", err)
	}
	credentialHandler := handlers.NewCredentialHandler(deps.Credentials, logger)
	uploadHandler := handlers.NewUploadHandler(deps.Uploads, logger)
	analysisHandler := handlers.NewTriggerAnalysisHandler(deps.Analyze, logger)
	exportHandler := handlers.NewExportHandler(deps.Now, logger)
	videoHandler := handlers.NewVideoHandler(deps.Staging, logger)

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggingMiddleware(logger))

	r.Method(http.MethodGet, "/", dashboardHandler)
	r.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})
	r.Get("/healthz", healthHandler(deps.Processing))
	r.Method(http.MethodGet, "/media/{id}", videoHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/credential", credentialHandler.Status)
		r.Put("/credential", credentialHandler.Save)
		r.Delete("/credential", credentialHandler.Clear)

		r.Post("/uploads/video", uploadHandler.Video)
		r.Post("/uploads/image", uploadHandler.Image)

		r.Method(http.MethodPost, "/analyze", analysisHandler)
		r.Post("/render", exportHandler.Render)
		r.Post("/export", exportHandler.Export)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		logger.Warn("未匹配的路由", "path", r.URL.Path)
		handlers.WriteError(w, http.StatusNotFound, "找不到資源", "NOT_FOUND")
	})

	logger.Info("HTTP 路由設定完成")
	return r, nil
}

func healthHandler(p ProcessingReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		processing := false
		if p != nil {
			processing = p.IsProcessing()
		}
		handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":     "ok",
			"processing": processing,
		})
	}
}
