package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"ViralGen-admin/internal/credential"
	"ViralGen-admin/internal/logging"
	"ViralGen-admin/internal/models"
)

//go:embed templates/dashboard.html
var templatesFS embed.FS

// DashboardOptions 頁面顯示用的設定
type DashboardOptions struct {
	AppName        string
	DefaultVariant models.PromptVariant
	MaxVideoBytes  int64
	MaxImageBytes  int64
}

type variantOption struct {
	Value    string
	Label    string
	Selected bool
}

type dashboardData struct {
	AppName       string
	Credential    credential.Status
	Variants      []variantOption
	MaxVideoMB    string
	MaxVideoBytes int64
	MaxImageBytes int64
}

var variantLabels = map[models.PromptVariant]string{
	models.VariantBasicStructured: "標準分鏡 (Camera / Visual / Audio / Action)",
	models.VariantFeatureMimicry:  "賣點模仿 (一鏡到底偵測)",
	models.VariantRhythmClone:     "節奏複製 (逐鏡對應)",
}

// DashboardHandler 負責處理首頁的請求
type DashboardHandler struct {
	credentials credential.Provider
	opts        DashboardOptions
	tpl         *template.Template
	logger      *slog.Logger
}

// NewDashboardHandler 建立一個 DashboardHandler 實例
func NewDashboardHandler(credentials credential.Provider, opts DashboardOptions, logger *slog.Logger) (*DashboardHandler, error) {
	if credentials == nil {
		return nil, fmt.Errorf("credential.Provider 不得為 nil")
	}
	tpl, err := template.ParseFS(templatesFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("無法解析首頁範本: %w", err)
	}
	if opts.DefaultVariant == "" {
		opts.DefaultVariant = models.DefaultVariant
	}
	return &DashboardHandler{
		credentials: credentials,
		opts:        opts,
		tpl:         tpl,
		logger:      logging.WithComponent(logger, "DashboardHandler"),
	}, nil
}

// ServeHTTP 實現 http.Handler 介面
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	st, err := credential.Describe(r.Context(), h.credentials)
	if err != nil {
		h.logger.Warn("讀取 API Key 狀態失敗，頁面將顯示為未保存", "error", err)
	}

	data := dashboardData{
		AppName:       h.opts.AppName,
		Credential:    st,
		MaxVideoMB:    fmt.Sprintf("%.0f", float64(h.opts.MaxVideoBytes)/(1024*1024)),
		MaxVideoBytes: h.opts.MaxVideoBytes,
		MaxImageBytes: h.opts.MaxImageBytes,
	}
	for _, v := range models.Variants() {
		data.Variants = append(data.Variants, variantOption{
			Value:    string(v),
			Label:    variantLabels[v],
			Selected: v == h.opts.DefaultVariant,
		})
	}

	var buf bytes.Buffer
	if err := h.tpl.Execute(&buf, data); err != nil {
		h.logger.Error("渲染首頁失敗", "error", err)
		http.Error(w, "無法載入頁面", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
