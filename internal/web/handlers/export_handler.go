package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ViralGen-admin/internal/logging"
	"ViralGen-admin/internal/models"
	"ViralGen-admin/internal/report"
)

// maxResultBytes 分析結果 JSON 的大小上限
const maxResultBytes = 2 << 20

// ExportHandler 負責處理匯出請求，也提供結果片段的渲染
type ExportHandler struct {
	now    func() time.Time
	logger *slog.Logger
}

// NewExportHandler now 為 nil 時使用 time.Now
func NewExportHandler(now func() time.Time, logger *slog.Logger) *ExportHandler {
	if now == nil {
		now = time.Now
	}
	return &ExportHandler{now: now, logger: logging.WithComponent(logger, "ExportHandler")}
}

func decodeResult(w http.ResponseWriter, r *http.Request) (*models.AnalysisResult, bool) {
	var result models.AnalysisResult
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxResultBytes)).Decode(&result); err != nil {
		WriteError(w, http.StatusBadRequest, "無效的分析結果內容", "INVALID_JSON")
		return nil, false
	}
	return &result, true
}

// Export POST /api/export，回傳 Word 相容的 .doc 附件
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	result, ok := decodeResult(w, r)
	if !ok {
		return
	}
	now := h.now()
	var buf bytes.Buffer
	if err := report.RenderWordDoc(&buf, *result, now); err != nil {
		h.logger.Error("產生 Word 報告失敗", "error", err)
		WriteError(w, http.StatusInternalServerError, "無法產生報告", "INTERNAL_ERROR")
		return
	}
	name := report.ExportFileName(now)
	w.Header().Set("Content-Type", report.WordMIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
	h.logger.Info("報告已匯出", "fileName", name, "title", result.Title, "bytes", buf.Len())
}

// Render POST /api/render，回傳頁面用的 HTML 片段
func (h *ExportHandler) Render(w http.ResponseWriter, r *http.Request) {
	result, ok := decodeResult(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.RenderHTML(&buf, *result); err != nil {
		h.logger.Error("渲染分析結果失敗", "error", err)
		WriteError(w, http.StatusInternalServerError, "無法渲染分析結果", "INTERNAL_ERROR")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
