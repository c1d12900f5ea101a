package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"ViralGen-admin/internal/logging"
	"ViralGen-admin/internal/models"
	"ViralGen-admin/internal/services"
)

// AnalyzeRunner 由 services.AnalyzeService 實作
type AnalyzeRunner interface {
	Run(ctx context.Context, in services.AnalyzeInput) (*models.AnalysisResult, error)
}

// TriggerAnalysisHandler 同步執行一次分析並回傳結果
// 同時只能有一個分析，第二個請求會得到 409
type TriggerAnalysisHandler struct {
	analyzeService AnalyzeRunner
	logger         *slog.Logger
}

// NewTriggerAnalysisHandler 建立一個 TriggerAnalysisHandler 實例
func NewTriggerAnalysisHandler(as AnalyzeRunner, logger *slog.Logger) *TriggerAnalysisHandler {
	if as == nil {
		panic("TriggerAnalysisHandler：AnalyzeRunner 不得為空")
	}
	return &TriggerAnalysisHandler{analyzeService: as, logger: logging.WithComponent(logger, "TriggerAnalysisHandler")}
}

type analyzeResponse struct {
	Result *models.AnalysisResult `json:"result"`
}

// ServeHTTP 實現 http.Handler 介面
func (h *TriggerAnalysisHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var in services.AnalyzeInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&in); err != nil {
		WriteError(w, http.StatusBadRequest, "無效的請求內容", "INVALID_JSON")
		return
	}

	h.logger.Info("收到分析請求", "videoId", in.VideoID, "hasImage", in.ImageID != "", "variant", in.Variant)
	result, err := h.analyzeService.Run(r.Context(), in)
	if err != nil {
		h.logger.Warn("分析請求失敗", "error", err)
		writeFailure(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, analyzeResponse{Result: result})
}
