package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"ViralGen-admin/internal/credential"
	"ViralGen-admin/internal/logging"
)

// CredentialHandler 管理 API Key：查詢狀態、儲存/取代、清除
type CredentialHandler struct {
	provider credential.Provider
	logger   *slog.Logger
}

func NewCredentialHandler(p credential.Provider, logger *slog.Logger) *CredentialHandler {
	if p == nil {
		panic("CredentialHandler：credential.Provider 不得為空")
	}
	return &CredentialHandler{provider: p, logger: logging.WithComponent(logger, "CredentialHandler")}
}

type saveCredentialRequest struct {
	APIKey string `json:"apiKey"`
}

// Status GET /api/credential
func (h *CredentialHandler) Status(w http.ResponseWriter, r *http.Request) {
	st, err := credential.Describe(r.Context(), h.provider)
	if err != nil {
		h.logger.Error("讀取 API Key 狀態失敗", "error", err)
		writeFailure(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, st)
}

// Save PUT /api/credential
func (h *CredentialHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveCredentialRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "無效的請求內容", "INVALID_JSON")
		return
	}
	if err := h.provider.Save(r.Context(), req.APIKey); err != nil {
		writeFailure(w, err)
		return
	}
	st, err := credential.Describe(r.Context(), h.provider)
	if err != nil {
		writeFailure(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, st)
}

// Clear DELETE /api/credential?confirm=true
func (h *CredentialHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		WriteError(w, http.StatusBadRequest, "清除 API Key 需要確認 (confirm=true)", "CONFIRMATION_REQUIRED")
		return
	}
	if err := h.provider.Clear(r.Context()); err != nil {
		h.logger.Error("清除 API Key 失敗", "error", err)
		writeFailure(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, credential.Status{})
}
