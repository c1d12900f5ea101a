package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ViralGen-admin/internal/clients/gemini"
	"ViralGen-admin/internal/credential"
	"ViralGen-admin/internal/media"
)

// ErrorResponse 所有 API 錯誤的 JSON 格式
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func WriteError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code})
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// statusFor 將錯誤對應到 HTTP 狀態碼與錯誤代碼
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, gemini.ErrMissingCredential):
		return http.StatusBadRequest, "MISSING_CREDENTIAL"
	case errors.Is(err, gemini.ErrInvalidRequest):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, gemini.ErrCallInProgress):
		return http.StatusConflict, "CALL_IN_PROGRESS"
	case errors.Is(err, gemini.ErrEmptyResponse):
		return http.StatusBadGateway, "EMPTY_RESPONSE"
	case errors.Is(err, gemini.ErrMalformedResponse):
		return http.StatusBadGateway, "MALFORMED_RESPONSE"
	case errors.Is(err, gemini.ErrIncompleteResult):
		return http.StatusBadGateway, "INCOMPLETE_RESULT"
	case errors.Is(err, gemini.ErrPayloadOrNetwork):
		return http.StatusBadGateway, "PAYLOAD_OR_NETWORK"
	case errors.Is(err, gemini.ErrBackend):
		return http.StatusBadGateway, "BACKEND_ERROR"
	case errors.Is(err, media.ErrVideoTooLarge):
		return http.StatusRequestEntityTooLarge, "VIDEO_TOO_LARGE"
	case errors.Is(err, media.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE"
	case errors.Is(err, media.ErrNotVideo), errors.Is(err, media.ErrNotImage),
		errors.Is(err, media.ErrEmptyFile), errors.Is(err, media.ErrUnrecognizedMIME):
		return http.StatusBadRequest, "INVALID_UPLOAD"
	case errors.Is(err, credential.ErrBlankKey):
		return http.StatusBadRequest, "BLANK_CREDENTIAL"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// writeFailure 依錯誤類型回應；訊息不包含模型的原始輸出
func writeFailure(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if gemini.Kind(err) != nil {
		msg = gemini.UserMessage(err)
	} else if status == http.StatusInternalServerError {
		msg = "內部伺服器錯誤"
	}
	WriteError(w, status, msg, code)
}
