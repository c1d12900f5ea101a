package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"ViralGen-admin/internal/logging"
	"ViralGen-admin/internal/models"
	"ViralGen-admin/internal/storage/staging"

	"github.com/go-chi/chi/v5"
)

// StagedFileGetter 由 staging.FileSystemStorage 實作
type StagedFileGetter interface {
	Get(id string) (*models.StagedFile, error)
}

// VideoHandler 提供暫存影片/圖片的預覽串流
type VideoHandler struct {
	staging StagedFileGetter
	logger  *slog.Logger
}

// NewVideoHandler 建立一個 VideoHandler 實例
func NewVideoHandler(s StagedFileGetter, logger *slog.Logger) *VideoHandler {
	if s == nil {
		panic("VideoHandler：StagedFileGetter 不得為空")
	}
	return &VideoHandler{staging: s, logger: logging.WithComponent(logger, "VideoHandler")}
}

// ServeHTTP 期望路徑為 /media/{id}；檔案路徑只由暫存中繼資料決定，不接受使用者提供的路徑
func (h *VideoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	file, err := h.staging.Get(id)
	if errors.Is(err, staging.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("讀取暫存檔案失敗", "id", id, "error", err)
		http.Error(w, "內部伺服器錯誤", http.StatusInternalServerError)
		return
	}

	f, err := os.Open(file.Path)
	if err != nil {
		h.logger.Error("開啟暫存檔案失敗", "id", id, "error", err)
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", file.MIMEType)
	w.Header().Set("Cache-Control", "private, max-age=300")
	// ServeContent 處理 Range 請求，讓瀏覽器可以拖曳播放
	http.ServeContent(w, r, file.FileName, file.CreatedAt, f)
}
