package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"ViralGen-admin/internal/logging"
	"ViralGen-admin/internal/media"
	"ViralGen-admin/internal/models"
	"ViralGen-admin/internal/services"
)

// multipartOverhead 表單欄位與邊界字串的額外空間
const multipartOverhead = 1 << 20

// UploadHandler 接收 multipart 欄位 "file" 並暫存
type UploadHandler struct {
	uploads *services.UploadService
	logger  *slog.Logger
}

func NewUploadHandler(uploads *services.UploadService, logger *slog.Logger) *UploadHandler {
	if uploads == nil {
		panic("UploadHandler：UploadService 不得為空")
	}
	return &UploadHandler{uploads: uploads, logger: logging.WithComponent(logger, "UploadHandler")}
}

type uploadResponse struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	FileName string `json:"fileName"`
	MIMEType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// Video POST /api/uploads/video
func (h *UploadHandler) Video(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploads.Limits().MaxVideoBytes+multipartOverhead)
	h.handle(w, r, models.MediaKindVideo)
}

// Image POST /api/uploads/image
func (h *UploadHandler) Image(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploads.Limits().MaxImageBytes+multipartOverhead)
	h.handle(w, r, models.MediaKindImage)
}

func (h *UploadHandler) handle(w http.ResponseWriter, r *http.Request, kind models.MediaKind) {
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			if kind == models.MediaKindVideo {
				writeFailure(w, media.ErrVideoTooLarge)
			} else {
				writeFailure(w, media.ErrImageTooLarge)
			}
			return
		}
		WriteError(w, http.StatusBadRequest, "請以 multipart 欄位 file 上傳檔案", "MISSING_FILE")
		return
	}
	defer file.Close()

	declared := header.Header.Get("Content-Type")
	var staged *models.StagedFile
	if kind == models.MediaKindVideo {
		staged, err = h.uploads.StageVideo(header.Filename, declared, file)
	} else {
		staged, err = h.uploads.StageImage(header.Filename, declared, file)
	}
	if err != nil {
		h.logger.Warn("上傳失敗", "kind", kind, "fileName", header.Filename, "error", err)
		writeFailure(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, uploadResponse{
		ID:       staged.ID,
		Kind:     string(staged.Kind),
		FileName: staged.FileName,
		MIMEType: staged.MIMEType,
		Size:     staged.Size,
	})
}
