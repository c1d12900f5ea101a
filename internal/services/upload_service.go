package services

import (
	"fmt"
	"io"
	"log/slog"

	"ViralGen-admin/internal/logging"
	"ViralGen-admin/internal/media"
	"ViralGen-admin/internal/models"
)

// UploadService 驗證上傳檔案並寫入暫存區
type UploadService struct {
	limits  media.UploadLimits
	staging StagingStorage
	logger  *slog.Logger
}

// NewUploadService 建立 UploadService 實例
func NewUploadService(limits media.UploadLimits, staging StagingStorage, logger *slog.Logger) (*UploadService, error) {
	if staging == nil {
		return nil, fmt.Errorf("UploadService：StagingStorage 不得為空")
	}
	defaults := media.DefaultLimits()
	if limits.MaxVideoBytes <= 0 {
		limits.MaxVideoBytes = defaults.MaxVideoBytes
	}
	if limits.MaxImageBytes <= 0 {
		limits.MaxImageBytes = defaults.MaxImageBytes
	}
	return &UploadService{limits: limits, staging: staging, logger: logging.WithComponent(logger, "UploadService")}, nil
}

// Limits 目前使用的上傳限制
func (s *UploadService) Limits() media.UploadLimits {
	return s.limits
}

// StageVideo 超過上限的影片不會被寫入磁碟
func (s *UploadService) StageVideo(fileName, declaredMIME string, r io.Reader) (*models.StagedFile, error) {
	// 多讀一個位元組以判斷是否超過上限
	data, err := io.ReadAll(io.LimitReader(r, s.limits.MaxVideoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("讀取上傳影片失敗: %w", err)
	}
	size := int64(len(data))
	if size > s.limits.MaxVideoBytes {
		// 取得實際大小以便顯示，讀取中斷時 size 只是下限
		rest, err := io.Copy(io.Discard, r)
		if err != nil {
			s.logger.Warn("讀取超出上限的影片剩餘內容失敗", "fileName", fileName, "error", err)
		}
		size += rest
	}
	mimeType, err := s.limits.ValidateVideo(head(data), declaredMIME, size)
	if err != nil {
		s.logger.Warn("拒絕上傳影片", "fileName", fileName, "declaredMIME", declaredMIME, "size", size, "error", err)
		return nil, err
	}
	return s.staging.Save(models.MediaKindVideo, fileName, mimeType, data)
}

// StageImage 超過上限的圖片不會被寫入磁碟
func (s *UploadService) StageImage(fileName, declaredMIME string, r io.Reader) (*models.StagedFile, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.limits.MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("讀取上傳圖片失敗: %w", err)
	}
	mimeType, err := s.limits.ValidateImage(head(data), declaredMIME, int64(len(data)))
	if err != nil {
		s.logger.Warn("拒絕上傳圖片", "fileName", fileName, "declaredMIME", declaredMIME, "size", len(data), "error", err)
		return nil, err
	}
	return s.staging.Save(models.MediaKindImage, fileName, mimeType, data)
}

func head(data []byte) []byte {
	if len(data) > 262 {
		return data[:262]
	}
	return data
}
