package models

import (
	"encoding/base64"
	"fmt"
	"time"
)

// MediaPart 是一個可直接內嵌於請求中的 base64 檔案片段
// Data 不含 data-URL 前綴 (例如 "data:video/mp4;base64,")
type MediaPart struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

// Bytes 將 base64 內容解碼回原始位元組，供需要原始資料的傳輸層使用
func (p MediaPart) Bytes() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return nil, fmt.Errorf("MediaPart base64 解碼失敗: %w", err)
	}
	return raw, nil
}

// MediaKind 暫存檔案的種類
type MediaKind string

const (
	MediaKindVideo MediaKind = "video"
	MediaKindImage MediaKind = "image"
)

// StagedFile 描述一個已通過上傳驗證並暫存於磁碟的檔案
type StagedFile struct {
	ID        string    `json:"id"`
	Kind      MediaKind `json:"kind"`
	FileName  string    `json:"fileName"`
	MIMEType  string    `json:"mimeType"`
	Size      int64     `json:"size"`
	Path      string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
