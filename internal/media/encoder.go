// Package media 將本地檔案轉成可內嵌於 Gemini 請求的 base64 片段，並負責上傳邊界的檔案檢查
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"ViralGen-admin/internal/models"

	"github.com/h2non/filetype"
)

// ErrUnrecognizedMIME 無法判斷檔案的 MIME 類型
var ErrUnrecognizedMIME = errors.New("無法辨識檔案的 MIME 類型")

// Encoder 沒有狀態，零值即可使用
type Encoder struct{}

// NewEncoder 建立 Encoder
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode 讀取全部內容並轉成 MediaPart
// declaredMIME 為空或為 application/octet-stream 時依檔頭判斷
func (e *Encoder) Encode(r io.Reader, declaredMIME string) (models.MediaPart, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return models.MediaPart{}, fmt.Errorf("讀取檔案內容失敗: %w", err)
	}
	data := buf.Bytes()

	mimeType, err := ResolveMIME(data, declaredMIME)
	if err != nil {
		return models.MediaPart{}, err
	}
	return models.MediaPart{
		Data:     base64.StdEncoding.EncodeToString(data),
		MIMEType: mimeType,
	}, nil
}

// EncodeFile 讀取磁碟上的檔案並轉成 MediaPart
func (e *Encoder) EncodeFile(path string, declaredMIME string) (models.MediaPart, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.MediaPart{}, fmt.Errorf("開啟檔案 %s 失敗: %w", path, err)
	}
	defer f.Close()
	return e.Encode(f, declaredMIME)
}

// ResolveMIME 優先使用宣告的類型，否則以檔頭辨識
func ResolveMIME(head []byte, declaredMIME string) (string, error) {
	declared := normalizeMIME(declaredMIME)
	if declared != "" && declared != "application/octet-stream" {
		return declared, nil
	}
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return "", ErrUnrecognizedMIME
	}
	return kind.MIME.Value, nil
}

// normalizeMIME 去掉參數並轉小寫，例如 "Video/MP4; codecs=avc1" -> "video/mp4"
func normalizeMIME(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return strings.ToLower(strings.TrimSpace(m))
}
