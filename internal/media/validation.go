package media

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxVideoBytes base64 會讓內容膨脹約 33%，過大的內嵌請求容易被拒絕
const DefaultMaxVideoBytes int64 = 10 * 1024 * 1024

// DefaultMaxImageBytes 產品圖片的預設上限
const DefaultMaxImageBytes int64 = 20 * 1024 * 1024

var (
	ErrEmptyFile     = errors.New("檔案內容為空")
	ErrNotVideo      = errors.New("請上傳影片檔案 (mp4 / mov / webm)")
	ErrVideoTooLarge = errors.New("影片檔案過大，請上傳 10MB 以下的片段以確保分析成功")
	ErrNotImage      = errors.New("產品圖片必須是圖片檔案")
	ErrImageTooLarge = errors.New("產品圖片檔案過大，請壓縮後再上傳")
)

// AllowedVideoMIMETypes 上傳元件接受的影片類型
var AllowedVideoMIMETypes = map[string]bool{
	"video/mp4":       true,
	"video/quicktime": true,
	"video/webm":      true,
}

// UploadLimits 上傳邊界的限制
type UploadLimits struct {
	MaxVideoBytes int64
	MaxImageBytes int64
}

// DefaultLimits 回傳預設限制
func DefaultLimits() UploadLimits {
	return UploadLimits{MaxVideoBytes: DefaultMaxVideoBytes, MaxImageBytes: DefaultMaxImageBytes}
}

// ValidateVideo 檢查影片類型與大小，回傳正規化後的 MIME 類型
// head 為檔案開頭的位元組，用於宣告類型缺失時判斷
func (l UploadLimits) ValidateVideo(head []byte, declaredMIME string, size int64) (string, error) {
	if size <= 0 {
		return "", ErrEmptyFile
	}
	mimeType, err := ResolveMIME(head, declaredMIME)
	if err != nil || !AllowedVideoMIMETypes[mimeType] {
		return "", ErrNotVideo
	}
	max := l.MaxVideoBytes
	if max <= 0 {
		max = DefaultMaxVideoBytes
	}
	if size > max {
		return "", fmt.Errorf("%w (%.2f MB)", ErrVideoTooLarge, float64(size)/(1024*1024))
	}
	return mimeType, nil
}

// ValidateImage 檢查產品圖片類型與大小
func (l UploadLimits) ValidateImage(head []byte, declaredMIME string, size int64) (string, error) {
	if size <= 0 {
		return "", ErrEmptyFile
	}
	mimeType, err := ResolveMIME(head, declaredMIME)
	if err != nil || !strings.HasPrefix(mimeType, "image/") {
		return "", ErrNotImage
	}
	if size > l.imageCap() {
		return "", fmt.Errorf("%w (%.2f MB)", ErrImageTooLarge, float64(size)/(1024*1024))
	}
	return mimeType, nil
}

func (l UploadLimits) imageCap() int64 {
	if l.MaxImageBytes <= 0 {
		return DefaultMaxImageBytes
	}
	return l.MaxImageBytes
}
