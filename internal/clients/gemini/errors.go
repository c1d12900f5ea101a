package gemini

import (
	"errors"
	"strings"
)

// 錯誤分類；以 errors.Is(err, ErrXxx) 判斷
var (
	ErrMissingCredential = errors.New("缺少 Gemini API Key")
	ErrInvalidRequest    = errors.New("分析請求不完整")
	ErrCallInProgress    = errors.New("已有分析正在進行中")
	ErrEmptyResponse     = errors.New("Gemini 未回傳任何文字內容")
	ErrMalformedResponse = errors.New("無法將 Gemini 回應解析為分析結果")
	ErrIncompleteResult  = errors.New("Gemini 回傳的分析結果缺少分鏡結構或提示詞")
	ErrPayloadOrNetwork  = errors.New("影片檔案可能過大或網路連線不穩定")
	ErrBackend           = errors.New("Gemini API 呼叫失敗")
)

const payloadOrNetworkSuggestion = "請嘗試上傳更小的影片檔案 (建議 < 10MB) 或檢查網路連線。"

// Error 分析失敗的詳細資訊
type Error struct {
	Kind       error
	Detail     string
	Suggestion string
	// RawText 只用於診斷，不可直接顯示給使用者
	RawText string
	Err     error
}

func (e *Error) Error() string {
	// BackendError 原樣轉發底層錯誤訊息
	if e.Kind == ErrBackend && e.Err != nil {
		return e.Err.Error()
	}
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap 同時回傳分類與底層錯誤
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError 建立指定分類的錯誤，供呼叫端回報前置檢查失敗
func NewError(kind error, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Kind 回傳錯誤分類；非本套件的錯誤回傳 nil
func Kind(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}

// UserMessage 回傳可顯示給使用者的一行訊息，不含原始回應內容
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		if err == nil {
			return ""
		}
		return "分析失敗。請確保 API Key 正確且影片格式受支援。"
	}
	switch e.Kind {
	case ErrMissingCredential:
		return "請先輸入您的 Google Gemini API Key 並點擊儲存。"
	case ErrInvalidRequest:
		if e.Detail != "" {
			return "分析請求不完整: " + e.Detail
		}
		return "請上傳參考影片並輸入產品描述。"
	case ErrCallInProgress:
		return "分析正在進行中，請稍候。"
	case ErrEmptyResponse:
		return "Gemini 未回傳任何內容，請稍後再試。"
	case ErrMalformedResponse:
		return "無法解析分析結果，請重新嘗試。"
	case ErrIncompleteResult:
		return "分析結果缺少分鏡結構或提示詞，請重新嘗試。"
	case ErrPayloadOrNetwork:
		return ErrPayloadOrNetwork.Error() + "。" + e.Suggestion
	case ErrBackend:
		return e.Error()
	}
	return e.Error()
}
