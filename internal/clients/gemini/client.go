// Package gemini 負責呼叫 Gemini 多模態模型並將回應轉為 models.AnalysisResult
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"ViralGen-admin/internal/logging"
	"ViralGen-admin/internal/models"
	"ViralGen-admin/internal/prompts"

	"golang.org/x/time/rate"
)

// DefaultTimeout 單次分析呼叫的上限
const DefaultTimeout = 5 * time.Minute

// Options Client 設定
type Options struct {
	Factory BackendFactory
	// RequestsPerMinute <= 0 表示不限速
	RequestsPerMinute int
	Timeout           time.Duration
	Logger            *slog.Logger
}

// Client 一次只允許一個分析呼叫
type Client struct {
	factory BackendFactory
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger

	mu         sync.Mutex
	processing bool
}

// NewClient 建立 Client；Factory 為 nil 時使用 genai SDK
func NewClient(opts Options) *Client {
	logger := logging.WithComponent(opts.Logger, "GeminiClient")
	factory := opts.Factory
	if factory == nil {
		factory = NewGenAIFactory(GenAIOptions{Logger: opts.Logger})
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		factory: factory,
		limiter: limiter,
		timeout: timeout,
		logger:  logger,
	}
}

// IsProcessing 目前是否有分析進行中
func (c *Client) IsProcessing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

// Analyze 送出一次分析請求並回傳結構化結果，不會自動重試
func (c *Client) Analyze(ctx context.Context, apiKey string, req *prompts.AnalysisRequest) (*models.AnalysisResult, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, NewError(ErrMissingCredential, "")
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.processing {
		c.mu.Unlock()
		c.logger.Warn("已有分析正在進行中，拒絕新的請求")
		return nil, NewError(ErrCallInProgress, "")
	}
	c.processing = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.processing = false
		c.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// 節流等待也計入逾時
	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Warn("等待呼叫配額失敗", "error", err)
		return nil, &Error{Kind: ErrPayloadOrNetwork, Detail: "等待呼叫配額逾時", Suggestion: payloadOrNetworkSuggestion, Err: err}
	}

	start := time.Now()
	c.logger.Info("開始分析影片",
		"model", req.Model,
		"variant", req.Variant,
		"parts", len(req.Parts),
		"apiKey", logging.SanitizeToken(apiKey),
	)

	backend, err := c.factory(ctx, apiKey)
	if err != nil {
		c.logger.Error("建立 Gemini backend 失敗", "error", err)
		return nil, classifyFailure(err)
	}
	resp, err := backend.Generate(ctx, req)
	if err != nil {
		if Kind(err) != nil {
			return nil, err
		}
		classified := classifyFailure(err)
		c.logger.Error("Gemini API 呼叫失敗", "kind", classified.Kind, "error", err, "elapsed", time.Since(start))
		return nil, classified
	}

	if resp == nil {
		resp = &BackendResponse{}
	}
	result, err := decodeResult(resp)
	if err != nil {
		c.logger.Error("Gemini 回應無法使用", "error", err, "finishReason", resp.FinishReason, "rawLength", len(resp.Text))
		return nil, err
	}
	c.logger.Info("影片分析完成",
		"title", result.Title,
		"viralScore", result.ViralScore,
		"shots", len(result.Structure),
		"elapsed", time.Since(start),
	)
	return result, nil
}

func validateRequest(req *prompts.AnalysisRequest) error {
	if req == nil {
		return NewError(ErrInvalidRequest, "請求為空")
	}
	video := req.Video()
	if video == nil || video.Data == "" {
		return NewError(ErrInvalidRequest, "缺少參考影片")
	}
	if strings.TrimSpace(req.InstructionText()) == "" {
		return NewError(ErrInvalidRequest, "缺少指令文字")
	}
	if req.Model == "" {
		return NewError(ErrInvalidRequest, "未指定模型")
	}
	return nil
}

// decodeResult 依序檢查 空回應 -> JSON 格式 -> 必要欄位
func decodeResult(resp *BackendResponse) (*models.AnalysisResult, error) {
	if resp == nil || !resp.HasText || strings.TrimSpace(resp.Text) == "" {
		detail := ""
		if resp != nil && resp.FinishReason != "" {
			detail = "FinishReason: " + resp.FinishReason
		}
		return nil, NewError(ErrEmptyResponse, detail)
	}

	var result models.AnalysisResult
	if err := decodeObject(cleanJSON(resp.Text), &result); err != nil {
		return nil, &Error{Kind: ErrMalformedResponse, RawText: resp.Text, Err: err}
	}

	if len(result.Structure) == 0 {
		return nil, &Error{Kind: ErrIncompleteResult, Detail: "structure 為空", RawText: resp.Text}
	}
	if strings.TrimSpace(result.ConsolidatedSoraPrompt) == "" {
		return nil, &Error{Kind: ErrIncompleteResult, Detail: "consolidatedSoraPrompt 為空", RawText: resp.Text}
	}
	return &result, nil
}

// cleanJSON 只移除 BOM 與 markdown 代碼塊，不擷取物件外的文字
func cleanJSON(raw string) string {
	cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "\uFEFF"))

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}
	cleaned = strings.TrimSpace(cleaned)

	if !utf8.ValidString(cleaned) {
		cleaned = strings.ToValidUTF8(cleaned, "")
	}
	return cleaned
}

// decodeObject 內容必須恰好是一個 JSON 物件，前後不得有其他文字
func decodeObject(text string, v any) error {
	if !strings.HasPrefix(text, "{") {
		return errors.New("回應不是 JSON 物件")
	}
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("JSON 物件之後還有多餘內容")
	}
	return nil
}
