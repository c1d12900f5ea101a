package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ViralGen-admin/internal/logging"
	"ViralGen-admin/internal/prompts"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// BackendResponse 模型回應中與分析相關的部分
type BackendResponse struct {
	Text         string
	HasText      bool
	FinishReason string
}

// Backend 實際送出請求的一方；測試時以假物件取代
type Backend interface {
	Generate(ctx context.Context, req *prompts.AnalysisRequest) (*BackendResponse, error)
}

// BackendFactory 以呼叫當下的 API Key 建立 Backend
type BackendFactory func(ctx context.Context, apiKey string) (Backend, error)

// GenAIOptions genai backend 的連線設定
type GenAIOptions struct {
	// Endpoint 為空時使用 SDK 預設端點
	Endpoint string
	Logger   *slog.Logger
}

// NewGenAIFactory 回傳以 generative-ai-go SDK 實作的 BackendFactory
func NewGenAIFactory(opts GenAIOptions) BackendFactory {
	logger := logging.WithComponent(opts.Logger, "GeminiBackend")
	return func(ctx context.Context, apiKey string) (Backend, error) {
		clientOpts := []option.ClientOption{option.WithAPIKey(apiKey)}
		if opts.Endpoint != "" {
			clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
		}
		client, err := genai.NewClient(ctx, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("無法建立 Gemini GenAI SDK 客戶端: %w", err)
		}
		return &genaiBackend{client: client, logger: logger}, nil
	}
}

type genaiBackend struct {
	client *genai.Client
	logger *slog.Logger
}

func (b *genaiBackend) Generate(ctx context.Context, req *prompts.AnalysisRequest) (*BackendResponse, error) {
	defer func() {
		if err := b.client.Close(); err != nil {
			b.logger.Warn("關閉 GenAI 客戶端失敗", "error", err)
		}
	}()

	model := b.client.GenerativeModel(req.Model)
	if req.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemInstruction)}}
	}
	model.GenerationConfig.ResponseMIMEType = "application/json"
	model.GenerationConfig.ResponseSchema = req.Schema

	parts, err := toGenAIParts(req.Parts)
	if err != nil {
		return nil, err
	}

	b.logger.Info("正在向 Gemini API 發送請求", "model", req.Model, "parts", len(parts))
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, err
	}
	return b.extract(resp), nil
}

func toGenAIParts(parts []prompts.RequestPart) ([]genai.Part, error) {
	out := make([]genai.Part, 0, len(parts))
	for i, p := range parts {
		if !p.IsMedia() {
			out = append(out, genai.Text(p.Text))
			continue
		}
		data, err := p.Media.Bytes()
		if err != nil {
			return nil, NewError(ErrInvalidRequest, fmt.Sprintf("第 %d 個檔案片段無法解碼", i+1))
		}
		out = append(out, genai.Blob{MIMEType: p.Media.MIMEType, Data: data})
	}
	return out, nil
}

func (b *genaiBackend) extract(resp *genai.GenerateContentResponse) *BackendResponse {
	if resp == nil || len(resp.Candidates) == 0 {
		return &BackendResponse{}
	}
	candidate := resp.Candidates[0]
	out := &BackendResponse{FinishReason: candidate.FinishReason.String()}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		if candidate.FinishReason != genai.FinishReasonStop && candidate.FinishReason != genai.FinishReasonUnspecified {
			for _, rating := range candidate.SafetyRatings {
				b.logger.Warn("安全評級", "category", rating.Category.String(), "probability", rating.Probability.String())
			}
		}
		return out
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
			out.HasText = true
		} else {
			b.logger.Warn("收到非預期的 Part 類型", "type", fmt.Sprintf("%T", part))
		}
	}
	out.Text = sb.String()
	return out
}
