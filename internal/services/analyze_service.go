package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ViralGen-admin/internal/clients/gemini"
	"ViralGen-admin/internal/config"
	"ViralGen-admin/internal/credential"
	"ViralGen-admin/internal/logging"
	"ViralGen-admin/internal/media"
	"ViralGen-admin/internal/models"
	"ViralGen-admin/internal/prompts"
)

// AnalyzeInput 一次分析的輸入；ImageID 與 Variant 可為空
type AnalyzeInput struct {
	VideoID     string `json:"videoId"`
	ImageID     string `json:"imageId,omitempty"`
	Description string `json:"description"`
	Variant     string `json:"variant,omitempty"`
}

// AnalyzeService 結構
type AnalyzeService struct {
	credentials    credential.Provider
	staging        StagingStorage
	analyzer       Analyzer
	encoder        *media.Encoder
	builders       map[models.PromptVariant]*prompts.Builder
	defaultVariant models.PromptVariant
	logger         *slog.Logger
}

// NewAnalyzeService 建立 AnalyzeService 實例，預先準備所有版本的 Builder
func NewAnalyzeService(
	cfg *config.Config,
	credentials credential.Provider,
	staging StagingStorage,
	analyzer Analyzer,
	logger *slog.Logger,
) (*AnalyzeService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("AnalyzeService：設定不得為空")
	}
	if credentials == nil {
		return nil, fmt.Errorf("AnalyzeService：credential.Provider 不得為空")
	}
	if staging == nil {
		return nil, fmt.Errorf("AnalyzeService：StagingStorage 不得為空")
	}
	if analyzer == nil {
		return nil, fmt.Errorf("AnalyzeService：Analyzer 不得為空")
	}
	defaultVariant, err := models.ParseVariant(cfg.Prompts.Analysis.CurrentVersion)
	if err != nil {
		return nil, fmt.Errorf("AnalyzeService：%w", err)
	}

	builders := make(map[models.PromptVariant]*prompts.Builder, len(models.Variants()))
	for _, v := range models.Variants() {
		b, err := prompts.NewBuilder(prompts.BuilderOptions{Variant: v, Model: cfg.Gemini.Model})
		if err != nil {
			return nil, err
		}
		builders[v] = b
	}

	logger = logging.WithComponent(logger, "AnalyzeService")
	logger.Info("AnalyzeService 初始化完成", "model", cfg.Gemini.Model, "defaultVariant", defaultVariant)
	return &AnalyzeService{
		credentials:    credentials,
		staging:        staging,
		analyzer:       analyzer,
		encoder:        media.NewEncoder(),
		builders:       builders,
		defaultVariant: defaultVariant,
		logger:         logger,
	}, nil
}

// DefaultVariant 未指定版本時使用
func (s *AnalyzeService) DefaultVariant() models.PromptVariant {
	return s.defaultVariant
}

// Run 讀取金鑰與暫存檔、組裝請求並呼叫 Analyzer
func (s *AnalyzeService) Run(ctx context.Context, in AnalyzeInput) (*models.AnalysisResult, error) {
	description := strings.TrimSpace(in.Description)
	if in.VideoID == "" {
		return nil, gemini.NewError(gemini.ErrInvalidRequest, "請先上傳參考影片")
	}
	if description == "" {
		return nil, gemini.NewError(gemini.ErrInvalidRequest, "請輸入產品描述")
	}

	variant := s.defaultVariant
	if in.Variant != "" {
		v, err := models.ParseVariant(in.Variant)
		if err != nil {
			return nil, gemini.NewError(gemini.ErrInvalidRequest, err.Error())
		}
		variant = v
	}

	apiKey, err := s.credentials.Load(ctx)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, gemini.NewError(gemini.ErrMissingCredential, "")
	}

	video, err := s.encodeStaged(in.VideoID, models.MediaKindVideo)
	if err != nil {
		return nil, err
	}
	var image *models.MediaPart
	if in.ImageID != "" {
		img, err := s.encodeStaged(in.ImageID, models.MediaKindImage)
		if err != nil {
			return nil, err
		}
		image = &img
	}

	req, err := s.builders[variant].Build(video, image, description)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.analyzer.Analyze(ctx, apiKey, req)
	if err != nil {
		s.logger.Error("影片分析失敗", "videoId", in.VideoID, "variant", variant, "kind", gemini.Kind(err), "error", err)
		return nil, err
	}
	s.logger.Info("影片分析成功",
		"videoId", in.VideoID,
		"hasImage", image != nil,
		"variant", variant,
		"viralScore", result.ViralScore,
		"shots", len(result.Structure),
		"elapsed", time.Since(start),
	)
	return result, nil
}

func (s *AnalyzeService) encodeStaged(id string, kind models.MediaKind) (models.MediaPart, error) {
	file, err := s.staging.Get(id)
	if err != nil {
		s.logger.Warn("找不到暫存檔案", "id", id, "kind", kind, "error", err)
		return models.MediaPart{}, gemini.NewError(gemini.ErrInvalidRequest, fmt.Sprintf("找不到已上傳的%s，請重新上傳", kindLabel(kind)))
	}
	if file.Kind != kind {
		return models.MediaPart{}, gemini.NewError(gemini.ErrInvalidRequest, fmt.Sprintf("檔案 %s 不是%s", id, kindLabel(kind)))
	}
	part, err := s.encoder.EncodeFile(file.Path, file.MIMEType)
	if err != nil {
		if errors.Is(err, media.ErrUnrecognizedMIME) {
			return models.MediaPart{}, gemini.NewError(gemini.ErrInvalidRequest, err.Error())
		}
		return models.MediaPart{}, err
	}
	return part, nil
}

func kindLabel(kind models.MediaKind) string {
	if kind == models.MediaKindImage {
		return "產品圖片"
	}
	return "影片"
}
