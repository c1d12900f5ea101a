package services

import (
	"context"

	"ViralGen-admin/internal/models"
	"ViralGen-admin/internal/prompts"
)

// StagingStorage 介面定義了暫存操作
type StagingStorage interface {
	Save(kind models.MediaKind, originalFileName, mimeType string, data []byte) (*models.StagedFile, error)
	Get(id string) (*models.StagedFile, error)
}

// Analyzer 由 gemini.Client 實作
type Analyzer interface {
	Analyze(ctx context.Context, apiKey string, req *prompts.AnalysisRequest) (*models.AnalysisResult, error)
}
