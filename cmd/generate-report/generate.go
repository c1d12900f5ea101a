package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ViralGen-admin/internal/config"
	"ViralGen-admin/internal/credential"
	"ViralGen-admin/internal/media"
	"ViralGen-admin/internal/models"
	"ViralGen-admin/internal/report"
	"ViralGen-admin/internal/services"
	"ViralGen-admin/internal/storage/staging"
)

// generate 將本機檔案放入臨時暫存區，走與網頁相同的上傳驗證與分析流程
func generate(
	ctx context.Context,
	cfg *config.Config,
	opts options,
	credentials credential.Provider,
	analyzer services.Analyzer,
	now time.Time,
	logger *slog.Logger,
) ([]string, error) {
	tmp, err := os.MkdirTemp("", "viralgen-cli-*")
	if err != nil {
		return nil, fmt.Errorf("無法建立臨時暫存區: %w", err)
	}
	defer os.RemoveAll(tmp)

	store, err := staging.NewFileSystemStorage(config.StagingConfig{Path: tmp}, logger)
	if err != nil {
		return nil, err
	}
	uploads, err := services.NewUploadService(media.UploadLimits{MaxVideoBytes: cfg.Upload.MaxVideoBytes, MaxImageBytes: cfg.Upload.MaxImageBytes}, store, logger)
	if err != nil {
		return nil, err
	}
	analyze, err := services.NewAnalyzeService(cfg, credentials, store, analyzer, logger)
	if err != nil {
		return nil, err
	}

	video, err := stageLocal(opts.VideoPath, uploads.StageVideo)
	if err != nil {
		return nil, err
	}
	in := services.AnalyzeInput{VideoID: video, Description: opts.Description, Variant: opts.Variant}
	if opts.ImagePath != "" {
		if in.ImageID, err = stageLocal(opts.ImagePath, uploads.StageImage); err != nil {
			return nil, err
		}
	}

	result, err := analyze.Run(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("無法建立輸出目錄: %w", err)
	}
	jsonPath := filepath.Join(opts.OutDir, "result.json")
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化分析結果失敗: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("寫入 %s 失敗: %w", jsonPath, err)
	}

	var doc bytes.Buffer
	if err := report.RenderWordDoc(&doc, *result, now); err != nil {
		return nil, err
	}
	docPath := filepath.Join(opts.OutDir, report.ExportFileName(now))
	if err := os.WriteFile(docPath, doc.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("寫入 %s 失敗: %w", docPath, err)
	}

	logger.Info("報告已生成", "json", jsonPath, "doc", docPath, "viralScore", result.ViralScore)
	return []string{jsonPath, docPath}, nil
}

type stageFunc func(fileName, declaredMIME string, r io.Reader) (*models.StagedFile, error)

func stageLocal(path string, stage stageFunc) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("無法開啟 %s: %w", path, err)
	}
	defer f.Close()
	// MIME 類型由檔案內容判斷
	staged, err := stage(filepath.Base(path), "", f)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return staged.ID, nil
}
