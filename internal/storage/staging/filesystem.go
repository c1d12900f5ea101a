// Package staging 暫存已通過驗證的上傳檔案，直到分析送出或逾期被清除
package staging

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ViralGen-admin/internal/config"
	"ViralGen-admin/internal/logging"
	"ViralGen-admin/internal/models"

	"github.com/google/uuid"
)

const metaFileName = "meta.json"

// ErrNotFound 找不到暫存檔 (或 ID 格式不正確)
var ErrNotFound = errors.New("找不到暫存檔案")

// FileSystemStorage 結構負責與本地檔案系統互動
// 目錄結構: basePath/<uuid>/<檔名> + basePath/<uuid>/meta.json
type FileSystemStorage struct {
	basePath string
	now      func() time.Time
	logger   *slog.Logger
}

// NewFileSystemStorage 建立暫存根目錄 (若不存在)
func NewFileSystemStorage(cfg config.StagingConfig, logger *slog.Logger) (*FileSystemStorage, error) {
	logger = logging.WithComponent(logger, "Staging")
	if cfg.Path == "" {
		return nil, fmt.Errorf("staging.path 不得為空")
	}
	absBasePath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("無法取得暫存路徑的絕對路徑 '%s': %w", cfg.Path, err)
	}
	if err := os.MkdirAll(absBasePath, 0o755); err != nil {
		return nil, fmt.Errorf("無法建立暫存根目錄 '%s': %w", absBasePath, err)
	}
	logger.Info("暫存區初始化成功", "path", absBasePath)
	return &FileSystemStorage{basePath: absBasePath, now: time.Now, logger: logger}, nil
}

// BasePath 暫存根目錄的絕對路徑
func (fs *FileSystemStorage) BasePath() string {
	return fs.basePath
}

// Save 寫入檔案與中繼資料並回傳新的 StagedFile
func (fs *FileSystemStorage) Save(kind models.MediaKind, originalFileName, mimeType string, data []byte) (*models.StagedFile, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("Save 參數 data 不得為空")
	}
	id := uuid.NewString()
	dir := filepath.Join(fs.basePath, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("無法建立暫存目錄 '%s': %w", dir, err)
	}

	name := safeFileName(originalFileName, kind)
	file := &models.StagedFile{
		ID:        id,
		Kind:      kind,
		FileName:  name,
		MIMEType:  mimeType,
		Size:      int64(len(data)),
		Path:      filepath.Join(dir, name),
		CreatedAt: fs.now().UTC(),
	}
	if err := os.WriteFile(file.Path, data, 0o644); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("無法寫入暫存檔案 '%s': %w", file.Path, err)
	}
	meta, err := json.Marshal(file)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("序列化暫存中繼資料失敗: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metaFileName), meta, 0o644); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("無法寫入暫存中繼資料: %w", err)
	}
	fs.logger.Info("檔案已暫存", "id", id, "kind", kind, "mimeType", mimeType, "size", file.Size)
	return file, nil
}

// Get 依 ID 讀取中繼資料；ID 必須是 UUID
func (fs *FileSystemStorage) Get(id string) (*models.StagedFile, error) {
	dir, err := fs.dirFor(id)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filepath.Join(dir, metaFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("讀取暫存中繼資料失敗: %w", err)
	}
	var file models.StagedFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("解析暫存中繼資料失敗: %w", err)
	}
	file.Path = filepath.Join(dir, file.FileName)
	if _, err := os.Stat(file.Path); err != nil {
		return nil, ErrNotFound
	}
	return &file, nil
}

// Delete 移除整個暫存目錄；不存在時不視為錯誤
func (fs *FileSystemStorage) Delete(id string) error {
	dir, err := fs.dirFor(id)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("刪除暫存目錄 '%s' 失敗: %w", dir, err)
	}
	return nil
}

// Sweep 刪除建立時間早於 now-olderThan 的暫存目錄，回傳刪除數量
func (fs *FileSystemStorage) Sweep(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(fs.basePath)
	if err != nil {
		return 0, fmt.Errorf("讀取暫存根目錄失敗: %w", err)
	}
	cutoff := fs.now().Add(-olderThan)
	removed := 0
	var errs []error
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := uuid.Parse(e.Name()); err != nil {
			continue
		}
		created, err := fs.createdAt(e.Name())
		if err != nil {
			fs.logger.Warn("無法判斷暫存建立時間，略過", "id", e.Name(), "error", err)
			continue
		}
		if !created.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(fs.basePath, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		fs.logger.Info("已清除逾期暫存檔", "removed", removed, "olderThan", olderThan)
	}
	return removed, errors.Join(errs...)
}

func (fs *FileSystemStorage) createdAt(id string) (time.Time, error) {
	raw, err := os.ReadFile(filepath.Join(fs.basePath, id, metaFileName))
	if err != nil {
		// 中繼資料遺失時以目錄修改時間判斷
		info, statErr := os.Stat(filepath.Join(fs.basePath, id))
		if statErr != nil {
			return time.Time{}, statErr
		}
		return info.ModTime(), nil
	}
	var file models.StagedFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return time.Time{}, err
	}
	return file.CreatedAt, nil
}

func (fs *FileSystemStorage) dirFor(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", ErrNotFound
	}
	return filepath.Join(fs.basePath, parsed.String()), nil
}

// safeFileName 只保留檔名本身，避免路徑穿越
func safeFileName(name string, kind models.MediaKind) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSpace(base)
	if base == "" || base == "." || base == "/" || base == ".." || base == metaFileName {
		return string(kind) + ".bin"
	}
	return base
}
