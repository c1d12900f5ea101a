package scheduler

import (
	"log/slog"
	"time"

	"ViralGen-admin/internal/logging"
)

// Sweeper 由 staging.FileSystemStorage 實作
type Sweeper interface {
	Sweep(olderThan time.Duration) (int, error)
}

// SweepJob 是一個排程任務，用於清除過期的暫存影片與圖片
type SweepJob struct {
	sweeper   Sweeper
	retention time.Duration
	logger    *slog.Logger
}

// NewSweepJob 建立一個 SweepJob
func NewSweepJob(s Sweeper, retention time.Duration, logger *slog.Logger) *SweepJob {
	return &SweepJob{sweeper: s, retention: retention, logger: logging.WithComponent(logger, "SweepJob")}
}

// Run 實現 cron.Job 介面 (github.com/robfig/cron/v3)
func (j *SweepJob) Run() {
	j.logger.Debug("執行排程任務 - 清除過期暫存檔", "retention", j.retention)
	removed, err := j.sweeper.Sweep(j.retention)
	if err != nil {
		j.logger.Error("清除暫存檔排程任務執行失敗", "removed", removed, "error", err)
		return
	}
	if removed > 0 {
		j.logger.Info("清除暫存檔排程任務執行完成", "removed", removed)
	}
}
