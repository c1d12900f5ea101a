package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"ViralGen-admin/internal/logging"

	"github.com/robfig/cron/v3"
)

// stopTimeout 停止時等待執行中任務的上限
const stopTimeout = 10 * time.Second

// Scheduler 包裝 cron，目前只負責暫存檔清理
type Scheduler struct {
	cron     *cron.Cron
	sweepJob *SweepJob
	logger   *slog.Logger
}

// NewScheduler 以 Cron 表達式 (含秒) 註冊清理任務；sweepCronSpec 為空時不排程
func NewScheduler(sweepJob *SweepJob, sweepCronSpec string, logger *slog.Logger) (*Scheduler, error) {
	logger = logging.WithComponent(logger, "Scheduler")
	c := cron.New(cron.WithSeconds())

	if sweepCronSpec != "" {
		if sweepJob == nil {
			return nil, fmt.Errorf("排程器：未提供清理任務")
		}
		if _, err := c.AddJob(sweepCronSpec, sweepJob); err != nil {
			return nil, fmt.Errorf("無法新增暫存檔清理任務到排程器 (spec: %s): %w", sweepCronSpec, err)
		}
		logger.Info("暫存檔清理任務已註冊", "spec", sweepCronSpec)
	} else {
		logger.Warn("未提供暫存檔清理任務的 Cron 表達式，該任務將不會被排程")
	}

	return &Scheduler{cron: c, sweepJob: sweepJob, logger: logger}, nil
}

// Entries 已註冊的任務數
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start 非阻塞啟動
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("排程器已啟動", "entries", s.Entries())
}

func (s *Scheduler) Stop() {
	s.logger.Info("正在停止排程器...")
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		s.logger.Info("排程器已優雅停止，所有運行中任務已完成")
	case <-time.After(stopTimeout):
		s.logger.Warn("排程器停止超時，可能仍有任務在執行")
	}
}
