package schedule

import (
	"context"
	"log/slog"
	"time"
)

type Task interface {
	Run(ctx context.Context) error
	Name() string
}

// Loop 周期性执行任务直到ctx取消
// 单轮失败只记日志, 下一轮照常跑
func Loop(ctx context.Context, interval time.Duration, task Task) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := task.Run(ctx); err != nil {
				slog.Error("task run failed", "task", task.Name(), "error", err)
			}
		}
	}
}
