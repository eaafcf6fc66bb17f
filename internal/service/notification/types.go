package notification

import "context"

// Notifier 尽力而为的告警通道
// 发送失败只记日志, 永远不向调用方抛错, 不能因为告警失败打断采集
type Notifier interface {
	Send(ctx context.Context, text string)
	SendError(ctx context.Context, text string)
	SendImage(ctx context.Context, filePath string)
}

type NopNotifier struct{}

func (NopNotifier) Send(ctx context.Context, text string)          {}
func (NopNotifier) SendError(ctx context.Context, text string)     {}
func (NopNotifier) SendImage(ctx context.Context, filePath string) {}
