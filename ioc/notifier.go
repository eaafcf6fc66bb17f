package ioc

import (
	"time"

	"github.com/spf13/viper"

	"github.com/psyns/account-monitor/internal/service/notification"
	"github.com/psyns/account-monitor/internal/service/notification/wecom"
)

// InitNotifier webhook未配置时退化为空通知器
func InitNotifier() notification.Notifier {
	type Config struct {
		WebhookURL  string        `mapstructure:"webhook_url"`
		InitMessage string        `mapstructure:"init_message"`
		Timeout     time.Duration `mapstructure:"timeout"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("notify", &cfg); err != nil {
		panic(err)
	}
	if cfg.WebhookURL == "" {
		return notification.NopNotifier{}
	}
	return wecom.NewService(cfg.WebhookURL, cfg.InitMessage, cfg.Timeout)
}
