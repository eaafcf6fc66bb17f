package ioc

import (
	"github.com/adshao/go-binance/v2/futures"
	"github.com/spf13/viper"
)

type AccountConfig struct {
	ApiKey      string  `mapstructure:"api_key"`
	ApiSecret   string  `mapstructure:"api_secret"`
	InitialCash float64 `mapstructure:"initial_cash"`
}

// InitAccounts 账户名 → 密钥与初始资金
func InitAccounts() map[string]AccountConfig {
	var cfg map[string]AccountConfig
	if err := viper.UnmarshalKey("accounts", &cfg); err != nil {
		panic(err)
	}
	if len(cfg) == 0 {
		panic("no accounts configured")
	}
	return cfg
}

func InitFuturesCli(cfg AccountConfig) *futures.Client {
	return futures.NewClient(cfg.ApiKey, cfg.ApiSecret)
}
