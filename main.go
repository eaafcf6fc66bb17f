package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/psyns/account-monitor/internal/repo"
	"github.com/psyns/account-monitor/internal/schedule"
	"github.com/psyns/account-monitor/internal/service/exchange/binance"
	"github.com/psyns/account-monitor/internal/service/ledger"
	"github.com/psyns/account-monitor/internal/service/monitor"
	"github.com/psyns/account-monitor/ioc"
)

func initViper() {

	// --config=./config/xxx.yaml
	file := pflag.String("config", "./config/config.dev.yaml", "specify config file")
	pflag.Parse()

	viper.SetConfigFile(*file)
	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s \n", err))
	}

	viper.SetDefault("poll.balance_interval", time.Hour)
	viper.SetDefault("poll.equity_interval", 10*time.Minute)
	viper.SetDefault("poll.trade_interval", 6*time.Hour)
}

func main() {
	initViper()

	db := ioc.InitDB()
	accounts := ioc.InitAccounts()
	notifier := ioc.InitNotifier()

	names := lo.Keys(accounts)
	if err := repo.InitTables(db, names); err != nil {
		panic(err)
	}
	ledgerRepo := repo.NewLedgerRepo(db)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup
	for name, cfg := range accounts {
		cli := ioc.InitFuturesCli(cfg)
		accountSvc := binance.NewAccountService(cli)
		tradeSvc := binance.NewTradeService(cli)
		streamSvc := binance.NewUserStreamService(cli, name)

		updater := ledger.NewUpdater(name, decimal.NewFromFloat(cfg.InitialCash), accountSvc, ledgerRepo)
		reporter := ledger.NewReporter(name, accountSvc)
		recorder := monitor.NewAccountRecorder(name, streamSvc, updater, ledgerRepo,
			monitor.WithNotifier(notifier))

		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			if err := recorder.Run(ctx); err != nil && ctx.Err() == nil {
				notifier.SendError(ctx, fmt.Sprintf("account %s recorder stopped: %v", name, err))
			}
		}(name)

		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			schedule.Loop(ctx, viper.GetDuration("poll.balance_interval"),
				monitor.NewBalancePollTask(name, updater))
		}(name)

		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			schedule.Loop(ctx, viper.GetDuration("poll.equity_interval"),
				monitor.NewEquityPollTask(name, reporter, ledgerRepo))
		}(name)

		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			schedule.Loop(ctx, viper.GetDuration("poll.trade_interval"),
				monitor.NewTradeBackfillTask(name, tradeSvc, ledgerRepo))
		}(name)
	}

	notifier.Send(ctx, fmt.Sprintf("account monitor started\naccounts: %s", strings.Join(names, ", ")))
	wg.Wait()
}
