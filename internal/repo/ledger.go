package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/psyns/account-monitor/internal/entity"
)

// LedgerRepo 按账户名分表的只追加账本
// 表名形如 {account}_balance / {account}_order, 行一经写入不再修改
type LedgerRepo interface {
	// LastBalance 返回账本尾行
	// found=false 表示表为空, err 表示查询本身失败(表不存在、连接断开等)
	LastBalance(ctx context.Context, accountName string) (entity.BalanceSnapshot, bool, error)
	AppendBalance(ctx context.Context, accountName string, snapshot entity.BalanceSnapshot) error
	AppendOrder(ctx context.Context, accountName string, record entity.OrderRecord) error
	AppendOrders(ctx context.Context, accountName string, records []entity.OrderRecord) error
	AppendEquity(ctx context.Context, accountName string, snapshot entity.EquitySnapshot) error
	AppendMargin(ctx context.Context, accountName string, snapshot entity.MarginSnapshot) error
	AppendPositions(ctx context.Context, accountName string, snapshots []entity.PositionSnapshot) error
}

type ledgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepo(db *gorm.DB) LedgerRepo {
	return &ledgerRepo{
		db: db,
	}
}

func BalanceTable(accountName string) string {
	return fmt.Sprintf("%s_balance", accountName)
}

func OrderTable(accountName string) string {
	return fmt.Sprintf("%s_order", accountName)
}

func EquityTable(accountName string) string {
	return fmt.Sprintf("%s_equity", accountName)
}

func MarginTable(accountName string) string {
	return fmt.Sprintf("%s_margin", accountName)
}

func PositionTable(accountName string) string {
	return fmt.Sprintf("%s_position", accountName)
}

func (r *ledgerRepo) LastBalance(ctx context.Context, accountName string) (entity.BalanceSnapshot, bool, error) {
	var snapshot entity.BalanceSnapshot
	err := r.db.WithContext(ctx).Table(BalanceTable(accountName)).
		Order("id DESC").First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.BalanceSnapshot{}, false, nil
		}
		return entity.BalanceSnapshot{}, false, err
	}
	return snapshot, true, nil
}

func (r *ledgerRepo) AppendBalance(ctx context.Context, accountName string, snapshot entity.BalanceSnapshot) error {
	return r.db.WithContext(ctx).Table(BalanceTable(accountName)).Create(&snapshot).Error
}

func (r *ledgerRepo) AppendOrder(ctx context.Context, accountName string, record entity.OrderRecord) error {
	return r.db.WithContext(ctx).Table(OrderTable(accountName)).Create(&record).Error
}

func (r *ledgerRepo) AppendOrders(ctx context.Context, accountName string, records []entity.OrderRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Table(OrderTable(accountName)).Create(&records).Error
}

func (r *ledgerRepo) AppendEquity(ctx context.Context, accountName string, snapshot entity.EquitySnapshot) error {
	return r.db.WithContext(ctx).Table(EquityTable(accountName)).Create(&snapshot).Error
}

func (r *ledgerRepo) AppendMargin(ctx context.Context, accountName string, snapshot entity.MarginSnapshot) error {
	return r.db.WithContext(ctx).Table(MarginTable(accountName)).Create(&snapshot).Error
}

func (r *ledgerRepo) AppendPositions(ctx context.Context, accountName string, snapshots []entity.PositionSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Table(PositionTable(accountName)).Create(&snapshots).Error
}
