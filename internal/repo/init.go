package repo

import (
	"gorm.io/gorm"

	"github.com/psyns/account-monitor/internal/entity"
)

// InitTables 为每个账户建一组分表
func InitTables(db *gorm.DB, accountNames []string) error {
	for _, name := range accountNames {
		if err := db.Table(BalanceTable(name)).AutoMigrate(&entity.BalanceSnapshot{}); err != nil {
			return err
		}
		if err := db.Table(OrderTable(name)).AutoMigrate(&entity.OrderRecord{}); err != nil {
			return err
		}
		if err := db.Table(EquityTable(name)).AutoMigrate(&entity.EquitySnapshot{}); err != nil {
			return err
		}
		if err := db.Table(MarginTable(name)).AutoMigrate(&entity.MarginSnapshot{}); err != nil {
			return err
		}
		if err := db.Table(PositionTable(name)).AutoMigrate(&entity.PositionSnapshot{}); err != nil {
			return err
		}
	}
	return nil
}
