package decimalx

import "github.com/shopspring/decimal"

// MustFromString 只用于可信输入(常量、测试夹具), 交易所返回值请走 NewFromString
func MustFromString(s string) decimal.Decimal {
	f, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return f
}
