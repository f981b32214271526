package domain

import "github.com/shopspring/decimal"

// TickerPrice 最新成交价
type TickerPrice struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Time   int64           `json:"time"`
}
