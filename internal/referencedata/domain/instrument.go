// Package domain 合约交易规则的领域模型
package domain

import (
	"github.com/shopspring/decimal"
	exchange "github.com/wyfcoding/futurestrading/internal/connectivity/domain"
)

// StatusTrading 可交易状态
const StatusTrading = "TRADING"

// InstrumentRules 单个合约的交易规则，零值表示交易所未给出该过滤器
type InstrumentRules struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`

	// PRICE_FILTER
	TickSize decimal.Decimal `json:"tickSize"`
	MinPrice decimal.Decimal `json:"minPrice"`
	MaxPrice decimal.Decimal `json:"maxPrice"`

	// LOT_SIZE
	StepSize decimal.Decimal `json:"stepSize"`
	MinQty   decimal.Decimal `json:"minQty"`
	MaxQty   decimal.Decimal `json:"maxQty"`

	// MIN_NOTIONAL
	MinNotional decimal.Decimal `json:"minNotional"`

	PricePrecision    int `json:"pricePrecision"`
	QuantityPrecision int `json:"quantityPrecision"`
}

// NewInstrumentRules 从交易所元数据解析规则，无法解析的字段按缺失处理
func NewInstrumentRules(info exchange.SymbolInfo) *InstrumentRules {
	rules := &InstrumentRules{
		Symbol:            info.Symbol,
		Status:            info.Status,
		BaseAsset:         info.BaseAsset,
		QuoteAsset:        info.QuoteAsset,
		PricePrecision:    info.PricePrecision,
		QuantityPrecision: info.QuantityPrecision,
	}

	if f, ok := info.Filter(exchange.FilterPrice); ok {
		rules.TickSize = parseDecimal(f.String("tickSize"))
		rules.MinPrice = parseDecimal(f.String("minPrice"))
		rules.MaxPrice = parseDecimal(f.String("maxPrice"))
	}
	if f, ok := info.Filter(exchange.FilterLotSize); ok {
		rules.StepSize = parseDecimal(f.String("stepSize"))
		rules.MinQty = parseDecimal(f.String("minQty"))
		rules.MaxQty = parseDecimal(f.String("maxQty"))
	}
	if f, ok := info.Filter(exchange.FilterMinNotional); ok {
		// 合约接口字段为 notional，现货接口为 minNotional
		notional := f.String("notional")
		if notional == "" {
			notional = f.String("minNotional")
		}
		rules.MinNotional = parseDecimal(notional)
	}
	return rules
}

// IsTrading 是否处于可交易状态
func (r *InstrumentRules) IsTrading() bool {
	return r.Status == StatusTrading
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
