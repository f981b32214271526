package domain

import (
	"strconv"
)

// 交易规则过滤器类型
const (
	FilterPrice       = "PRICE_FILTER"
	FilterLotSize     = "LOT_SIZE"
	FilterMinNotional = "MIN_NOTIONAL"
)

// ExchangeInfo 交易所全部合约的交易规则
type ExchangeInfo struct {
	Timezone   string       `json:"timezone"`
	ServerTime int64        `json:"serverTime"`
	Symbols    []SymbolInfo `json:"symbols"`
}

// SymbolInfo 单个合约的元数据
type SymbolInfo struct {
	Symbol            string         `json:"symbol"`
	Status            string         `json:"status"`
	ContractType      string         `json:"contractType,omitempty"`
	BaseAsset         string         `json:"baseAsset"`
	QuoteAsset        string         `json:"quoteAsset"`
	PricePrecision    int            `json:"pricePrecision"`
	QuantityPrecision int            `json:"quantityPrecision"`
	Filters           []SymbolFilter `json:"filters"`
}

// SymbolFilter 原样保存的过滤器，数值字段在交易所返回中为字符串
type SymbolFilter map[string]any

// Type 过滤器类型
func (f SymbolFilter) Type() string {
	return f.String("filterType")
}

// String 取过滤器字段的文本值，字段不存在时返回空串
func (f SymbolFilter) String(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// Filter 按类型查找过滤器
func (s *SymbolInfo) Filter(filterType string) (SymbolFilter, bool) {
	for _, f := range s.Filters {
		if f.Type() == filterType {
			return f, true
		}
	}
	return nil, false
}
