package domain

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// OrderParams 已校验、已按精度取整的下单参数，字段均为交易所线上格式。
// Price/StopPrice 为 nil、TimeInForce 为空时不会出现在请求中。
type OrderParams struct {
	Symbol           string
	Side             string
	Type             string
	Quantity         decimal.Decimal
	Price            *decimal.Decimal
	TimeInForce      string
	StopPrice        *decimal.Decimal
	ReduceOnly       bool
	NewClientOrderID string
}

// Values 转换为请求参数
func (p OrderParams) Values() url.Values {
	v := url.Values{}
	v.Set("symbol", p.Symbol)
	v.Set("side", p.Side)
	v.Set("type", p.Type)
	v.Set("quantity", p.Quantity.String())
	v.Set("reduceOnly", strconv.FormatBool(p.ReduceOnly))
	if p.Price != nil {
		v.Set("price", p.Price.String())
	}
	if p.TimeInForce != "" {
		v.Set("timeInForce", p.TimeInForce)
	}
	if p.StopPrice != nil {
		v.Set("stopPrice", p.StopPrice.String())
	}
	if p.NewClientOrderID != "" {
		v.Set("newClientOrderId", p.NewClientOrderID)
	}
	return v
}

// OrderResponse 交易所返回的订单状态，Raw 保存原始报文用于审计
type OrderResponse struct {
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	Symbol        string `json:"symbol"`
	Status        string `json:"status"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	TimeInForce   string `json:"timeInForce"`
	Price         string `json:"price"`
	AvgPrice      string `json:"avgPrice"`
	OrigQty       string `json:"origQty"`
	ExecutedQty   string `json:"executedQty"`
	CumQuote      string `json:"cumQuote"`
	StopPrice     string `json:"stopPrice"`
	ReduceOnly    bool   `json:"reduceOnly"`
	UpdateTime    int64  `json:"updateTime"`

	Raw json.RawMessage `json:"-"`
}

// ExchangeOrderID 交易所订单号的字符串形式
func (r *OrderResponse) ExchangeOrderID() string {
	if r == nil || r.OrderID == 0 {
		return ""
	}
	return strconv.FormatInt(r.OrderID, 10)
}

// Payload 返回原始报文，缺失时重新序列化
func (r *OrderResponse) Payload() json.RawMessage {
	if r == nil {
		return nil
	}
	if len(r.Raw) > 0 {
		return r.Raw
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil
	}
	return data
}
