package application

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	exchange "github.com/wyfcoding/futurestrading/internal/connectivity/domain"
	"github.com/wyfcoding/futurestrading/internal/order/domain"
	refdomain "github.com/wyfcoding/futurestrading/internal/referencedata/domain"
)

// PlaceOrderInput 前端提交的下单参数，数值以字符串传入
type PlaceOrderInput struct {
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	Type        string `json:"type"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price,omitempty"`
	StopPrice   string `json:"stopPrice,omitempty"`
	TimeInForce string `json:"timeInForce,omitempty"`
	ReduceOnly  bool   `json:"reduceOnly,omitempty"`
}

// NumericField Web 请求中的数值字段，JSON 数字、字符串与 null 均可，空字符串视为未填
type NumericField string

func (f *NumericField) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "null":
		*f = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = NumericField(s)
	default:
		var d decimal.Decimal
		if err := d.UnmarshalJSON(b); err != nil {
			return err
		}
		*f = NumericField(raw)
	}
	return nil
}

// PlaceOrderBody POST /api/order 的请求体
type PlaceOrderBody struct {
	Symbol      string       `json:"symbol"`
	Side        string       `json:"side"`
	Type        string       `json:"type"`
	Quantity    NumericField `json:"quantity"`
	Price       NumericField `json:"price,omitempty"`
	StopPrice   NumericField `json:"stopPrice,omitempty"`
	TimeInForce string       `json:"timeInForce,omitempty"`
	ReduceOnly  bool         `json:"reduceOnly,omitempty"`
}

// Input 转为与命令行共用的下单参数
func (b PlaceOrderBody) Input() PlaceOrderInput {
	return PlaceOrderInput{
		Symbol:      b.Symbol,
		Side:        b.Side,
		Type:        b.Type,
		Quantity:    string(b.Quantity),
		Price:       string(b.Price),
		StopPrice:   string(b.StopPrice),
		TimeInForce: b.TimeInForce,
		ReduceOnly:  b.ReduceOnly,
	}
}

// ToRequest 解析为领域下单请求，解析失败返回 *domain.InvalidFieldError
func (in PlaceOrderInput) ToRequest() (domain.OrderRequest, error) {
	side, err := domain.ParseSide(in.Side)
	if err != nil {
		return domain.OrderRequest{}, err
	}
	typ, err := domain.ParseOrderType(in.Type)
	if err != nil {
		return domain.OrderRequest{}, err
	}
	tif, err := domain.ParseTimeInForce(in.TimeInForce)
	if err != nil {
		return domain.OrderRequest{}, err
	}
	qty, err := parseRequired("quantity", in.Quantity)
	if err != nil {
		return domain.OrderRequest{}, err
	}
	price, err := parseOptional("price", in.Price)
	if err != nil {
		return domain.OrderRequest{}, err
	}
	stop, err := parseOptional("stopPrice", in.StopPrice)
	if err != nil {
		return domain.OrderRequest{}, err
	}

	return domain.OrderRequest{
		Symbol:      strings.TrimSpace(in.Symbol),
		Side:        side,
		Type:        typ,
		Quantity:    qty,
		Price:       price,
		TimeInForce: tif,
		StopPrice:   stop,
		ReduceOnly:  in.ReduceOnly,
	}, nil
}

func parseRequired(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, &domain.InvalidFieldError{Field: field, Value: raw, Reason: "is required"}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &domain.InvalidFieldError{Field: field, Value: raw, Reason: "must be a decimal number"}
	}
	return d, nil
}

func parseOptional(field, raw string) (*decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := parseRequired(field, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// SymbolRulesDTO 交易对规则视图
type SymbolRulesDTO struct {
	Symbol            string `json:"symbol"`
	Status            string `json:"status"`
	BaseAsset         string `json:"baseAsset,omitempty"`
	QuoteAsset        string `json:"quoteAsset,omitempty"`
	TickSize          string `json:"tickSize"`
	MinPrice          string `json:"minPrice"`
	MaxPrice          string `json:"maxPrice"`
	StepSize          string `json:"stepSize"`
	MinQty            string `json:"minQty"`
	MaxQty            string `json:"maxQty"`
	MinNotional       string `json:"minNotional"`
	PricePrecision    int    `json:"pricePrecision"`
	QuantityPrecision int    `json:"quantityPrecision"`
}

// OrderDTO 订单记录视图
type OrderDTO struct {
	ID              uint64 `json:"id"`
	ExchangeOrderID string `json:"orderId"`
	ClientOrderID   string `json:"clientOrderId,omitempty"`
	Symbol          string `json:"symbol"`
	Side            string `json:"side"`
	Type            string `json:"type"`
	Quantity        string `json:"quantity"`
	Price           string `json:"price,omitempty"`
	StopPrice       string `json:"stopPrice,omitempty"`
	TimeInForce     string `json:"timeInForce,omitempty"`
	ReduceOnly      bool   `json:"reduceOnly"`
	Status          string `json:"status"`
	ExecutedQty     string `json:"executedQty"`
	AvgPrice        string `json:"avgPrice,omitempty"`
	CreatedAt       int64  `json:"createdAt"`
	UpdatedAt       int64  `json:"updatedAt"`
}

// ActivityDTO 审计日志视图
type ActivityDTO struct {
	ID           uint64 `json:"id"`
	Timestamp    int64  `json:"timestamp"`
	Action       string `json:"action"`
	Symbol       string `json:"symbol,omitempty"`
	OrderID      string `json:"orderId,omitempty"`
	Status       string `json:"status"`
	Message      string `json:"message"`
	ErrorDetails string `json:"errorDetails,omitempty"`
	Interface    string `json:"interface"`
}

// PriceDTO 最新价视图
type PriceDTO struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
	Time   int64  `json:"time"`
}

// decimalString 保留交易所给出的小数位数，例如 0.10 不会被写成 0.1
func decimalString(d decimal.Decimal) string {
	if d.Exponent() < 0 {
		return d.StringFixed(-d.Exponent())
	}
	return d.String()
}

func optionalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// ToSymbolRulesDTO 转换交易对规则
func ToSymbolRulesDTO(r *refdomain.InstrumentRules) SymbolRulesDTO {
	return SymbolRulesDTO{
		Symbol:            r.Symbol,
		Status:            r.Status,
		BaseAsset:         r.BaseAsset,
		QuoteAsset:        r.QuoteAsset,
		TickSize:          decimalString(r.TickSize),
		MinPrice:          decimalString(r.MinPrice),
		MaxPrice:          decimalString(r.MaxPrice),
		StepSize:          decimalString(r.StepSize),
		MinQty:            decimalString(r.MinQty),
		MaxQty:            decimalString(r.MaxQty),
		MinNotional:       decimalString(r.MinNotional),
		PricePrecision:    r.PricePrecision,
		QuantityPrecision: r.QuantityPrecision,
	}
}

// ToOrderDTO 转换订单记录
func ToOrderDTO(o *domain.Order) OrderDTO {
	return OrderDTO{
		ID:              o.ID,
		ExchangeOrderID: o.ExchangeOrderID,
		ClientOrderID:   o.ClientOrderID,
		Symbol:          o.Symbol,
		Side:            o.Side,
		Type:            o.Type,
		Quantity:        o.Quantity.String(),
		Price:           optionalString(o.Price),
		StopPrice:       optionalString(o.StopPrice),
		TimeInForce:     o.TimeInForce,
		ReduceOnly:      o.ReduceOnly,
		Status:          string(o.Status),
		ExecutedQty:     o.ExecutedQty.String(),
		AvgPrice:        optionalString(o.AvgPrice),
		CreatedAt:       o.CreatedAt.UnixMilli(),
		UpdatedAt:       o.UpdatedAt.UnixMilli(),
	}
}

// ToOrderDTOs 批量转换订单记录
func ToOrderDTOs(orders []*domain.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToOrderDTO(o))
	}
	return out
}

// ToActivityDTOs 批量转换审计日志
func ToActivityDTOs(entries []*domain.Activity) []ActivityDTO {
	out := make([]ActivityDTO, 0, len(entries))
	for _, a := range entries {
		out = append(out, ActivityDTO{
			ID:           a.ID,
			Timestamp:    a.Timestamp.UnixMilli(),
			Action:       string(a.Action),
			Symbol:       a.Symbol,
			OrderID:      a.OrderID,
			Status:       string(a.Outcome),
			Message:      a.Message,
			ErrorDetails: a.ErrorDetails,
			Interface:    string(a.Interface),
		})
	}
	return out
}

// ToPriceDTO 转换最新价
func ToPriceDTO(p *exchange.TickerPrice) PriceDTO {
	return PriceDTO{Symbol: p.Symbol, Price: p.Price.String(), Time: p.Time}
}
