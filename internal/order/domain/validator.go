package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	exchange "github.com/wyfcoding/futurestrading/internal/connectivity/domain"
	refdomain "github.com/wyfcoding/futurestrading/internal/referencedata/domain"
)

// OrderRequest 用户提交的原始下单请求，校验后不再修改
type OrderRequest struct {
	Symbol      string
	Side        Side
	Type        OrderType
	Quantity    decimal.Decimal
	Price       *decimal.Decimal
	TimeInForce TimeInForce
	StopPrice   *decimal.Decimal
	ReduceOnly  bool
}

// Quantize 按 increment 的小数位数取整，采用银行家舍入（四舍六入五成双）。
// increment 为零时原样返回。
func Quantize(value, increment decimal.Decimal) decimal.Decimal {
	if increment.IsZero() {
		return value
	}
	return value.RoundBank(-increment.Exponent())
}

// ValidateAndNormalize 校验下单请求并生成交易所参数。
// 校验顺序：
// 1. 基础字段与按订单类型的必填字段，补全默认 timeInForce
// 2. 价格按 tickSize 取整
// 3. 用取整前的数量与 minQty 比较
// 4. 数量按 stepSize 取整
// rules 为 nil 或缺少某个过滤器时跳过对应步骤。触发价原样透传。
func ValidateAndNormalize(req OrderRequest, rules *refdomain.InstrumentRules) (*exchange.OrderParams, error) {
	if err := checkBasics(req); err != nil {
		return nil, err
	}
	tif, err := applyTypePolicy(req)
	if err != nil {
		return nil, err
	}
	if rules == nil {
		rules = &refdomain.InstrumentRules{}
	}

	params := &exchange.OrderParams{
		Symbol:     strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Side:       req.Side.String(),
		Type:       req.Type.String(),
		ReduceOnly: req.ReduceOnly,
	}
	if tif != TimeInForceUnspecified {
		params.TimeInForce = tif.String()
	}

	if req.Price != nil {
		price := Quantize(*req.Price, rules.TickSize)
		params.Price = &price
	}

	if rules.MinQty.IsPositive() && req.Quantity.LessThan(rules.MinQty) {
		return nil, &QuantityTooSmallError{Quantity: req.Quantity, MinQty: rules.MinQty}
	}
	params.Quantity = Quantize(req.Quantity, rules.StepSize)
	if !params.Quantity.IsPositive() {
		return nil, &InvalidFieldError{
			Field:  "quantity",
			Value:  req.Quantity.String(),
			Reason: fmt.Sprintf("rounds to zero at stepSize %s", rules.StepSize),
		}
	}

	if req.StopPrice != nil {
		stop := *req.StopPrice
		params.StopPrice = &stop
	}
	return params, nil
}

func checkBasics(req OrderRequest) error {
	if strings.TrimSpace(req.Symbol) == "" {
		return &InvalidFieldError{Field: "symbol", Value: req.Symbol, Reason: "must not be empty"}
	}
	if req.Side == SideUnspecified || req.Side.String() == "" {
		return &InvalidFieldError{Field: "side", Value: req.Side.String()}
	}
	if req.Type == OrderTypeUnspecified || req.Type.String() == "" {
		return &InvalidFieldError{Field: "type", Value: req.Type.String()}
	}
	if !req.Quantity.IsPositive() {
		return &InvalidFieldError{Field: "quantity", Value: req.Quantity.String(), Reason: "must be greater than 0"}
	}
	if req.Price != nil && !req.Price.IsPositive() {
		return &InvalidFieldError{Field: "price", Value: req.Price.String(), Reason: "must be greater than 0"}
	}
	if req.StopPrice != nil && !req.StopPrice.IsPositive() {
		return &InvalidFieldError{Field: "stopPrice", Value: req.StopPrice.String(), Reason: "must be greater than 0"}
	}
	return nil
}

// applyTypePolicy 检查订单类型要求的字段并返回最终的 timeInForce
func applyTypePolicy(req OrderRequest) (TimeInForce, error) {
	tif := req.TimeInForce
	switch req.Type {
	case OrderTypeLimit:
		if req.Price == nil {
			return tif, &MissingFieldError{Type: req.Type, Field: "price"}
		}
		if tif == TimeInForceUnspecified {
			tif = TimeInForceGTC
		}
	case OrderTypeMarket:
	case OrderTypeStop, OrderTypeTakeProfit:
		if req.StopPrice == nil {
			return tif, &MissingFieldError{Type: req.Type, Field: "stopPrice"}
		}
		if req.Price != nil && tif == TimeInForceUnspecified {
			tif = TimeInForceGTC
		}
	case OrderTypeStopLimit, OrderTypeTakeProfitLimit:
		if req.Price == nil {
			return tif, &MissingFieldError{Type: req.Type, Field: "price"}
		}
		if req.StopPrice == nil {
			return tif, &MissingFieldError{Type: req.Type, Field: "stopPrice"}
		}
		if tif == TimeInForceUnspecified {
			tif = TimeInForceGTC
		}
	case OrderTypeStopMarket, OrderTypeTakeProfitMarket:
		if req.StopPrice == nil {
			return tif, &MissingFieldError{Type: req.Type, Field: "stopPrice"}
		}
	}
	return tif, nil
}
