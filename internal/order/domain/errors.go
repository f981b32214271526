package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidOrder 所有本地校验错误的哨兵，校验失败的订单不会发往交易所
var ErrInvalidOrder = errors.New("invalid order")

// MissingFieldError 订单类型要求的字段缺失
type MissingFieldError struct {
	Type  OrderType
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required for %s orders", e.Field, e.Type)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrInvalidOrder }

// QuantityTooSmallError 数量低于合约最小下单量
type QuantityTooSmallError struct {
	Quantity decimal.Decimal
	MinQty   decimal.Decimal
}

func (e *QuantityTooSmallError) Error() string {
	return fmt.Sprintf("quantity %s is less than minQty %s", e.Quantity, e.MinQty)
}

func (e *QuantityTooSmallError) Is(target error) bool { return target == ErrInvalidOrder }

// InvalidFieldError 字段取值非法
type InvalidFieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *InvalidFieldError) Is(target error) bool { return target == ErrInvalidOrder }
