package domain

import (
	"strings"
)

// Side 买卖方向
type Side uint8

const (
	SideUnspecified Side = iota
	SideBuy
	SideSell
)

var sideNames = [...]string{"", "BUY", "SELL"}

func (s Side) String() string {
	if int(s) < len(sideNames) {
		return sideNames[s]
	}
	return ""
}

// ParseSide 解析买卖方向，忽略大小写
func ParseSide(s string) (Side, error) {
	if i := indexOf(sideNames[:], s); i > 0 {
		return Side(i), nil
	}
	return SideUnspecified, &InvalidFieldError{Field: "side", Value: s}
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// OrderType 订单类型
type OrderType uint8

const (
	OrderTypeUnspecified OrderType = iota
	OrderTypeLimit
	OrderTypeMarket
	OrderTypeStop
	OrderTypeStopLimit
	OrderTypeTakeProfit
	OrderTypeTakeProfitLimit
	OrderTypeStopMarket
	OrderTypeTakeProfitMarket
)

var orderTypeNames = [...]string{
	"",
	"LIMIT",
	"MARKET",
	"STOP",
	"STOP_LIMIT",
	"TAKE_PROFIT",
	"TAKE_PROFIT_LIMIT",
	"STOP_MARKET",
	"TAKE_PROFIT_MARKET",
}

func (t OrderType) String() string {
	if int(t) < len(orderTypeNames) {
		return orderTypeNames[t]
	}
	return ""
}

// ParseOrderType 解析订单类型，忽略大小写
func ParseOrderType(s string) (OrderType, error) {
	if i := indexOf(orderTypeNames[:], s); i > 0 {
		return OrderType(i), nil
	}
	return OrderTypeUnspecified, &InvalidFieldError{Field: "type", Value: s}
}

// OrderTypes 全部订单类型
func OrderTypes() []OrderType {
	out := make([]OrderType, 0, len(orderTypeNames)-1)
	for i := 1; i < len(orderTypeNames); i++ {
		out = append(out, OrderType(i))
	}
	return out
}

func (t OrderType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *OrderType) UnmarshalText(b []byte) error {
	v, err := ParseOrderType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// TimeInForce 订单有效期，零值表示未指定
type TimeInForce uint8

const (
	TimeInForceUnspecified TimeInForce = iota
	TimeInForceGTC
	TimeInForceIOC
	TimeInForceFOK
)

var timeInForceNames = [...]string{"", "GTC", "IOC", "FOK"}

func (f TimeInForce) String() string {
	if int(f) < len(timeInForceNames) {
		return timeInForceNames[f]
	}
	return ""
}

// ParseTimeInForce 解析有效期，空串返回未指定
func ParseTimeInForce(s string) (TimeInForce, error) {
	if strings.TrimSpace(s) == "" {
		return TimeInForceUnspecified, nil
	}
	if i := indexOf(timeInForceNames[:], s); i > 0 {
		return TimeInForce(i), nil
	}
	return TimeInForceUnspecified, &InvalidFieldError{Field: "timeInForce", Value: s}
}

func (f TimeInForce) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *TimeInForce) UnmarshalText(b []byte) error {
	v, err := ParseTimeInForce(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func indexOf(names []string, s string) int {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return -1
	}
	for i, n := range names {
		if n == s {
			return i
		}
	}
	return -1
}
