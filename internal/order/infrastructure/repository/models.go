// Package repository 提供订单与审计日志仓储的 GORM 实现
package repository

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/futurestrading/internal/order/domain"
	"github.com/wyfcoding/futurestrading/pkg/db"
)

// OrderModel 订单历史表映射，数值列按十进制字符串存储
type OrderModel struct {
	ID              uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	ExchangeOrderID string    `gorm:"column:exchange_order_id;type:varchar(64);index;not null;comment:交易所订单号"`
	ClientOrderID   string    `gorm:"column:client_order_id;type:varchar(64);index;comment:客户端订单号"`
	Symbol          string    `gorm:"column:symbol;type:varchar(32);index;not null"`
	Side            string    `gorm:"column:side;type:varchar(10);not null"`
	OrderType       string    `gorm:"column:order_type;type:varchar(32);not null"`
	Quantity        string    `gorm:"column:quantity;type:varchar(64);not null"`
	Price           *string   `gorm:"column:price;type:varchar(64)"`
	StopPrice       *string   `gorm:"column:stop_price;type:varchar(64)"`
	TimeInForce     string    `gorm:"column:time_in_force;type:varchar(10)"`
	ReduceOnly      bool      `gorm:"column:reduce_only;not null;default:false"`
	Status          string    `gorm:"column:status;type:varchar(32);index;not null"`
	ExecutedQty     string    `gorm:"column:executed_qty;type:varchar(64);not null;default:'0'"`
	AvgPrice        *string   `gorm:"column:avg_price;type:varchar(64)"`
	ResponseData    string    `gorm:"column:response_data;type:text;comment:交易所响应原文"`
	CreatedAt       time.Time `gorm:"column:created_at;index"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

// TableName 指定表名
func (OrderModel) TableName() string { return "order_history" }

// ActivityModel 审计日志表映射
type ActivityModel struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Timestamp    time.Time `gorm:"column:timestamp;index;not null"`
	Action       string    `gorm:"column:action;type:varchar(32);not null"`
	Symbol       string    `gorm:"column:symbol;type:varchar(32)"`
	OrderID      string    `gorm:"column:order_id;type:varchar(64)"`
	Status       string    `gorm:"column:status;type:varchar(16);not null"`
	Message      string    `gorm:"column:message;type:text"`
	ErrorDetails string    `gorm:"column:error_details;type:text"`
	Interface    string    `gorm:"column:interface;type:varchar(16)"`
}

// TableName 指定表名
func (ActivityModel) TableName() string { return "activity_log" }

// AutoMigrate 创建或升级订单相关表
func AutoMigrate(d *db.DB) error {
	return d.AutoMigrate(&OrderModel{}, &ActivityModel{})
}

func decimalPtrToString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func stringToDecimalPtr(s *string) *decimal.Decimal {
	if s == nil {
		return nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil
	}
	return &d
}

func toOrderModel(o *domain.Order) *OrderModel {
	return &OrderModel{
		ID:              o.ID,
		ExchangeOrderID: o.ExchangeOrderID,
		ClientOrderID:   o.ClientOrderID,
		Symbol:          o.Symbol,
		Side:            o.Side,
		OrderType:       o.Type,
		Quantity:        o.Quantity.String(),
		Price:           decimalPtrToString(o.Price),
		StopPrice:       decimalPtrToString(o.StopPrice),
		TimeInForce:     o.TimeInForce,
		ReduceOnly:      o.ReduceOnly,
		Status:          string(o.Status),
		ExecutedQty:     o.ExecutedQty.String(),
		AvgPrice:        decimalPtrToString(o.AvgPrice),
		ResponseData:    string(o.RawResponse),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrder(m *OrderModel) *domain.Order {
	o := &domain.Order{
		ID:              m.ID,
		ExchangeOrderID: m.ExchangeOrderID,
		ClientOrderID:   m.ClientOrderID,
		Symbol:          m.Symbol,
		Side:            m.Side,
		Type:            m.OrderType,
		Quantity:        parseDecimal(m.Quantity),
		Price:           stringToDecimalPtr(m.Price),
		StopPrice:       stringToDecimalPtr(m.StopPrice),
		TimeInForce:     m.TimeInForce,
		ReduceOnly:      m.ReduceOnly,
		Status:          domain.OrderStatus(m.Status),
		ExecutedQty:     parseDecimal(m.ExecutedQty),
		AvgPrice:        stringToDecimalPtr(m.AvgPrice),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.ResponseData != "" && json.Valid([]byte(m.ResponseData)) {
		o.RawResponse = json.RawMessage(m.ResponseData)
	}
	return o
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func toActivityModel(a *domain.Activity) *ActivityModel {
	return &ActivityModel{
		ID:           a.ID,
		Timestamp:    a.Timestamp,
		Action:       string(a.Action),
		Symbol:       a.Symbol,
		OrderID:      a.OrderID,
		Status:       string(a.Outcome),
		Message:      a.Message,
		ErrorDetails: a.ErrorDetails,
		Interface:    string(a.Interface),
	}
}

func toActivity(m *ActivityModel) *domain.Activity {
	return &domain.Activity{
		ID:           m.ID,
		Timestamp:    m.Timestamp,
		Action:       domain.Action(m.Action),
		Symbol:       m.Symbol,
		OrderID:      m.OrderID,
		Outcome:      domain.Outcome(m.Status),
		Message:      m.Message,
		ErrorDetails: m.ErrorDetails,
		Interface:    domain.Interface(m.Interface),
	}
}
