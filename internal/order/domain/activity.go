package domain

import "time"

// Action 审计动作
type Action string

const (
	ActionPlaceOrder  Action = "place_order"
	ActionCheckStatus Action = "check_status"
	ActionCancelOrder Action = "cancel_order"
)

// Outcome 动作结果
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// Interface 发起动作的前端
type Interface string

const (
	InterfaceCLI      Interface = "cli"
	InterfaceTerminal Interface = "terminal"
	InterfaceWeb      Interface = "web"
)

// Activity 只追加的审计日志条目
type Activity struct {
	ID        uint64
	Timestamp time.Time
	Action    Action
	Symbol    string
	// 交易所订单号，可为空
	OrderID      string
	Outcome      Outcome
	Message      string
	ErrorDetails string
	Interface    Interface
}
