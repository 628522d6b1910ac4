package models

type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

type OrderStatus string

const (
	StatusNew             OrderStatus = "new"
	StatusAccepted        OrderStatus = "accepted"
	StatusPendingNew      OrderStatus = "pending_new"
	StatusPartiallyFilled OrderStatus = "partially_filled"
	StatusFilled          OrderStatus = "filled"
	StatusCanceled        OrderStatus = "canceled"
	StatusExpired         OrderStatus = "expired"
	StatusRejected        OrderStatus = "rejected"
	StatusReplaced        OrderStatus = "replaced"
)

// TerminalForManage — статусы, на которых менеджмент лимитки прекращается.
// partially_filled сюда входит сознательно: частичный филл не перегоняем.
func (s OrderStatus) TerminalForManage() bool {
	switch s {
	case StatusFilled, StatusCanceled, StatusExpired, StatusRejected, StatusPartiallyFilled:
		return true
	}
	return false
}

type Order struct {
	ID         string
	Symbol     string
	Side       OrderSide
	Status     OrderStatus
	Qty        float64
	FilledQty  float64
	LimitPrice float64
}
