package enums

// OrderStatus tracks the lifecycle of a persisted order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusSuccessful OrderStatus = "successful"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusSuccessful, OrderStatusCancelled:
		return true
	}
	return false
}
