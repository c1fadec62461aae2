package ds

import "time"

type OrderStatus string

const (
	OrderMatched   OrderStatus = "matched"
	OrderConfirmed OrderStatus = "confirmed"
	OrderCompleted OrderStatus = "completed"
	OrderCanceled  OrderStatus = "canceled"
	OrderDecline   OrderStatus = "decline" // supporter backed out
	OrderRefusal   OrderStatus = "refusal" // requester asked for another supporter
)

// ReleasedOrderStatuses mark a supporter who walked away from a request.
var ReleasedOrderStatuses = []OrderStatus{OrderDecline, OrderRefusal}

// Order binds one supporter to one request. At most one row exists per
// (RequestID, SupporterID); rows are never deleted.
type Order struct {
	ID          uint        `gorm:"primaryKey"`
	RequestID   uint        `gorm:"not null;uniqueIndex:idx_order_request_supporter"`
	SupporterID string      `gorm:"type:varchar(128);not null;uniqueIndex:idx_order_request_supporter;index"`
	Status      OrderStatus `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time   `gorm:"not null"`
	UpdatedAt   time.Time   `gorm:"not null"`

	Request Request `gorm:"foreignKey:RequestID"`
}
