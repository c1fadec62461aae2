package repository

import (
	"time"

	"carematch/internal/app/ds"

	"gorm.io/gorm/clause"
)

func (r *Repository) GetOrder(requestID uint, supporterID string) (*ds.Order, error) {
	var order ds.Order
	err := r.db.Where("request_id = ? AND supporter_id = ?", requestID, supporterID).First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// CreateOrder inserts a new order. A second order for the same
// (request, supporter) pair fails with ErrDuplicate.
func (r *Repository) CreateOrder(order *ds.Order) error {
	return translate(r.db.Omit(clause.Associations).Create(order).Error)
}

// CompareAndSetOrder moves an order from one status to another.
func (r *Repository) CompareAndSetOrder(id uint, from, to ds.OrderStatus) error {
	result := r.db.Model(&ds.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// HasOrder reports whether any order, in any status, binds supporterID to requestID.
func (r *Repository) HasOrder(requestID uint, supporterID string) (bool, error) {
	var count int64
	err := r.db.Model(&ds.Order{}).
		Where("request_id = ? AND supporter_id = ?", requestID, supporterID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// ListOrdersBySupporter returns every order of the supporter with its request,
// ordered by the request's schedule.
func (r *Repository) ListOrdersBySupporter(supporterID string) ([]ds.Order, error) {
	var orders []ds.Order
	err := r.db.
		Joins("JOIN requests ON requests.id = orders.request_id").
		Where("orders.supporter_id = ?", supporterID).
		Order("requests.scheduled_date ASC, requests.scheduled_start_time ASC, orders.id ASC").
		Preload("Request").
		Find(&orders).Error
	if err != nil {
		return nil, translate(err)
	}
	return orders, nil
}
