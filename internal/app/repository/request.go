package repository

import (
	"time"

	"carematch/internal/app/ds"
)

// RequestFilter is the predicate for ListRequests. Zero fields do not filter.
type RequestFilter struct {
	RequesterID     string
	Statuses        []ds.RequestStatus
	ExcludeStatuses []ds.RequestStatus
	// ExcludeReleasedBy hides requests on which this supporter holds a
	// declined or refused order.
	ExcludeReleasedBy string
	Limit             int
}

func (r *Repository) CreateRequest(req *ds.Request) error {
	return translate(r.db.Create(req).Error)
}

func (r *Repository) GetRequestByID(id uint) (*ds.Request, error) {
	var req ds.Request
	err := r.db.Where("id = ?", id).First(&req).Error
	if err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

// CompareAndSetRequest moves a request to (to, supporter) only if it is still in
// (from, fromSupporter). ErrStale is returned when the row no longer matches.
func (r *Repository) CompareAndSetRequest(id uint, from ds.RequestStatus, fromSupporter *string, to ds.RequestStatus, supporter *string) error {
	q := r.db.Model(&ds.Request{}).Where("id = ? AND status = ?", id, from)
	if fromSupporter == nil {
		q = q.Where("matched_supporter_id IS NULL")
	} else {
		q = q.Where("matched_supporter_id = ?", *fromSupporter)
	}

	result := q.Updates(map[string]interface{}{
		"status":               to,
		"matched_supporter_id": nullable(supporter),
		"updated_at":           time.Now(),
	})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// ClaimRequest matches an open, unmatched request to supporterID.
func (r *Repository) ClaimRequest(id uint, supporterID string) error {
	result := r.db.Model(&ds.Request{}).
		Where("id = ? AND status = ? AND matched_supporter_id IS NULL", id, ds.RequestOpen).
		Updates(map[string]interface{}{
			"status":               ds.RequestMatched,
			"matched_supporter_id": supporterID,
			"updated_at":           time.Now(),
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// ListRequests returns matching requests ordered by schedule, earliest first.
func (r *Repository) ListRequests(f RequestFilter) ([]ds.Request, error) {
	q := r.db.Model(&ds.Request{})
	if f.RequesterID != "" {
		q = q.Where("requester_id = ?", f.RequesterID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if len(f.ExcludeStatuses) > 0 {
		q = q.Where("status NOT IN ?", f.ExcludeStatuses)
	}
	if f.ExcludeReleasedBy != "" {
		q = q.Where(
			"NOT EXISTS (SELECT 1 FROM orders WHERE orders.request_id = requests.id AND orders.supporter_id = ? AND orders.status IN ?)",
			f.ExcludeReleasedBy, ds.ReleasedOrderStatuses,
		)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var requests []ds.Request
	err := q.Order("scheduled_date ASC, scheduled_start_time ASC, id ASC").Find(&requests).Error
	if err != nil {
		return nil, translate(err)
	}
	return requests, nil
}

func nullable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
