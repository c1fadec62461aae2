package dto

import (
	"time"

	"carematch/internal/app/ds"
)

// ============ Common ============

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

const DateLayout = "2006-01-02"

// ============ Requests ============

// CreateRequestRequest is the body of POST /api/requests.
type CreateRequestRequest struct {
	ScheduledDate      string `json:"scheduled_date" validate:"required,datetime=2006-01-02,notpast"`
	ScheduledStartTime string `json:"scheduled_start_time" validate:"required,clock"`
	ScheduledEndTime   string `json:"scheduled_end_time" validate:"required,clock"`
	Location1          string `json:"location1" validate:"max=100"`
	Description        string `json:"description" validate:"max=200"`
}

type RequestResponse struct {
	ID                 uint             `json:"id"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	Status             ds.RequestStatus `json:"status"`
	ScheduledDate      string           `json:"scheduled_date"`
	ScheduledStartTime string           `json:"scheduled_start_time"`
	ScheduledEndTime   string           `json:"scheduled_end_time"`
	WorkLocation1      string           `json:"work_location1"`
	WorkLocation2      string           `json:"work_location2,omitempty"`
	CenterID           *uint            `json:"center_id,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`

	OrderStatus      ds.OrderStatus    `json:"order_status,omitempty"`      // engagements only
	Requester        *RequesterSummary `json:"requester,omitempty"`         // supporter, before matching
	RequesterContact *RequesterContact `json:"requester_contact,omitempty"` // matched supporter
	Supporter        *SupporterContact `json:"supporter,omitempty"`         // owning requester
}

type RequestListResponse struct {
	Requests []RequestResponse `json:"requests"`
	Total    int               `json:"total"`
}

// RequesterSummary is what a supporter sees of a requester before claiming.
type RequesterSummary struct {
	AgeGroup string `json:"age_group,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Address1 string `json:"address1,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

type RequesterContact struct {
	FamilyName     string `json:"family_name"`
	FirstName      string `json:"first_name"`
	FamilyNameKana string `json:"family_name_kana"`
	FirstNameKana  string `json:"first_name_kana"`
	Gender         string `json:"gender,omitempty"`
	AgeGroup       string `json:"age_group,omitempty"`
	PhoneNumber    string `json:"phone_number"`
	Address1       string `json:"address1"`
	Address2       string `json:"address2"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	Bio            string `json:"bio,omitempty"`
}

type SupporterContact struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Note        string `json:"note,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// FromRequest maps the stored request onto its wire form without any
// counterpart data.
func FromRequest(req *ds.Request) RequestResponse {
	return RequestResponse{
		ID:                 req.ID,
		Title:              req.Title,
		Description:        req.Description,
		Status:             req.Status,
		ScheduledDate:      req.ScheduledDate.Format(DateLayout),
		ScheduledStartTime: req.ScheduledStartTime,
		ScheduledEndTime:   req.ScheduledEndTime,
		WorkLocation1:      req.WorkLocation1,
		WorkLocation2:      req.WorkLocation2,
		CenterID:           req.CenterID,
		CreatedAt:          req.CreatedAt,
	}
}

// ============ Orders ============

// UpdateStatusRequest is the body of PATCH /api/orders/:requestId.
type UpdateStatusRequest struct {
	UpdateStatus string `json:"update_status" binding:"required"`
}

type OrderResponse struct {
	ID          uint           `json:"id"`
	RequestID   uint           `json:"request_id"`
	SupporterID string         `json:"supporter_id"`
	Status      ds.OrderStatus `json:"status"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func FromOrder(o *ds.Order) *OrderResponse {
	if o == nil {
		return nil
	}
	return &OrderResponse{
		ID:          o.ID,
		RequestID:   o.RequestID,
		SupporterID: o.SupporterID,
		Status:      o.Status,
		UpdatedAt:   o.UpdatedAt,
	}
}

type TransitionResponse struct {
	Request      RequestResponse `json:"request"`
	Order        *OrderResponse  `json:"order,omitempty"`
	OrderMissing bool            `json:"order_missing,omitempty"`
}

type EngagementListResponse struct {
	Engagements []RequestResponse `json:"engagements"`
	Total       int               `json:"total"`
}

// ============ Auth ============

type ProfileResponse struct {
	ID         string `json:"id"`
	Role       string `json:"role"`
	FamilyName string `json:"family_name"`
	FirstName  string `json:"first_name"`
	CenterID   *uint  `json:"center_id,omitempty"`
}
