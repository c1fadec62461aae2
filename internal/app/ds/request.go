package ds

import "time"

type RequestStatus string

const (
	RequestOpen      RequestStatus = "open"
	RequestMatched   RequestStatus = "matched"
	RequestConfirmed RequestStatus = "confirmed"
	RequestCompleted RequestStatus = "completed"
	RequestCanceled  RequestStatus = "canceled"
	RequestExpired   RequestStatus = "expired"
)

// Terminal reports whether no further transition may leave s.
func (s RequestStatus) Terminal() bool {
	return s == RequestCompleted || s == RequestCanceled || s == RequestExpired
}

// HasSupporter reports whether a request in status s must carry a matched supporter.
func (s RequestStatus) HasSupporter() bool {
	return s == RequestMatched || s == RequestConfirmed || s == RequestCompleted
}

// TerminalRequestStatuses are hidden from the requester's own list.
var TerminalRequestStatuses = []RequestStatus{RequestCompleted, RequestCanceled, RequestExpired}

// Request is a unit of work posted by a requester.
type Request struct {
	ID                 uint          `gorm:"primaryKey"`
	RequesterID        string        `gorm:"type:varchar(128);not null;index"`
	Title              string        `gorm:"type:varchar(100);not null"`
	Description        string        `gorm:"type:varchar(200)"`
	Status             RequestStatus `gorm:"type:varchar(20);not null;default:'open';index"`
	MatchedSupporterID *string       `gorm:"type:varchar(128);index"` // set iff Status.HasSupporter()

	ScheduledDate      time.Time `gorm:"not null;index"`
	ScheduledStartTime string    `gorm:"type:varchar(5);not null"` // HH:mm
	ScheduledEndTime   string    `gorm:"type:varchar(5);not null"` // HH:mm
	WorkLocation1      string    `gorm:"type:varchar(100)"`        // shop
	WorkLocation2      string    `gorm:"type:varchar(255)"`        // requester's address
	CenterID           *uint     `gorm:"default:null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
