package ds

import (
	"time"

	"carematch/internal/app/role"
)

// User is the profile of a requester or supporter, keyed by the identity
// provider's subject. Written by onboarding, read by the lifecycle core.
type User struct {
	ID              string    `gorm:"primaryKey;type:varchar(128)"`
	Role            role.Role `gorm:"not null"`
	FamilyName      string    `gorm:"type:varchar(50)"`
	FirstName       string    `gorm:"type:varchar(50)"`
	FamilyNameKana  string    `gorm:"type:varchar(50)"`
	FirstNameKana   string    `gorm:"type:varchar(50)"`
	Gender          string    `gorm:"type:varchar(20)"`
	Birthday        *time.Time
	PhoneNumber     string  `gorm:"type:varchar(20)"`
	Address1        string  `gorm:"type:varchar(255)"`
	Address2        string  `gorm:"type:varchar(255)"`
	ProfileImageKey *string `gorm:"type:varchar(255)"` // object key in the avatar bucket
	Bio             string  `gorm:"type:text"`
	CenterID        *uint   `gorm:"default:null"`
}
