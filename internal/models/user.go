package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID                    uint           `json:"id" gorm:"primaryKey"`
	Name                  string         `json:"name" gorm:"not null"`
	Email                 string         `json:"email" gorm:"unique;not null"`
	Password              string         `json:"-" gorm:"not null"`
	Phone                 string         `json:"phone"`
	Address               string         `json:"address"`
	Role                  string         `json:"role" gorm:"default:'user'"` // admin, user
	IsSubscriber          bool           `json:"is_subscriber" gorm:"default:false"`
	SubscriptionExpiresAt *time.Time     `json:"subscription_expires_at"`
	Vouchers              []UserVoucher  `json:"vouchers,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `json:"-" gorm:"index"`
}

type UserRole string

const (
	Admin    UserRole = "admin"
	Customer UserRole = "user"
)

// IsActiveSubscriber reports whether the subscriber flag is set and has not
// lapsed at now. A nil expiry means the subscription does not lapse.
func (u *User) IsActiveSubscriber(now time.Time) bool {
	if !u.IsSubscriber {
		return false
	}
	return u.SubscriptionExpiresAt == nil || u.SubscriptionExpiresAt.After(now)
}

func (u *User) IsAdmin() bool {
	return u.Role == string(Admin)
}

// UserVoucher records that a voucher has been handed to a user.
type UserVoucher struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_user_voucher"`
	VoucherID uint       `json:"voucher_id" gorm:"not null;uniqueIndex:idx_user_voucher"`
	Voucher   Voucher    `json:"voucher"`
	Status    string     `json:"status" gorm:"default:'available'"` // available, used, expired
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type UserVoucherStatus string

const (
	VoucherAvailable UserVoucherStatus = "available"
	VoucherUsed      UserVoucherStatus = "used"
	VoucherExpired   UserVoucherStatus = "expired"
)
