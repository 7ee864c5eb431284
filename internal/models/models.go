package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"             json:"id"`
	Name         string    `gorm:"size:100;not null"                    json:"name"`
	Email        string    `gorm:"size:100;uniqueIndex;not null"        json:"email"`
	PasswordHash string    `gorm:"size:255;not null"                    json:"-"`
	Role         Role      `gorm:"size:20;not null;default:buyer"       json:"role"`
	CreatedAt    time.Time `gorm:"<-:create"                            json:"created_at"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"          json:"id"`
	SellerID    uint            `gorm:"index;not null"                    json:"seller_id"`
	Name        string          `gorm:"size:255;not null"                 json:"name"`
	Description string          `gorm:"type:text"                         json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,3);not null"       json:"price"`
	Stock       int64           `gorm:"not null;check:stock >= 0"         json:"stock"`
	CreatedAt   time.Time       `gorm:"<-:create"                         json:"created_at"`
}
