package entity

import "time"

// Account tracks the next nonce accepted from a signing address.
type Account struct {
	Address   string `gorm:"primaryKey"`
	Nonce     uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}
