package models

import "time"

// Customer entity. Purchase count, cumulative total and rank are derived from
// sold merchandise records on demand and never stored here.
type Customer struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null;index"`
	Email     string
	Phone     string
	Address   string
	Memo      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
