package entity

import (
	"time"
)

// User is an account created by the external auth provider. This service
// only reads users; it never creates or mutates them.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Name      string    `gorm:"not null" json:"name"`
	Country   string    `json:"country"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName matches the collection name used by the auth provider.
func (User) TableName() string {
	return "users"
}

// WatchlistEntry links a user to one ticker symbol they track.
type WatchlistEntry struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	UserID  uint      `gorm:"index;not null" json:"user_id"`
	Symbol  string    `gorm:"not null" json:"symbol"`
	Company string    `json:"company"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"added_at"`
}

// TableName specifies the table name for watchlist entries.
func (WatchlistEntry) TableName() string {
	return "watchlists"
}
