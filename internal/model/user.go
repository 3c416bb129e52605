package model

import "time"

// The Password column only ever holds a bcrypt hash; the plaintext is
// replaced before the record reaches the repository. Username carries no
// uniqueness constraint here, email does.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:64;not null" json:"username"`
	Email     string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
