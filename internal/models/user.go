package models

import "time"

// User represents a registered account. The email is the login identity
// and is unique at the storage layer; the password is stored only as a
// bcrypt digest.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	EnergyRecords []EnergyRecord `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
