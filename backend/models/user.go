package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"unique;not null"`
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"default:user"` // user, admin
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Instructor is the teaching profile of a user.
type Instructor struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	User          User      `json:"user" gorm:"foreignKey:UserID"`
	FullTime      bool      `json:"full_time" gorm:"default:true"`
	TotalLearners int       `json:"total_learners" gorm:"default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

const (
	OccupationStudent       = "student"
	OccupationDeveloper     = "developer"
	OccupationDataScientist = "data_scientist"
	OccupationDatabaseAdmin = "dba"
)

// Learner is the learning profile of a user.
type Learner struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Occupation string    `json:"occupation" gorm:"size:20;not null;default:student"`
	SocialLink string    `json:"social_link" gorm:"size:200"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
