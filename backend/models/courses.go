package models

import "time"

const DefaultCourseName = "online course"

type Course struct {
	ID              uint         `json:"id" gorm:"primaryKey"`
	Name            string       `json:"name" gorm:"size:30;not null;default:'online course'"`
	Slug            string       `json:"slug" gorm:"size:64;index"`
	ImageURL        string       `json:"image_url"`
	Description     string       `json:"description" gorm:"size:1000"`
	PubDate         *time.Time   `json:"pub_date"`
	TotalEnrollment int          `json:"total_enrollment" gorm:"default:0"`
	Instructors     []Instructor `json:"instructors,omitempty" gorm:"many2many:course_instructors"`
	Lessons         []Lesson     `json:"lessons,omitempty"`
	Questions       []Question   `json:"questions,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type Lesson struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CourseID  uint      `json:"course_id" gorm:"index;not null"`
	Title     string    `json:"title" gorm:"size:200;default:title"`
	Order     int       `json:"order" gorm:"column:sequence_order;default:0"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	EnrollmentAudit = "audit"
	EnrollmentHonor = "honor"
	EnrollmentBeta  = "BETA"
)

// Enrollment links a user to a course. A user holds at most one enrollment per course.
type Enrollment struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	CourseID     uint      `json:"course_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	Course       *Course   `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	DateEnrolled time.Time `json:"date_enrolled"`
	Mode         string    `json:"mode" gorm:"size:5;default:audit"`
	Rating       float64   `json:"rating" gorm:"default:5"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
