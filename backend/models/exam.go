package models

import "time"

// DefaultQuestionGrade is the point value of a question created without one.
const DefaultQuestionGrade = 1.0

// Question is one exam item. A zero grade is valid and makes the question unscored.
type Question struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CourseID  uint      `json:"course_id" gorm:"index;not null"`
	Text      string    `json:"text" gorm:"size:200"`
	Grade     float64   `json:"grade" gorm:"not null"`
	Choices   []Choice  `json:"choices,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Choice struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	QuestionID uint      `json:"question_id" gorm:"index;not null"`
	Text       string    `json:"text" gorm:"size:200"`
	IsCorrect  bool      `json:"is_correct" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Submission is one exam attempt: the set of choices an enrollment selected.
type Submission struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	EnrollmentID uint        `json:"enrollment_id" gorm:"index;not null"`
	Enrollment   *Enrollment `json:"enrollment,omitempty" gorm:"foreignKey:EnrollmentID"`
	Choices      []Choice    `json:"choices,omitempty" gorm:"many2many:submission_choices"`
	CreatedAt    time.Time   `json:"created_at"`
}

// ChoiceIDs returns the ids of the selected choices in stored order.
func (s Submission) ChoiceIDs() []uint {
	ids := make([]uint, 0, len(s.Choices))
	for _, choice := range s.Choices {
		ids = append(ids, choice.ID)
	}
	return ids
}
