package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"onlinecourse/backend/models"
)

// CreateSubmission records one exam attempt. Every choice must belong to a
// question of the enrollment's course; duplicates are collapsed.
func (s *Store) CreateSubmission(ctx context.Context, enrollmentID uint, choiceIDs []uint) (*models.Submission, error) {
	unique := make([]uint, 0, len(choiceIDs))
	seen := make(map[uint]bool, len(choiceIDs))
	for _, id := range choiceIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	submission := models.Submission{EnrollmentID: enrollmentID}
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var enrollment models.Enrollment
		if err := tx.First(&enrollment, enrollmentID).Error; err != nil {
			return lookupError("enrollment", err)
		}

		if len(unique) > 0 {
			var choices []models.Choice
			if err := tx.Model(&models.Choice{}).
				Joins("JOIN questions ON questions.id = choices.question_id").
				Where("choices.id IN ? AND questions.course_id = ?", unique, enrollment.CourseID).
				Order("choices.id ASC").
				Find(&choices).Error; err != nil {
				return fmt.Errorf("load choices: %w", err)
			}
			if len(choices) != len(unique) {
				return ErrForeignChoice
			}
			submission.Choices = choices
		}

		if err := tx.Omit("Choices.*", "Enrollment").Create(&submission).Error; err != nil {
			return fmt.Errorf("create submission: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *Store) GetSubmission(ctx context.Context, id uint) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db(ctx).
		Preload("Enrollment").
		Preload("Choices", orderedChoices).
		First(&submission, id).Error; err != nil {
		return nil, lookupError("submission", err)
	}
	return &submission, nil
}

func (s *Store) ListSubmissions(ctx context.Context, enrollmentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := s.db(ctx).
		Preload("Choices", orderedChoices).
		Where("enrollment_id = ?", enrollmentID).
		Order("id DESC").
		Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}

// ListCourseSubmissions returns every submission made by learners of a course.
func (s *Store) ListCourseSubmissions(ctx context.Context, courseID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := s.db(ctx).
		Preload("Choices", orderedChoices).
		Joins("JOIN enrollments ON enrollments.id = submissions.enrollment_id").
		Where("enrollments.course_id = ?", courseID).
		Order("submissions.id ASC").
		Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("list course submissions: %w", err)
	}
	return submissions, nil
}
