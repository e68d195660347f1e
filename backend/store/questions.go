package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"onlinecourse/backend/models"
)

func orderedChoices(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// CreateQuestion stores a question together with its choices.
func (s *Store) CreateQuestion(ctx context.Context, question *models.Question) error {
	if len(question.Choices) == 0 {
		return fmt.Errorf("question needs at least one choice: %w", ErrInvalidInput)
	}
	if question.Grade < 0 {
		return fmt.Errorf("question grade must not be negative: %w", ErrInvalidInput)
	}

	return s.transaction(ctx, func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, question.CourseID).Error; err != nil {
			return lookupError("course", err)
		}
		if err := tx.Create(question).Error; err != nil {
			return fmt.Errorf("create question: %w", err)
		}
		return nil
	})
}

// GetQuestion loads a question with every choice and its correctness flag.
func (s *Store) GetQuestion(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := s.db(ctx).Preload("Choices", orderedChoices).First(&question, id).Error; err != nil {
		return nil, lookupError("question", err)
	}
	return &question, nil
}

// ListQuestions returns the exam of a course: its questions with their choices.
func (s *Store) ListQuestions(ctx context.Context, courseID uint) ([]models.Question, error) {
	var questions []models.Question
	if err := s.db(ctx).
		Preload("Choices", orderedChoices).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// DeleteQuestion removes a question, its choices and any submission links to them.
func (s *Store) DeleteQuestion(ctx context.Context, id uint) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		var question models.Question
		if err := tx.First(&question, id).Error; err != nil {
			return lookupError("question", err)
		}

		var choiceIDs []uint
		if err := tx.Model(&models.Choice{}).Where("question_id = ?", id).Pluck("id", &choiceIDs).Error; err != nil {
			return fmt.Errorf("collect choices: %w", err)
		}
		if len(choiceIDs) > 0 {
			if err := tx.Exec("DELETE FROM submission_choices WHERE choice_id IN ?", choiceIDs).Error; err != nil {
				return fmt.Errorf("unlink choices: %w", err)
			}
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.Choice{}).Error; err != nil {
			return fmt.Errorf("delete choices: %w", err)
		}
		if err := tx.Delete(&question).Error; err != nil {
			return fmt.Errorf("delete question: %w", err)
		}
		return nil
	})
}
