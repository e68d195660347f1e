package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"onlinecourse/backend/models"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	var taken int64
	if err := s.db(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", user.Username, user.Email).
		Count(&taken).Error; err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if taken > 0 {
		return fmt.Errorf("username or email already taken: %w", ErrConflict)
	}

	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := s.db(ctx).Create(user).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("username or email already taken: %w", ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db(ctx).First(&user, id).Error; err != nil {
		return nil, lookupError("user", err)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, lookupError("user", err)
	}
	return &user, nil
}

// CreateInstructor gives an existing user an instructor profile.
func (s *Store) CreateInstructor(ctx context.Context, userID uint, fullTime bool) (*models.Instructor, error) {
	instructor := models.Instructor{UserID: userID, FullTime: fullTime}

	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&instructor.User, userID).Error; err != nil {
			return lookupError("user", err)
		}

		var existing int64
		if err := tx.Model(&models.Instructor{}).Where("user_id = ?", userID).Count(&existing).Error; err != nil {
			return fmt.Errorf("check instructor: %w", err)
		}
		if existing > 0 {
			return fmt.Errorf("user %d is already an instructor: %w", userID, ErrConflict)
		}

		// full_time defaults to true in the schema, so a false value is written explicitly
		if err := tx.Omit("User").Create(&instructor).Error; err != nil {
			if IsUniqueViolation(err) {
				return fmt.Errorf("user %d is already an instructor: %w", userID, ErrConflict)
			}
			return fmt.Errorf("create instructor: %w", err)
		}
		if !fullTime {
			if err := tx.Model(&instructor).Update("full_time", false).Error; err != nil {
				return fmt.Errorf("update instructor: %w", err)
			}
			instructor.FullTime = false
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (s *Store) GetInstructor(ctx context.Context, id uint) (*models.Instructor, error) {
	var instructor models.Instructor
	if err := s.db(ctx).Preload("User").First(&instructor, id).Error; err != nil {
		return nil, lookupError("instructor", err)
	}
	return &instructor, nil
}

func (s *Store) GetLearner(ctx context.Context, userID uint) (*models.Learner, error) {
	var learner models.Learner
	if err := s.db(ctx).Where("user_id = ?", userID).First(&learner).Error; err != nil {
		return nil, lookupError("learner", err)
	}
	return &learner, nil
}

// UpsertLearner creates or replaces the learner profile of learner.UserID.
func (s *Store) UpsertLearner(ctx context.Context, learner *models.Learner) error {
	if learner.Occupation == "" {
		learner.Occupation = models.OccupationStudent
	}

	return s.transaction(ctx, func(tx *gorm.DB) error {
		var existing models.Learner
		err := tx.Where("user_id = ?", learner.UserID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(learner).Error; err != nil {
				return fmt.Errorf("create learner: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("query learner: %w", err)
		}

		existing.Occupation = learner.Occupation
		existing.SocialLink = learner.SocialLink
		if err := tx.Save(&existing).Error; err != nil {
			return fmt.Errorf("update learner: %w", err)
		}
		*learner = existing
		return nil
	})
}
