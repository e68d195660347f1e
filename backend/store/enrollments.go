package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"onlinecourse/backend/models"
)

const DefaultRating = 5.0

// Enroll creates the single enrollment of a user in a course and bumps the
// course and instructor counters.
func (s *Store) Enroll(ctx context.Context, userID, courseID uint, mode string) (*models.Enrollment, error) {
	if mode == "" {
		mode = models.EnrollmentAudit
	}
	enrollment := models.Enrollment{
		UserID:       userID,
		CourseID:     courseID,
		Mode:         mode,
		DateEnrolled: time.Now(),
		Rating:       DefaultRating,
	}

	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, courseID).Error; err != nil {
			return lookupError("course", err)
		}
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return lookupError("user", err)
		}

		var existing int64
		if err := tx.Model(&models.Enrollment{}).
			Where("user_id = ? AND course_id = ?", userID, courseID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("check enrollment: %w", err)
		}
		if existing > 0 {
			return ErrAlreadyEnrolled
		}

		if err := tx.Omit("Course").Create(&enrollment).Error; err != nil {
			if IsUniqueViolation(err) {
				return ErrAlreadyEnrolled
			}
			return fmt.Errorf("create enrollment: %w", err)
		}

		if err := tx.Model(&models.Course{}).Where("id = ?", courseID).
			UpdateColumn("total_enrollment", gorm.Expr("total_enrollment + ?", 1)).Error; err != nil {
			return fmt.Errorf("update course enrollment: %w", err)
		}
		instructorIDs, err := courseInstructorIDs(tx, courseID)
		if err != nil {
			return err
		}
		return adjustLearners(tx, instructorIDs, 1)
	})
	if err != nil {
		return nil, err
	}

	s.Log.Infow("user enrolled", "user_id", userID, "course_id", courseID, "mode", mode)
	return &enrollment, nil
}

func (s *Store) GetEnrollment(ctx context.Context, userID, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := s.db(ctx).Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotEnrolled
	}
	if err != nil {
		return nil, fmt.Errorf("query enrollment: %w", err)
	}
	return &enrollment, nil
}

func (s *Store) GetEnrollmentByID(ctx context.Context, id uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := s.db(ctx).First(&enrollment, id).Error; err != nil {
		return nil, lookupError("enrollment", err)
	}
	return &enrollment, nil
}

func (s *Store) ListEnrollments(ctx context.Context, userID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := s.db(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("date_enrolled DESC").
		Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

func (s *Store) RateEnrollment(ctx context.Context, userID, courseID uint, rating float64) (*models.Enrollment, error) {
	enrollment, err := s.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.db(ctx).Model(enrollment).Update("rating", rating).Error; err != nil {
		return nil, fmt.Errorf("rate enrollment: %w", err)
	}
	enrollment.Rating = rating
	return enrollment, nil
}

// Unenroll deletes the enrollment with its submissions and rolls the counters back.
func (s *Store) Unenroll(ctx context.Context, userID, courseID uint) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		var enrollment models.Enrollment
		err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotEnrolled
		}
		if err != nil {
			return fmt.Errorf("query enrollment: %w", err)
		}

		var submissionIDs []uint
		if err := tx.Model(&models.Submission{}).Where("enrollment_id = ?", enrollment.ID).Pluck("id", &submissionIDs).Error; err != nil {
			return fmt.Errorf("collect submissions: %w", err)
		}
		if err := deleteSubmissions(tx, submissionIDs); err != nil {
			return err
		}
		if err := tx.Delete(&enrollment).Error; err != nil {
			return fmt.Errorf("delete enrollment: %w", err)
		}

		if err := tx.Model(&models.Course{}).Where("id = ?", courseID).
			UpdateColumn("total_enrollment", gorm.Expr("CASE WHEN total_enrollment > 0 THEN total_enrollment - 1 ELSE 0 END")).Error; err != nil {
			return fmt.Errorf("update course enrollment: %w", err)
		}
		instructorIDs, err := courseInstructorIDs(tx, courseID)
		if err != nil {
			return err
		}
		return adjustLearners(tx, instructorIDs, -1)
	})
}
