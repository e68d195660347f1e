package store

import (
	"context"
	"fmt"

	"onlinecourse/backend/models"
)

type EnrollmentTrend struct {
	Date        string `json:"date"`
	Enrollments int64  `json:"enrollments"`
}

type CourseStats struct {
	CourseID        uint              `json:"course_id"`
	Name            string            `json:"name"`
	TotalEnrollment int               `json:"total_enrollment"`
	Modes           map[string]int64  `json:"modes"`
	AverageRating   float64           `json:"average_rating"`
	Submissions     int64             `json:"submissions"`
	Trend           []EnrollmentTrend `json:"trend"`
}

// CourseStats aggregates enrollment figures for one course.
func (s *Store) CourseStats(ctx context.Context, courseID uint) (*CourseStats, error) {
	var course models.Course
	if err := s.db(ctx).First(&course, courseID).Error; err != nil {
		return nil, lookupError("course", err)
	}

	stats := CourseStats{
		CourseID:        course.ID,
		Name:            course.Name,
		TotalEnrollment: course.TotalEnrollment,
		Modes:           map[string]int64{},
		Trend:           []EnrollmentTrend{},
	}

	var modes []struct {
		Mode  string
		Count int64
	}
	if err := s.db(ctx).Model(&models.Enrollment{}).
		Select("mode, COUNT(*) AS count").
		Where("course_id = ?", courseID).
		Group("mode").
		Scan(&modes).Error; err != nil {
		return nil, fmt.Errorf("count enrollment modes: %w", err)
	}
	for _, m := range modes {
		stats.Modes[m.Mode] = m.Count
	}

	if err := s.db(ctx).Model(&models.Enrollment{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("course_id = ?", courseID).
		Scan(&stats.AverageRating).Error; err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}

	if err := s.db(ctx).Model(&models.Submission{}).
		Joins("JOIN enrollments ON enrollments.id = submissions.enrollment_id").
		Where("enrollments.course_id = ?", courseID).
		Count(&stats.Submissions).Error; err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	if err := s.db(ctx).Raw(`
		SELECT DATE(date_enrolled) AS date, COUNT(*) AS enrollments
		FROM enrollments
		WHERE course_id = ?
		GROUP BY DATE(date_enrolled)
		ORDER BY date
	`, courseID).Scan(&stats.Trend).Error; err != nil {
		return nil, fmt.Errorf("enrollment trend: %w", err)
	}

	return &stats, nil
}
