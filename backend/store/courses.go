package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"onlinecourse/backend/models"
)

const DefaultCourseListLimit = 10

func courseSlug(course *models.Course) string {
	return fmt.Sprintf("%s-%d", slug.Make(course.Name), course.ID)
}

func orderedLessons(db *gorm.DB) *gorm.DB {
	return db.Order("sequence_order ASC").Order("id ASC")
}

func (s *Store) CreateCourse(ctx context.Context, course *models.Course) error {
	if strings.TrimSpace(course.Name) == "" {
		course.Name = models.DefaultCourseName
	}

	return s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(course).Error; err != nil {
			return fmt.Errorf("create course: %w", err)
		}
		course.Slug = courseSlug(course)
		if err := tx.Model(course).Update("slug", course.Slug).Error; err != nil {
			return fmt.Errorf("set course slug: %w", err)
		}
		return nil
	})
}

// GetCourse loads a course with its ordered lessons and its instructors.
func (s *Store) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := s.db(ctx).
		Preload("Lessons", orderedLessons).
		Preload("Instructors.User").
		First(&course, id).Error; err != nil {
		return nil, lookupError("course", err)
	}
	return &course, nil
}

func (s *Store) GetCourseBySlug(ctx context.Context, courseSlug string) (*models.Course, error) {
	var course models.Course
	if err := s.db(ctx).
		Preload("Lessons", orderedLessons).
		Preload("Instructors.User").
		Where("slug = ?", courseSlug).
		First(&course).Error; err != nil {
		return nil, lookupError("course", err)
	}
	return &course, nil
}

// ListCourses returns the most enrolled courses first, optionally filtered by a
// case-insensitive search on name and description.
func (s *Store) ListCourses(ctx context.Context, search string, limit int) ([]models.Course, error) {
	if limit <= 0 {
		limit = DefaultCourseListLimit
	}

	query := s.db(ctx).Model(&models.Course{})
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var courses []models.Course
	if err := query.Order("total_enrollment DESC").Order("id ASC").Limit(limit).Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// UpdateCourse saves the course columns and refreshes its slug. Associations are
// left untouched.
func (s *Store) UpdateCourse(ctx context.Context, course *models.Course) error {
	if strings.TrimSpace(course.Name) == "" {
		course.Name = models.DefaultCourseName
	}
	course.Slug = courseSlug(course)

	if err := s.db(ctx).Omit(clause.Associations).Save(course).Error; err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// DeleteCourse removes the course and everything it owns: lessons, questions with
// their choices, enrollments with their submissions, and instructor links.
func (s *Store) DeleteCourse(ctx context.Context, id uint) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, id).Error; err != nil {
			return lookupError("course", err)
		}

		var questionIDs, choiceIDs, enrollmentIDs, submissionIDs []uint
		if err := tx.Model(&models.Question{}).Where("course_id = ?", id).Pluck("id", &questionIDs).Error; err != nil {
			return fmt.Errorf("collect questions: %w", err)
		}
		if len(questionIDs) > 0 {
			if err := tx.Model(&models.Choice{}).Where("question_id IN ?", questionIDs).Pluck("id", &choiceIDs).Error; err != nil {
				return fmt.Errorf("collect choices: %w", err)
			}
		}
		if err := tx.Model(&models.Enrollment{}).Where("course_id = ?", id).Pluck("id", &enrollmentIDs).Error; err != nil {
			return fmt.Errorf("collect enrollments: %w", err)
		}
		if len(enrollmentIDs) > 0 {
			if err := tx.Model(&models.Submission{}).Where("enrollment_id IN ?", enrollmentIDs).Pluck("id", &submissionIDs).Error; err != nil {
				return fmt.Errorf("collect submissions: %w", err)
			}
		}

		instructorIDs, err := courseInstructorIDs(tx, id)
		if err != nil {
			return err
		}
		if err := adjustLearners(tx, instructorIDs, -len(enrollmentIDs)); err != nil {
			return err
		}

		if err := deleteSubmissions(tx, submissionIDs); err != nil {
			return err
		}
		if len(choiceIDs) > 0 {
			if err := tx.Exec("DELETE FROM submission_choices WHERE choice_id IN ?", choiceIDs).Error; err != nil {
				return fmt.Errorf("unlink choices: %w", err)
			}
		}

		steps := []struct {
			what  string
			model interface{}
			where string
			args  interface{}
		}{
			{"enrollments", &models.Enrollment{}, "course_id = ?", id},
			{"choices", &models.Choice{}, "question_id IN ?", questionIDs},
			{"questions", &models.Question{}, "course_id = ?", id},
			{"lessons", &models.Lesson{}, "course_id = ?", id},
		}
		for _, step := range steps {
			if err := tx.Where(step.where, step.args).Delete(step.model).Error; err != nil {
				return fmt.Errorf("delete %s: %w", step.what, err)
			}
		}

		if err := tx.Exec("DELETE FROM course_instructors WHERE course_id = ?", id).Error; err != nil {
			return fmt.Errorf("unlink instructors: %w", err)
		}
		if err := tx.Delete(&course).Error; err != nil {
			return fmt.Errorf("delete course: %w", err)
		}

		s.Log.Infow("course deleted",
			"course_id", id,
			"questions", len(questionIDs),
			"enrollments", len(enrollmentIDs),
			"submissions", len(submissionIDs),
		)
		return nil
	})
}

// AddInstructor links an instructor to a course. Learners already enrolled in the
// course are added to the instructor's total.
func (s *Store) AddInstructor(ctx context.Context, courseID, instructorID uint) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, courseID).Error; err != nil {
			return lookupError("course", err)
		}
		var instructor models.Instructor
		if err := tx.First(&instructor, instructorID).Error; err != nil {
			return lookupError("instructor", err)
		}

		var linked int64
		if err := tx.Table("course_instructors").
			Where("course_id = ? AND instructor_id = ?", courseID, instructorID).
			Count(&linked).Error; err != nil {
			return fmt.Errorf("check instructor link: %w", err)
		}
		if linked > 0 {
			return fmt.Errorf("instructor %d already teaches course %d: %w", instructorID, courseID, ErrConflict)
		}

		if err := tx.Exec("INSERT INTO course_instructors (course_id, instructor_id) VALUES (?, ?)", courseID, instructorID).Error; err != nil {
			return fmt.Errorf("link instructor: %w", err)
		}
		return adjustLearners(tx, []uint{instructorID}, course.TotalEnrollment)
	})
}

func courseInstructorIDs(tx *gorm.DB, courseID uint) ([]uint, error) {
	var ids []uint
	if err := tx.Table("course_instructors").Where("course_id = ?", courseID).Pluck("instructor_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("collect instructors: %w", err)
	}
	return ids, nil
}

// adjustLearners shifts total_learners of the given instructors by delta, never
// below zero.
func adjustLearners(tx *gorm.DB, instructorIDs []uint, delta int) error {
	if len(instructorIDs) == 0 || delta == 0 {
		return nil
	}
	expr := gorm.Expr("total_learners + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("CASE WHEN total_learners + ? > 0 THEN total_learners + ? ELSE 0 END", delta, delta)
	}
	if err := tx.Model(&models.Instructor{}).
		Where("id IN ?", instructorIDs).
		UpdateColumn("total_learners", expr).Error; err != nil {
		return fmt.Errorf("update instructor learners: %w", err)
	}
	return nil
}

func deleteSubmissions(tx *gorm.DB, submissionIDs []uint) error {
	if len(submissionIDs) == 0 {
		return nil
	}
	if err := tx.Exec("DELETE FROM submission_choices WHERE submission_id IN ?", submissionIDs).Error; err != nil {
		return fmt.Errorf("unlink submission choices: %w", err)
	}
	if err := tx.Where("id IN ?", submissionIDs).Delete(&models.Submission{}).Error; err != nil {
		return fmt.Errorf("delete submissions: %w", err)
	}
	return nil
}

func (s *Store) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	if strings.TrimSpace(lesson.Title) == "" {
		lesson.Title = "title"
	}

	return s.transaction(ctx, func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, lesson.CourseID).Error; err != nil {
			return lookupError("course", err)
		}

		if lesson.Order <= 0 {
			var count int64
			if err := tx.Model(&models.Lesson{}).Where("course_id = ?", lesson.CourseID).Count(&count).Error; err != nil {
				return fmt.Errorf("count lessons: %w", err)
			}
			lesson.Order = int(count) + 1
		}

		if err := tx.Create(lesson).Error; err != nil {
			return fmt.Errorf("create lesson: %w", err)
		}
		return nil
	})
}

func (s *Store) GetLesson(ctx context.Context, courseID, lessonID uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := s.db(ctx).Where("id = ? AND course_id = ?", lessonID, courseID).First(&lesson).Error; err != nil {
		return nil, lookupError("lesson", err)
	}
	return &lesson, nil
}

func (s *Store) ListLessons(ctx context.Context, courseID uint) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := orderedLessons(s.db(ctx)).Where("course_id = ?", courseID).Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

func (s *Store) UpdateLesson(ctx context.Context, lesson *models.Lesson) error {
	if err := s.db(ctx).Save(lesson).Error; err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return nil
}

func (s *Store) DeleteLesson(ctx context.Context, courseID, lessonID uint) error {
	result := s.db(ctx).Where("id = ? AND course_id = ?", lessonID, courseID).Delete(&models.Lesson{})
	if result.Error != nil {
		return fmt.Errorf("delete lesson: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("lesson: %w", ErrNotFound)
	}
	return nil
}
