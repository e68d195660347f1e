package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"onlinecourse/backend/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := Open(sqlite.Open(dsn), gormlogger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return New(db, nil)
}

func createUser(t *testing.T, s *Store, name string) *models.User {
	t.Helper()
	user := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func createCourse(t *testing.T, s *Store, name string) *models.Course {
	t.Helper()
	course := &models.Course{Name: name, Description: name + " description"}
	require.NoError(t, s.CreateCourse(context.Background(), course))
	return course
}

func createQuestion(t *testing.T, s *Store, courseID uint, text string, correct ...bool) *models.Question {
	t.Helper()
	q := &models.Question{CourseID: courseID, Text: text, Grade: models.DefaultQuestionGrade}
	for i, ok := range correct {
		q.Choices = append(q.Choices, models.Choice{Text: fmt.Sprintf("%s #%d", text, i), IsCorrect: ok})
	}
	require.NoError(t, s.CreateQuestion(context.Background(), q))
	return q
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, s, "alice")
	assert.Equal(t, models.RoleUser, user.Role)

	err := s.CreateUser(ctx, &models.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrConflict)

	found, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = s.GetUser(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCourseSlugAndLessons(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	course := createCourse(t, s, "Intro to Go")
	assert.Equal(t, fmt.Sprintf("intro-to-go-%d", course.ID), course.Slug)

	blank := createCourse(t, s, "")
	assert.Equal(t, models.DefaultCourseName, blank.Name)

	require.NoError(t, s.CreateLesson(ctx, &models.Lesson{CourseID: course.ID, Title: "Second", Order: 2}))
	require.NoError(t, s.CreateLesson(ctx, &models.Lesson{CourseID: course.ID, Title: "First", Order: 1}))
	auto := &models.Lesson{CourseID: course.ID}
	require.NoError(t, s.CreateLesson(ctx, auto))
	assert.Equal(t, 3, auto.Order)
	assert.Equal(t, "title", auto.Title)

	err := s.CreateLesson(ctx, &models.Lesson{CourseID: 999, Title: "Orphan"})
	assert.ErrorIs(t, err, ErrNotFound)

	loaded, err := s.GetCourseBySlug(ctx, course.Slug)
	require.NoError(t, err)
	require.Len(t, loaded.Lessons, 3)
	assert.Equal(t, "First", loaded.Lessons[0].Title)
	assert.Equal(t, "Second", loaded.Lessons[1].Title)

	require.NoError(t, s.DeleteLesson(ctx, course.ID, auto.ID))
	assert.ErrorIs(t, s.DeleteLesson(ctx, course.ID, auto.ID), ErrNotFound)
	lessons, err := s.ListLessons(ctx, course.ID)
	require.NoError(t, err)
	assert.Len(t, lessons, 2)
}

func TestListCoursesOrdersByEnrollment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	quiet := createCourse(t, s, "Quiet course")
	busy := createCourse(t, s, "Busy course")
	other := createCourse(t, s, "Databases")
	for _, name := range []string{"u1", "u2"} {
		user := createUser(t, s, name)
		_, err := s.Enroll(ctx, user.ID, busy.ID, "")
		require.NoError(t, err)
	}

	courses, err := s.ListCourses(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, courses, 3)
	assert.Equal(t, busy.ID, courses[0].ID)
	assert.Equal(t, 2, courses[0].TotalEnrollment)
	assert.Equal(t, quiet.ID, courses[1].ID)

	courses, err = s.ListCourses(ctx, "DATA", 5)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, other.ID, courses[0].ID)
}

func TestEnrollIsUniquePerUserAndCourse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, s, "bob")
	course := createCourse(t, s, "Go")

	enrollment, err := s.Enroll(ctx, user.ID, course.ID, models.EnrollmentHonor)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentHonor, enrollment.Mode)
	assert.Equal(t, DefaultRating, enrollment.Rating)

	_, err = s.Enroll(ctx, user.ID, course.ID, models.EnrollmentAudit)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = s.Enroll(ctx, user.ID, 999, "")
	assert.ErrorIs(t, err, ErrNotFound)

	loaded, err := s.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.TotalEnrollment)

	rated, err := s.RateEnrollment(ctx, user.ID, course.ID, 3.5)
	require.NoError(t, err)
	assert.Equal(t, 3.5, rated.Rating)

	_, err = s.GetEnrollment(ctx, 999, course.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestInstructorLearnerCounters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	lecturer := createUser(t, s, "lecturer")
	course := createCourse(t, s, "Go")

	first := createUser(t, s, "early")
	_, err := s.Enroll(ctx, first.ID, course.ID, "")
	require.NoError(t, err)

	instructor, err := s.CreateInstructor(ctx, lecturer.ID, false)
	require.NoError(t, err)
	assert.False(t, instructor.FullTime)
	_, err = s.CreateInstructor(ctx, lecturer.ID, true)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, s.AddInstructor(ctx, course.ID, instructor.ID))
	assert.ErrorIs(t, s.AddInstructor(ctx, course.ID, instructor.ID), ErrConflict)

	second := createUser(t, s, "late")
	_, err = s.Enroll(ctx, second.ID, course.ID, "")
	require.NoError(t, err)

	loaded, err := s.GetInstructor(ctx, instructor.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.TotalLearners)
	assert.False(t, loaded.FullTime)
	assert.Equal(t, "lecturer", loaded.User.Username)

	require.NoError(t, s.Unenroll(ctx, first.ID, course.ID))
	loaded, err = s.GetInstructor(ctx, instructor.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.TotalLearners)

	withInstructors, err := s.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, withInstructors.Instructors, 1)
	assert.Equal(t, 1, withInstructors.TotalEnrollment)
}

func TestUpsertLearner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, s, "carol")

	learner := &models.Learner{UserID: user.ID, SocialLink: "https://example.com/carol"}
	require.NoError(t, s.UpsertLearner(ctx, learner))
	assert.Equal(t, models.OccupationStudent, learner.Occupation)

	update := &models.Learner{UserID: user.ID, Occupation: models.OccupationDeveloper}
	require.NoError(t, s.UpsertLearner(ctx, update))
	assert.Equal(t, learner.ID, update.ID)

	loaded, err := s.GetLearner(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OccupationDeveloper, loaded.Occupation)
}

func TestCreateQuestionRequiresChoices(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	course := createCourse(t, s, "Go")

	err := s.CreateQuestion(ctx, &models.Question{CourseID: course.ID, Text: "Empty"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = s.CreateQuestion(ctx, &models.Question{CourseID: 999, Text: "Orphan", Choices: []models.Choice{{Text: "a"}}})
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.CreateQuestion(ctx, &models.Question{CourseID: course.ID, Text: "Negative", Grade: -1, Choices: []models.Choice{{Text: "a"}}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	q := createQuestion(t, s, course.ID, "Pick", true, false, true)
	assert.Equal(t, 1.0, q.Grade)

	loaded, err := s.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Choices, 3)
	assert.True(t, loaded.Choices[0].IsCorrect)
	assert.False(t, loaded.Choices[1].IsCorrect)
	assert.Equal(t, q.ID, loaded.Choices[2].QuestionID)
}

func TestCreateQuestionKeepsZeroGrade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	course := createCourse(t, s, "Go")

	practice := &models.Question{
		CourseID: course.ID,
		Text:     "Warm-up",
		Grade:    0,
		Choices:  []models.Choice{{Text: "yes", IsCorrect: true}, {Text: "no"}},
	}
	require.NoError(t, s.CreateQuestion(ctx, practice))

	loaded, err := s.GetQuestion(ctx, practice.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, loaded.Grade)
}

func TestCreateSubmissionChecksCourse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, s, "dave")
	course := createCourse(t, s, "Go")
	other := createCourse(t, s, "Rust")

	q1 := createQuestion(t, s, course.ID, "Q1", true, false)
	q2 := createQuestion(t, s, course.ID, "Q2", false, true)
	foreign := createQuestion(t, s, other.ID, "Foreign", true)

	enrollment, err := s.Enroll(ctx, user.ID, course.ID, "")
	require.NoError(t, err)

	picked := []uint{q1.Choices[0].ID, q2.Choices[1].ID, q1.Choices[0].ID}
	submission, err := s.CreateSubmission(ctx, enrollment.ID, picked)
	require.NoError(t, err)
	assert.Equal(t, []uint{q1.Choices[0].ID, q2.Choices[1].ID}, submission.ChoiceIDs())

	loaded, err := s.GetSubmission(ctx, submission.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.ChoiceIDs(), loaded.ChoiceIDs())
	require.NotNil(t, loaded.Enrollment)
	assert.Equal(t, user.ID, loaded.Enrollment.UserID)

	_, err = s.CreateSubmission(ctx, enrollment.ID, []uint{q1.Choices[0].ID, foreign.Choices[0].ID})
	assert.ErrorIs(t, err, ErrForeignChoice)
	_, err = s.CreateSubmission(ctx, enrollment.ID, []uint{12345})
	assert.ErrorIs(t, err, ErrForeignChoice)
	_, err = s.CreateSubmission(ctx, 999, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	empty, err := s.CreateSubmission(ctx, enrollment.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty.ChoiceIDs())

	all, err := s.ListSubmissions(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byCourse, err := s.ListCourseSubmissions(ctx, course.ID)
	require.NoError(t, err)
	assert.Len(t, byCourse, 2)
}

func TestDeleteQuestionCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, s, "erin")
	course := createCourse(t, s, "Go")
	q1 := createQuestion(t, s, course.ID, "Q1", true, false)
	q2 := createQuestion(t, s, course.ID, "Q2", true)

	enrollment, err := s.Enroll(ctx, user.ID, course.ID, "")
	require.NoError(t, err)
	submission, err := s.CreateSubmission(ctx, enrollment.ID, []uint{q1.Choices[0].ID, q2.Choices[0].ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteQuestion(ctx, q1.ID))
	assert.ErrorIs(t, s.DeleteQuestion(ctx, q1.ID), ErrNotFound)

	var choices int64
	require.NoError(t, s.DB.Model(&models.Choice{}).Where("question_id = ?", q1.ID).Count(&choices).Error)
	assert.Zero(t, choices)

	loaded, err := s.GetSubmission(ctx, submission.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{q2.Choices[0].ID}, loaded.ChoiceIDs())
}

func TestDeleteCourseCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	lecturer := createUser(t, s, "lecturer")
	user := createUser(t, s, "frank")
	course := createCourse(t, s, "Go")
	kept := createCourse(t, s, "Kept")

	instructor, err := s.CreateInstructor(ctx, lecturer.ID, true)
	require.NoError(t, err)
	require.NoError(t, s.AddInstructor(ctx, course.ID, instructor.ID))
	require.NoError(t, s.CreateLesson(ctx, &models.Lesson{CourseID: course.ID, Title: "L1"}))
	require.NoError(t, s.CreateLesson(ctx, &models.Lesson{CourseID: kept.ID, Title: "Kept lesson"}))
	q := createQuestion(t, s, course.ID, "Q", true, false)
	keptQuestion := createQuestion(t, s, kept.ID, "Kept question", true)

	enrollment, err := s.Enroll(ctx, user.ID, course.ID, "")
	require.NoError(t, err)
	_, err = s.CreateSubmission(ctx, enrollment.ID, []uint{q.Choices[0].ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteCourse(ctx, course.ID))
	assert.ErrorIs(t, s.DeleteCourse(ctx, course.ID), ErrNotFound)

	counts := map[string]int64{}
	for name, model := range map[string]interface{}{
		"lessons":     &models.Lesson{},
		"questions":   &models.Question{},
		"choices":     &models.Choice{},
		"enrollments": &models.Enrollment{},
		"submissions": &models.Submission{},
	} {
		var n int64
		require.NoError(t, s.DB.Model(model).Count(&n).Error)
		counts[name] = n
	}
	assert.Equal(t, map[string]int64{
		"lessons":     1,
		"questions":   1,
		"choices":     1,
		"enrollments": 0,
		"submissions": 0,
	}, counts)

	var links int64
	require.NoError(t, s.DB.Table("submission_choices").Count(&links).Error)
	assert.Zero(t, links)
	require.NoError(t, s.DB.Table("course_instructors").Count(&links).Error)
	assert.Zero(t, links)

	loaded, err := s.GetInstructor(ctx, instructor.ID)
	require.NoError(t, err)
	assert.Zero(t, loaded.TotalLearners)

	_, err = s.GetQuestion(ctx, keptQuestion.ID)
	assert.NoError(t, err)
}

func TestCourseStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	course := createCourse(t, s, "Go")
	q := createQuestion(t, s, course.ID, "Q", true)

	for i, mode := range []string{models.EnrollmentAudit, models.EnrollmentAudit, models.EnrollmentBeta} {
		user := createUser(t, s, fmt.Sprintf("user%d", i))
		enrollment, err := s.Enroll(ctx, user.ID, course.ID, mode)
		require.NoError(t, err)
		_, err = s.RateEnrollment(ctx, user.ID, course.ID, float64(i+2))
		require.NoError(t, err)
		_, err = s.CreateSubmission(ctx, enrollment.ID, []uint{q.Choices[0].ID})
		require.NoError(t, err)
	}

	stats, err := s.CourseStats(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalEnrollment)
	assert.Equal(t, map[string]int64{"audit": 2, "BETA": 1}, stats.Modes)
	assert.InDelta(t, 3.0, stats.AverageRating, 0.0001)
	assert.Equal(t, int64(3), stats.Submissions)
	require.Len(t, stats.Trend, 1)
	assert.Equal(t, int64(3), stats.Trend[0].Enrollments)

	_, err = s.CourseStats(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(fmt.Errorf("boom")))
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
}
