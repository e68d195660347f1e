package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"onlinecourse/backend/config"
	"onlinecourse/backend/middleware"
	"onlinecourse/backend/models"
	"onlinecourse/backend/store"
	"onlinecourse/backend/utils"
)

const dateLayout = "2006-01-02"

type CoursesController struct {
	Store *store.Store
	Cfg   *config.Config
	Log   *zap.SugaredLogger
}

func NewCoursesController(s *store.Store, cfg *config.Config, log *zap.SugaredLogger) *CoursesController {
	return &CoursesController{Store: s, Cfg: cfg, Log: log}
}

type CourseRequest struct {
	Name        string `json:"name" validate:"max=30" example:"Intro to Go"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	Description string `json:"description" validate:"required,max=1000"`
	PubDate     string `json:"pub_date" validate:"omitempty,datetime=2006-01-02" example:"2024-09-01"`
}

type LessonRequest struct {
	Title   string `json:"title" validate:"max=200"`
	Order   int    `json:"order" validate:"gte=0"`
	Content string `json:"content"`
}

type EnrollRequest struct {
	Mode string `json:"mode" validate:"omitempty,oneof=audit honor BETA"`
}

type RatingRequest struct {
	Rating *float64 `json:"rating" validate:"required,gte=0,lte=5"`
}

type InstructorLinkRequest struct {
	InstructorID uint `json:"instructor_id" validate:"required"`
}

type InstructorRequest struct {
	UserID   uint  `json:"user_id" validate:"required"`
	FullTime *bool `json:"full_time"`
}

// ListCourses godoc
// @Summary Popular courses
// @Description Courses ordered by total enrollment, optionally filtered by name
// @Tags courses
// @Produce json
// @Param search query string false "Name filter"
// @Param limit query int false "Max results (default 10)"
// @Success 200 {object} utils.SuccessResponse
// @Router /courses [get]
func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit <= 0 {
		return utils.BadRequest(c, "Invalid limit")
	}

	courses, err := cc.Store.ListCourses(c.UserContext(), c.Query("search"), limit)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, courses)
}

// GetCourseDetails godoc
// @Summary Course details
// @Description Course with ordered lessons and instructors. is_enrolled is set when a valid token is sent.
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /courses/{id} [get]
func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	course, err := cc.Store.GetCourse(c.UserContext(), courseID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return cc.courseDetails(c, course)
}

// GetCourseBySlug godoc
// @Summary Course details by slug
// @Description Same payload as the course details endpoint, looked up by slug
// @Tags courses
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /courses/slug/{slug} [get]
func (cc *CoursesController) GetCourseBySlug(c *fiber.Ctx) error {
	course, err := cc.Store.GetCourseBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return cc.courseDetails(c, course)
}

func (cc *CoursesController) courseDetails(c *fiber.Ctx, course *models.Course) error {
	// The token is optional: an anonymous caller is simply not enrolled
	isEnrolled := false
	if userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg); err == nil {
		_, err := cc.Store.GetEnrollment(c.UserContext(), userID, course.ID)
		switch {
		case err == nil:
			isEnrolled = true
		case !errors.Is(err, store.ErrNotEnrolled):
			return utils.HandleError(c, err)
		}
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"course":      course,
		"is_enrolled": isEnrolled,
	})
}

// Enroll godoc
// @Summary Enroll in a course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param input body EnrollRequest false "Enrollment mode"
// @Success 201 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/enroll [post]
func (cc *CoursesController) Enroll(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input EnrollRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return utils.BadRequest(c, "Cannot parse JSON")
		}
	}
	if errs := utils.ValidateStruct(input); len(errs) > 0 {
		return utils.ValidationError(c, errs)
	}

	enrollment, err := cc.Store.Enroll(c.UserContext(), userID, courseID, input.Mode)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return utils.Created(c, enrollment)
}

// Unenroll godoc
// @Summary Leave a course
// @Description Deletes the enrollment with its submissions
// @Tags courses
// @Param id path int true "Course ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/enroll [delete]
func (cc *CoursesController) Unenroll(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	if err := cc.Store.Unenroll(c.UserContext(), userID, courseID); err != nil {
		return utils.HandleError(c, err)
	}

	cc.Log.Infow("user unenrolled", "user_id", userID, "course_id", courseID)
	return utils.NoContent(c)
}

// RateCourse godoc
// @Summary Rate an enrolled course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param input body RatingRequest true "Rating from 0 to 5"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/rating [put]
func (cc *CoursesController) RateCourse(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input RatingRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); len(errs) > 0 {
		return utils.ValidationError(c, errs)
	}

	enrollment, err := cc.Store.RateEnrollment(c.UserContext(), userID, courseID, *input.Rating)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, enrollment)
}

// CreateCourse godoc
// @Summary Create a course
// @Tags admin
// @Accept json
// @Produce json
// @Param input body CourseRequest true "Course"
// @Success 201 {object} utils.SuccessResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var input CourseRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); len(errs) > 0 {
		return utils.ValidationError(c, errs)
	}

	course := models.Course{}
	if err := applyCourseInput(&course, input); err != nil {
		return utils.BadRequest(c, err.Error())
	}
	if err := cc.Store.CreateCourse(c.UserContext(), &course); err != nil {
		return utils.HandleError(c, err)
	}

	cc.Log.Infow("course created", "course_id", course.ID, "slug", course.Slug)
	return utils.Created(c, course)
}

// UpdateCourse godoc
// @Summary Update a course
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param input body CourseRequest true "Course"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/courses/{id} [put]
func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input CourseRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); len(errs) > 0 {
		return utils.ValidationError(c, errs)
	}

	course, err := cc.Store.GetCourse(c.UserContext(), courseID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	if err := applyCourseInput(course, input); err != nil {
		return utils.BadRequest(c, err.Error())
	}
	if err := cc.Store.UpdateCourse(c.UserContext(), course); err != nil {
		return utils.HandleError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, course)
}

// DeleteCourse godoc
// @Summary Delete a course
// @Description Removes the course with its lessons, questions, enrollments and submissions
// @Tags admin
// @Param id path int true "Course ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/courses/{id} [delete]
func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	if err := cc.Store.DeleteCourse(c.UserContext(), courseID); err != nil {
		return utils.HandleError(c, err)
	}

	return utils.NoContent(c)
}

func applyCourseInput(course *models.Course, input CourseRequest) error {
	course.Name = input.Name
	if course.Name == "" {
		course.Name = models.DefaultCourseName
	}
	course.ImageURL = input.ImageURL
	course.Description = input.Description
	course.PubDate = nil
	if input.PubDate != "" {
		pubDate, err := time.Parse(dateLayout, input.PubDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid pub_date format. Use YYYY-MM-DD")
		}
		course.PubDate = &pubDate
	}
	return nil
}

// AddLesson godoc
// @Summary Add a lesson
// @Description Lessons without an order are appended after the existing ones
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param input body LessonRequest true "Lesson"
// @Success 201 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/courses/{id}/lessons [post]
func (cc *CoursesController) AddLesson(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input LessonRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); len(errs) > 0 {
		return utils.ValidationError(c, errs)
	}

	lesson := models.Lesson{
		CourseID: courseID,
		Title:    input.Title,
		Order:    input.Order,
		Content:  input.Content,
	}
	if err := cc.Store.CreateLesson(c.UserContext(), &lesson); err != nil {
		return utils.HandleError(c, err)
	}

	return utils.Created(c, lesson)
}

// UpdateLesson godoc
// @Summary Update a lesson
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param lessonId path int true "Lesson ID"
// @Param input body LessonRequest true "Changed lesson fields"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/courses/{id}/lessons/{lessonId} [put]
func (cc *CoursesController) UpdateLesson(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	lessonID, ok := paramID(c, "lessonId")
	if !ok {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var input LessonRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); len(errs) > 0 {
		return utils.ValidationError(c, errs)
	}

	lesson, err := cc.Store.GetLesson(c.UserContext(), courseID, lessonID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	// Only the fields that were sent are changed
	if input.Title != "" {
		lesson.Title = input.Title
	}
	if input.Order > 0 {
		lesson.Order = input.Order
	}
	if input.Content != "" {
		lesson.Content = input.Content
	}

	if err := cc.Store.UpdateLesson(c.UserContext(), lesson); err != nil {
		return utils.HandleError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, lesson)
}

// DeleteLesson godoc
// @Summary Delete a lesson
// @Tags admin
// @Param id path int true "Course ID"
// @Param lessonId path int true "Lesson ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/courses/{id}/lessons/{lessonId} [delete]
func (cc *CoursesController) DeleteLesson(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	lessonID, ok := paramID(c, "lessonId")
	if !ok {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	if err := cc.Store.DeleteLesson(c.UserContext(), courseID, lessonID); err != nil {
		return utils.HandleError(c, err)
	}

	return utils.NoContent(c)
}

// CreateInstructor godoc
// @Summary Create an instructor profile for a user
// @Tags admin
// @Accept json
// @Produce json
// @Param input body InstructorRequest true "Instructor"
// @Success 201 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/instructors [post]
func (cc *CoursesController) CreateInstructor(c *fiber.Ctx) error {
	var input InstructorRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); len(errs) > 0 {
		return utils.ValidationError(c, errs)
	}

	fullTime := true
	if input.FullTime != nil {
		fullTime = *input.FullTime
	}

	instructor, err := cc.Store.CreateInstructor(c.UserContext(), input.UserID, fullTime)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return utils.Created(c, instructor)
}

// AddInstructor godoc
// @Summary Link an instructor to a course
// @Description The course's current enrollment is added to the instructor's learners
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param input body InstructorLinkRequest true "Instructor"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/courses/{id}/instructors [post]
func (cc *CoursesController) AddInstructor(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input InstructorLinkRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); len(errs) > 0 {
		return utils.ValidationError(c, errs)
	}

	if err := cc.Store.AddInstructor(c.UserContext(), courseID, input.InstructorID); err != nil {
		return utils.HandleError(c, err)
	}

	course, err := cc.Store.GetCourse(c.UserContext(), courseID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, course)
}
