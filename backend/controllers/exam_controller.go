package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"onlinecourse/backend/config"
	"onlinecourse/backend/grading"
	"onlinecourse/backend/middleware"
	"onlinecourse/backend/models"
	"onlinecourse/backend/store"
	"onlinecourse/backend/utils"
)

type ExamController struct {
	Store *store.Store
	Cfg   *config.Config
	Log   *zap.SugaredLogger
}

func NewExamController(s *store.Store, cfg *config.Config, log *zap.SugaredLogger) *ExamController {
	return &ExamController{Store: s, Cfg: cfg, Log: log}
}

type ChoiceRequest struct {
	Text      string `json:"text" validate:"required,max=200"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionRequest struct {
	Text    string          `json:"text" validate:"required,max=200"`
	Grade   *float64        `json:"grade" validate:"omitempty,gte=0"`
	Choices []ChoiceRequest `json:"choices" validate:"required,min=1,dive"`
}

type SubmissionRequest struct {
	ChoiceIDs []uint `json:"choice_ids" validate:"dive,gt=0"`
}

type ClassifyRequest struct {
	SelectedIDs []uint `json:"selected_ids"`
}

// GetExam godoc
// @Summary Course exam
// @Description Questions with choices. Correct answers are not exposed.
// @Tags exam
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/exam [get]
func (ec *ExamController) GetExam(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	if _, err := ec.Store.GetEnrollment(c.UserContext(), userID, courseID); err != nil {
		return utils.HandleError(c, err)
	}

	questions, err := ec.Store.ListQuestions(c.UserContext(), courseID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	result := make([]fiber.Map, 0, len(questions))
	for _, q := range questions {
		choices := make([]fiber.Map, 0, len(q.Choices))
		for _, ch := range q.Choices {
			choices = append(choices, fiber.Map{
				"id":   ch.ID,
				"text": ch.Text,
			})
		}
		result = append(result, fiber.Map{
			"id":      q.ID,
			"text":    q.Text,
			"grade":   q.Grade,
			"choices": choices,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"course_id": courseID,
		"questions": result,
	})
}

// SubmitExam godoc
// @Summary Submit exam answers
// @Description Stores the selected choices and returns the graded result
// @Tags exam
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param input body SubmissionRequest true "Selected choices"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/submissions [post]
func (ec *ExamController) SubmitExam(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input SubmissionRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); len(errs) > 0 {
		return utils.ValidationError(c, errs)
	}

	enrollment, err := ec.Store.GetEnrollment(c.UserContext(), userID, courseID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	submission, err := ec.Store.CreateSubmission(c.UserContext(), enrollment.ID, input.ChoiceIDs)
	if err != nil {
		return utils.HandleError(c, err)
	}

	result, err := ec.grade(c, courseID, submission)
	if err != nil {
		return utils.HandleError(c, err)
	}

	ec.Log.Infow("exam submitted",
		"user_id", userID,
		"course_id", courseID,
		"submission_id", submission.ID,
		"score", result.Score,
		"passed", result.Passed,
	)
	return utils.Created(c, fiber.Map{
		"submission_id": submission.ID,
		"choice_ids":    submission.ChoiceIDs(),
		"result":        result,
	})
}

// GetSubmissionResult godoc
// @Summary Submission result
// @Description Re-grades a stored submission against the course's current questions. Owner only.
// @Tags exam
// @Produce json
// @Param id path int true "Submission ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /submissions/{id} [get]
func (ec *ExamController) GetSubmissionResult(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	submissionID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid submission ID")
	}

	submission, err := ec.Store.GetSubmission(c.UserContext(), submissionID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	if submission.Enrollment == nil || submission.Enrollment.UserID != userID {
		return utils.Forbidden(c, "Submission belongs to another user")
	}

	result, err := ec.grade(c, submission.Enrollment.CourseID, submission)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"submission_id": submission.ID,
		"course_id":     submission.Enrollment.CourseID,
		"submitted_at":  submission.CreatedAt,
		"choice_ids":    submission.ChoiceIDs(),
		"result":        result,
	})
}

func (ec *ExamController) grade(c *fiber.Ctx, courseID uint, submission *models.Submission) (grading.ExamResult, error) {
	questions, err := ec.Store.ListQuestions(c.UserContext(), courseID)
	if err != nil {
		return grading.ExamResult{}, err
	}
	selected := grading.NewIDSet(submission.ChoiceIDs()...)
	return grading.GradeExam(questions, selected, ec.Cfg.ExamPassPercent), nil
}

// ClassifyQuestion godoc
// @Summary Classify a selection against one question
// @Description Splits the question's choices into the four correctness buckets. Admins or learners enrolled in the question's course only.
// @Tags exam
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param input body ClassifyRequest true "Selected choice ids"
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /questions/{id}/classify [post]
func (ec *ExamController) ClassifyQuestion(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	questionID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid question ID")
	}

	var input ClassifyRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	question, err := ec.Store.GetQuestion(c.UserContext(), questionID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	if err := ec.canSeeAnswers(c, userID, question.CourseID); err != nil {
		return utils.HandleError(c, err)
	}

	selected := grading.NewIDSet(input.SelectedIDs...)
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"question_id":    question.ID,
		"classification": grading.Classify(*question, selected),
		"full_credit":    grading.IsFullCredit(*question, selected),
	})
}

func (ec *ExamController) canSeeAnswers(c *fiber.Ctx, userID, courseID uint) error {
	user, err := ec.Store.GetUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return nil
	}
	_, err = ec.Store.GetEnrollment(c.UserContext(), userID, courseID)
	return err
}

// AddQuestion godoc
// @Summary Add a question to the course exam
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param input body QuestionRequest true "Question with choices"
// @Success 201 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /admin/courses/{id}/questions [post]
func (ec *ExamController) AddQuestion(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input QuestionRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); len(errs) > 0 {
		return utils.ValidationError(c, errs)
	}

	// grade 0 is kept as sent, an absent grade falls back to the default
	grade := models.DefaultQuestionGrade
	if input.Grade != nil {
		grade = *input.Grade
	}

	question := models.Question{
		CourseID: courseID,
		Text:     input.Text,
		Grade:    grade,
	}
	for _, ch := range input.Choices {
		question.Choices = append(question.Choices, models.Choice{
			Text:      ch.Text,
			IsCorrect: ch.IsCorrect,
		})
	}

	if err := ec.Store.CreateQuestion(c.UserContext(), &question); err != nil {
		return utils.HandleError(c, err)
	}

	return utils.Created(c, question)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Description Removes the question, its choices and their submission links
// @Tags admin
// @Param id path int true "Question ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/questions/{id} [delete]
func (ec *ExamController) DeleteQuestion(c *fiber.Ctx) error {
	questionID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid question ID")
	}

	if err := ec.Store.DeleteQuestion(c.UserContext(), questionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Question not found")
		}
		return utils.HandleError(c, err)
	}

	return utils.NoContent(c)
}
