package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"onlinecourse/backend/config"
	"onlinecourse/backend/middleware"
	"onlinecourse/backend/models"
	"onlinecourse/backend/store"
	"onlinecourse/backend/utils"
)

type UserController struct {
	Store *store.Store
	Cfg   *config.Config
	Log   *zap.SugaredLogger
}

func NewUserController(s *store.Store, cfg *config.Config, log *zap.SugaredLogger) *UserController {
	return &UserController{Store: s, Cfg: cfg, Log: log}
}

type UpdateLearnerRequest struct {
	Occupation string `json:"occupation" validate:"omitempty,oneof=student developer data_scientist dba" example:"developer"`
	SocialLink string `json:"social_link" validate:"omitempty,url,max=200" example:"https://github.com/john"`
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns authenticated user's profile, learner profile and enrollments
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	user, err := uc.Store.GetUser(c.UserContext(), userID)
	if err != nil {
		return utils.NotFound(c, "User not found")
	}

	// The learner profile is optional
	var learner *models.Learner
	if l, err := uc.Store.GetLearner(c.UserContext(), userID); err == nil {
		learner = l
	} else if !errors.Is(err, store.ErrNotFound) {
		return utils.HandleError(c, err)
	}

	enrollments, err := uc.Store.ListEnrollments(c.UserContext(), userID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":          user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"role":        user.Role,
		"first_name":  user.FirstName,
		"last_name":   user.LastName,
		"created_at":  user.CreatedAt,
		"learner":     learner,
		"enrollments": len(enrollments),
	})
}

// UpdateLearner godoc
// @Summary Create or update the learner profile
// @Tags users
// @Accept json
// @Produce json
// @Param input body UpdateLearnerRequest true "Learner profile"
// @Success 200 {object} utils.SuccessResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/learner [put]
func (uc *UserController) UpdateLearner(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input UpdateLearnerRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); len(errs) > 0 {
		return utils.ValidationError(c, errs)
	}

	learner := models.Learner{
		UserID:     userID,
		Occupation: input.Occupation,
		SocialLink: input.SocialLink,
	}
	if err := uc.Store.UpsertLearner(c.UserContext(), &learner); err != nil {
		return utils.HandleError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, learner)
}

// GetEnrollments godoc
// @Summary List the user's enrollments
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /user/enrollments [get]
func (uc *UserController) GetEnrollments(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	enrollments, err := uc.Store.ListEnrollments(c.UserContext(), userID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, enrollments)
}
