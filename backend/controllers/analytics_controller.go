package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"onlinecourse/backend/config"
	"onlinecourse/backend/grading"
	"onlinecourse/backend/store"
	"onlinecourse/backend/utils"
)

type AnalyticsController struct {
	Store *store.Store
	Cfg   *config.Config
	Log   *zap.SugaredLogger
}

func NewAnalyticsController(s *store.Store, cfg *config.Config, log *zap.SugaredLogger) *AnalyticsController {
	return &AnalyticsController{Store: s, Cfg: cfg, Log: log}
}

// GetCourseAnalytics godoc
// @Summary Course analytics
// @Description Enrollment counts, mode breakdown, average rating, exam pass rate and daily enrollment trend
// @Tags admin
// @Produce json
// @Param id path int true "Course ID"
// @Param start_date query string false "Trend start (YYYY-MM-DD)"
// @Param end_date query string false "Trend end (YYYY-MM-DD)"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/courses/{id}/analytics [get]
func (ac *AnalyticsController) GetCourseAnalytics(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	// The trend period is unbounded unless start_date or end_date is given
	var start, end time.Time
	if startDate := c.Query("start_date"); startDate != "" {
		var err error
		start, err = time.Parse(dateLayout, startDate)
		if err != nil {
			return utils.BadRequest(c, "Invalid start_date format. Use YYYY-MM-DD")
		}
	}
	if endDate := c.Query("end_date"); endDate != "" {
		var err error
		end, err = time.Parse(dateLayout, endDate)
		if err != nil {
			return utils.BadRequest(c, "Invalid end_date format. Use YYYY-MM-DD")
		}
	}

	stats, err := ac.Store.CourseStats(c.UserContext(), courseID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	stats.Trend = filterTrend(stats.Trend, start, end)

	questions, err := ac.Store.ListQuestions(c.UserContext(), courseID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	submissions, err := ac.Store.ListCourseSubmissions(c.UserContext(), courseID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	// Every attempt is graded against the current questions
	passed := 0
	totalPercent := 0.0
	for _, s := range submissions {
		result := grading.GradeExam(questions, grading.NewIDSet(s.ChoiceIDs()...), ac.Cfg.ExamPassPercent)
		totalPercent += result.Percent
		if result.Passed {
			passed++
		}
	}

	passRate, averagePercent := 0.0, 0.0
	if len(submissions) > 0 {
		passRate = float64(passed) / float64(len(submissions)) * 100
		averagePercent = totalPercent / float64(len(submissions))
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"course":          stats,
		"questions":       len(questions),
		"passed":          passed,
		"pass_rate":       passRate,
		"average_percent": averagePercent,
		"pass_percent":    ac.Cfg.ExamPassPercent,
	})
}

// filterTrend keeps the days within [start, end]; a zero bound is open.
func filterTrend(trend []store.EnrollmentTrend, start, end time.Time) []store.EnrollmentTrend {
	if start.IsZero() && end.IsZero() {
		return trend
	}
	filtered := make([]store.EnrollmentTrend, 0, len(trend))
	for _, day := range trend {
		if len(day.Date) < len(dateLayout) {
			continue
		}
		date, err := time.Parse(dateLayout, day.Date[:len(dateLayout)])
		if err != nil {
			continue
		}
		if !start.IsZero() && date.Before(start) {
			continue
		}
		if !end.IsZero() && date.After(end) {
			continue
		}
		filtered = append(filtered, day)
	}
	return filtered
}
