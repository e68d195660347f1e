package grading

import "onlinecourse/backend/models"

type QuestionResult struct {
	QuestionID     uint           `json:"question_id"`
	Text           string         `json:"text"`
	Grade          float64        `json:"grade"`
	FullCredit     bool           `json:"full_credit"`
	Classification Classification `json:"classification"`
}

type ExamResult struct {
	Score         float64          `json:"score"`
	PossibleScore float64          `json:"possible_score"`
	Percent       float64          `json:"percent"`
	Passed        bool             `json:"passed"`
	Questions     []QuestionResult `json:"questions"`
}

// GradeExam grades one selection against every question of a course exam.
// A question contributes its grade to the score only with full credit. An exam
// with nothing to score never passes.
func GradeExam(questions []models.Question, selected IDSet, passPercent float64) ExamResult {
	result := ExamResult{Questions: make([]QuestionResult, 0, len(questions))}

	for _, q := range questions {
		full := IsFullCredit(q, selected)
		result.PossibleScore += q.Grade
		if full {
			result.Score += q.Grade
		}
		result.Questions = append(result.Questions, QuestionResult{
			QuestionID:     q.ID,
			Text:           q.Text,
			Grade:          q.Grade,
			FullCredit:     full,
			Classification: Classify(q, selected),
		})
	}

	if result.PossibleScore > 0 {
		result.Percent = result.Score / result.PossibleScore * 100
		result.Passed = result.Percent >= passPercent
	}
	return result
}
