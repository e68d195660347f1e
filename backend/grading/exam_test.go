package grading

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onlinecourse/backend/models"
)

func examQuestions() []models.Question {
	return []models.Question{
		twoOfThree(), // grade 2
		{ID: 2, Text: "Capital of France?", Grade: 1, Choices: []models.Choice{
			{ID: 21, IsCorrect: true},
			{ID: 22},
		}},
		{ID: 3, Text: "Go has generics?", Grade: 1, Choices: []models.Choice{
			{ID: 31, IsCorrect: true},
			{ID: 32},
		}},
	}
}

func TestGradeExamAllCorrect(t *testing.T) {
	result := GradeExam(examQuestions(), NewIDSet(choiceA, choiceB, 21, 31), 80)

	assert.Equal(t, 4.0, result.Score)
	assert.Equal(t, 4.0, result.PossibleScore)
	assert.Equal(t, 100.0, result.Percent)
	assert.True(t, result.Passed)
	require.Len(t, result.Questions, 3)
	for _, q := range result.Questions {
		assert.True(t, q.FullCredit, "question %d", q.QuestionID)
	}
}

func TestGradeExamPartial(t *testing.T) {
	// question 1 misses B, question 3 picks the wrong answer
	result := GradeExam(examQuestions(), NewIDSet(choiceA, 21, 32), 80)

	assert.Equal(t, 1.0, result.Score)
	assert.Equal(t, 4.0, result.PossibleScore)
	assert.Equal(t, 25.0, result.Percent)
	assert.False(t, result.Passed)

	first := result.Questions[0]
	assert.False(t, first.FullCredit)
	assert.Equal(t, []uint{choiceA}, first.Classification.SelectedAndTrue)
	assert.Equal(t, []uint{choiceB}, first.Classification.NotSelectedButTrue)
	assert.Equal(t, []uint{choiceC}, first.Classification.NotSelectedAndFalse)

	third := result.Questions[2]
	assert.Equal(t, []uint{32}, third.Classification.SelectedButFalse)
}

func TestGradeExamThresholdIsInclusive(t *testing.T) {
	result := GradeExam(examQuestions(), NewIDSet(choiceA, choiceB, 21), 75)
	assert.Equal(t, 75.0, result.Percent)
	assert.True(t, result.Passed)
}

func TestGradeExamWithoutQuestions(t *testing.T) {
	result := GradeExam(nil, NewIDSet(1, 2), 0)

	assert.Zero(t, result.PossibleScore)
	assert.Zero(t, result.Percent)
	assert.False(t, result.Passed)
	assert.NotNil(t, result.Questions)
}

func TestClassificationJSONUsesEmptyArrays(t *testing.T) {
	raw, err := json.Marshal(Classify(twoOfThree(), NewIDSet()))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"selected_but_false": [],
		"selected_and_true": [],
		"not_selected_and_false": [13],
		"not_selected_but_true": [11, 12]
	}`, string(raw))
}
