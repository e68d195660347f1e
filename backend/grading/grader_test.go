package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"onlinecourse/backend/models"
)

const (
	choiceA uint = 11
	choiceB uint = 12
	choiceC uint = 13
)

// twoOfThree has A and B correct, C incorrect.
func twoOfThree() models.Question {
	return models.Question{
		ID:    1,
		Text:  "Which are prime?",
		Grade: 2,
		Choices: []models.Choice{
			{ID: choiceA, QuestionID: 1, Text: "2", IsCorrect: true},
			{ID: choiceB, QuestionID: 1, Text: "3", IsCorrect: true},
			{ID: choiceC, QuestionID: 1, Text: "4"},
		},
	}
}

func sampleQuestions() []models.Question {
	return []models.Question{
		twoOfThree(),
		{ID: 2, Choices: []models.Choice{{ID: 21}, {ID: 22}}},
		{ID: 3, Choices: []models.Choice{{ID: 31, IsCorrect: true}}},
		{ID: 4},
		{ID: 5, Choices: []models.Choice{{ID: 51, IsCorrect: true}, {ID: 52, IsCorrect: true}, {ID: 53}, {ID: 54}}},
	}
}

func TestChoiceIDSets(t *testing.T) {
	q := twoOfThree()

	assert.Equal(t, []uint{choiceA, choiceB}, CorrectChoiceIDs(q).Sorted())
	assert.Equal(t, []uint{choiceC}, IncorrectChoiceIDs(q).Sorted())
	assert.Equal(t, []uint{choiceA, choiceB, choiceC}, AllChoiceIDs(q).Sorted())
}

func TestCorrectAndIncorrectPartitionAll(t *testing.T) {
	for _, q := range sampleQuestions() {
		correct := CorrectChoiceIDs(q)
		incorrect := IncorrectChoiceIDs(q)

		union := NewIDSet(append(correct.Sorted(), incorrect.Sorted()...)...)
		assert.True(t, union.Equal(AllChoiceIDs(q)), "question %d", q.ID)
		assert.Zero(t, correct.Intersect(incorrect).Len(), "question %d", q.ID)
	}
}

func TestClassifyExample(t *testing.T) {
	c := Classify(twoOfThree(), NewIDSet(choiceA, choiceC))

	assert.Equal(t, []uint{choiceA}, c.SelectedAndTrue)
	assert.Equal(t, []uint{choiceC}, c.SelectedButFalse)
	assert.Equal(t, []uint{choiceB}, c.NotSelectedButTrue)
	assert.Empty(t, c.NotSelectedAndFalse)
	assert.NotNil(t, c.NotSelectedAndFalse)
}

func TestClassifyDropsForeignIDs(t *testing.T) {
	c := Classify(twoOfThree(), NewIDSet(choiceB, 999, 21))

	assert.Equal(t, []uint{choiceB}, c.SelectedAndTrue)
	assert.Empty(t, c.SelectedButFalse)
	assert.Equal(t, []uint{choiceA}, c.NotSelectedButTrue)
	assert.Equal(t, []uint{choiceC}, c.NotSelectedAndFalse)
}

func TestClassifyBucketsPartitionAllChoices(t *testing.T) {
	selections := []IDSet{
		NewIDSet(),
		NewIDSet(choiceA),
		NewIDSet(choiceA, choiceB, choiceC),
		NewIDSet(21, 31, 51, 53, 1000),
		NewIDSet(22, 52, 54),
	}

	for _, q := range sampleQuestions() {
		for _, selected := range selections {
			c := Classify(q, selected)
			seen := NewIDSet()
			total := 0
			for _, bucket := range [][]uint{c.SelectedButFalse, c.SelectedAndTrue, c.NotSelectedAndFalse, c.NotSelectedButTrue} {
				for _, id := range bucket {
					assert.False(t, seen.Has(id), "id %d appears twice for question %d", id, q.ID)
					seen.Add(id)
					total++
				}
			}
			assert.Equal(t, AllChoiceIDs(q).Len(), total)
			assert.True(t, seen.Equal(AllChoiceIDs(q)), "question %d", q.ID)
		}
	}
}

func TestIsFullCredit(t *testing.T) {
	q := twoOfThree()

	assert.True(t, IsFullCredit(q, NewIDSet(choiceA, choiceB)))
	assert.True(t, IsFullCredit(q, NewIDSet(choiceA, choiceB, 999)))
	assert.False(t, IsFullCredit(q, NewIDSet(choiceA, choiceC)))
	assert.False(t, IsFullCredit(q, NewIDSet(choiceA)))
	assert.False(t, IsFullCredit(q, NewIDSet(choiceA, choiceB, choiceC)))
	assert.False(t, IsFullCredit(q, NewIDSet()))
}

func TestIsFullCreditWithCorrectSet(t *testing.T) {
	for _, q := range sampleQuestions() {
		if CorrectChoiceIDs(q).Len() == 0 {
			continue
		}
		assert.True(t, IsFullCredit(q, CorrectChoiceIDs(q)), "question %d", q.ID)
	}
}

func TestIsFullCreditEmptySelection(t *testing.T) {
	for _, q := range sampleQuestions() {
		want := CorrectChoiceIDs(q).Len() == 0
		assert.Equal(t, want, IsFullCredit(q, NewIDSet()), "question %d", q.ID)
	}
}

func TestIDSetHelpers(t *testing.T) {
	s := NewIDSet(3, 1, 2, 3)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []uint{1, 2, 3}, s.Sorted())
	assert.Equal(t, []uint{2, 3}, s.Difference(NewIDSet(1)).Sorted())
	assert.True(t, s.Equal(NewIDSet(1, 2, 3)))
	assert.False(t, s.Equal(NewIDSet(1, 2, 4)))
	assert.NotNil(t, NewIDSet().Sorted())
}
