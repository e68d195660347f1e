// Package grading classifies multiple-choice answers and scores exams.
//
// Every function here is a pure computation over a question's choices (as loaded
// from the store) and a set of selected choice ids supplied by the caller.
package grading

import (
	"sort"

	"onlinecourse/backend/models"
)

// IDSet is a set of choice ids.
type IDSet map[uint]struct{}

// NewIDSet builds a set from ids; duplicates collapse.
func NewIDSet(ids ...uint) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Add inserts id into the set.
func (s IDSet) Add(id uint) {
	s[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s IDSet) Has(id uint) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids in the set.
func (s IDSet) Len() int {
	return len(s)
}

// Sorted returns the ids in ascending order. The result is never nil.
func (s IDSet) Sorted() []uint {
	ids := make([]uint, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Intersect returns the ids present in both sets.
func (s IDSet) Intersect(other IDSet) IDSet {
	out := make(IDSet)
	for id := range s {
		if other.Has(id) {
			out.Add(id)
		}
	}
	return out
}

// Difference returns the ids of s that are not in other.
func (s IDSet) Difference(other IDSet) IDSet {
	out := make(IDSet)
	for id := range s {
		if !other.Has(id) {
			out.Add(id)
		}
	}
	return out
}

// Equal reports whether both sets hold exactly the same ids.
func (s IDSet) Equal(other IDSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// CorrectChoiceIDs returns the ids of the choices marked correct.
func CorrectChoiceIDs(q models.Question) IDSet {
	return choiceIDs(q, func(c models.Choice) bool { return c.IsCorrect })
}

// IncorrectChoiceIDs returns the ids of the choices not marked correct.
func IncorrectChoiceIDs(q models.Question) IDSet {
	return choiceIDs(q, func(c models.Choice) bool { return !c.IsCorrect })
}

// AllChoiceIDs returns the ids of every choice of the question.
func AllChoiceIDs(q models.Question) IDSet {
	return choiceIDs(q, func(models.Choice) bool { return true })
}

func choiceIDs(q models.Question, keep func(models.Choice) bool) IDSet {
	set := make(IDSet, len(q.Choices))
	for _, choice := range q.Choices {
		if keep(choice) {
			set.Add(choice.ID)
		}
	}
	return set
}

// Classification partitions a question's choices against a selection.
type Classification struct {
	SelectedButFalse    []uint `json:"selected_but_false"`
	SelectedAndTrue     []uint `json:"selected_and_true"`
	NotSelectedAndFalse []uint `json:"not_selected_and_false"`
	NotSelectedButTrue  []uint `json:"not_selected_but_true"`
}

// Classify splits the question's choices into four disjoint buckets. Selected ids
// that do not belong to the question are ignored.
func Classify(q models.Question, selected IDSet) Classification {
	all := AllChoiceIDs(q)
	correct := CorrectChoiceIDs(q)
	incorrect := IncorrectChoiceIDs(q)

	picked := selected.Intersect(all)
	skipped := all.Difference(picked)

	return Classification{
		SelectedButFalse:    picked.Intersect(incorrect).Sorted(),
		SelectedAndTrue:     picked.Intersect(correct).Sorted(),
		NotSelectedAndFalse: skipped.Intersect(incorrect).Sorted(),
		NotSelectedButTrue:  skipped.Intersect(correct).Sorted(),
	}
}

// IsFullCredit reports whether every correct choice was selected and no incorrect
// one was.
func IsFullCredit(q models.Question, selected IDSet) bool {
	correct := CorrectChoiceIDs(q)
	incorrect := IncorrectChoiceIDs(q)

	return selected.Intersect(correct).Len() == correct.Len() &&
		selected.Intersect(incorrect).Len() == 0
}
