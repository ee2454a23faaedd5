package usecase

import (
	"iter"

	"FinScreen/internal/domain/models"
)

// CandidateIndex keeps one filing per filer: the last one folded in.
// Callers fold records in ascending submission order, so the survivor is
// the filer's latest filing and ties go to the record seen last.
type CandidateIndex struct {
	order   []string
	byFiler map[string]models.FilingRecord
}

func NewCandidateIndex() *CandidateIndex {
	return &CandidateIndex{byFiler: make(map[string]models.FilingRecord)}
}

// AccumulateCandidates folds date-ordered records into a fresh index.
func AccumulateCandidates(records []models.FilingRecord) *CandidateIndex {
	idx := NewCandidateIndex()
	for _, r := range records {
		idx.Add(r)
	}
	return idx
}

// Add stores r under its filer, unconditionally replacing any earlier record.
// A filer keeps the position where it was first seen.
func (c *CandidateIndex) Add(r models.FilingRecord) {
	key := r.FilerKey()
	if _, seen := c.byFiler[key]; !seen {
		c.order = append(c.order, key)
	}
	c.byFiler[key] = r
}

func (c *CandidateIndex) Get(filer string) (models.FilingRecord, bool) {
	r, ok := c.byFiler[filer]
	return r, ok
}

func (c *CandidateIndex) Len() int { return len(c.order) }

// Records returns surviving records in first-seen filer order.
func (c *CandidateIndex) Records() []models.FilingRecord {
	out := make([]models.FilingRecord, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.byFiler[k])
	}
	return out
}

// All iterates filer keys and records in first-seen order.
func (c *CandidateIndex) All() iter.Seq2[string, models.FilingRecord] {
	return func(yield func(string, models.FilingRecord) bool) {
		for _, k := range c.order {
			if !yield(k, c.byFiler[k]) {
				return
			}
		}
	}
}
