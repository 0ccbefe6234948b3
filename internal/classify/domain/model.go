package domain

import "fmt"

// CorrectAnswers names the two options accepted as correct: the best
// recycling method and an easier alternative.
type CorrectAnswers struct {
	Best string `json:"best"`
	Easy string `json:"easy"`
}

// ClassificationResult is the strictly-typed shape of one scan
// interaction. Request-scoped only; never persisted.
type ClassificationResult struct {
	ProductName      string         `json:"productName"`
	Description      string         `json:"description"`
	Material         string         `json:"material"`
	PointsForCorrect int            `json:"pointsForCorrect"`
	Question         string         `json:"question"`
	Options          []string       `json:"options"`
	CorrectAnswers   CorrectAnswers `json:"correctAnswers"`
}

// Validate enforces the output contract. The model's reply is never
// trusted: a violation fails the whole request rather than surfacing
// partial data.
func (r *ClassificationResult) Validate() error {
	if r.ProductName == "" {
		return fmt.Errorf("%w: missing productName", ErrInvalidResult)
	}
	if r.Material == "" {
		return fmt.Errorf("%w: missing material", ErrInvalidResult)
	}
	if r.PointsForCorrect <= 0 {
		return fmt.Errorf("%w: pointsForCorrect must be positive", ErrInvalidResult)
	}
	if r.Question == "" {
		return fmt.Errorf("%w: missing question", ErrInvalidResult)
	}
	if len(r.Options) != 4 {
		return fmt.Errorf("%w: expected 4 options, got %d", ErrInvalidResult, len(r.Options))
	}
	if !r.hasOption(r.CorrectAnswers.Best) {
		return fmt.Errorf("%w: best answer not among options", ErrInvalidResult)
	}
	if !r.hasOption(r.CorrectAnswers.Easy) {
		return fmt.Errorf("%w: easy answer not among options", ErrInvalidResult)
	}
	return nil
}

func (r *ClassificationResult) hasOption(answer string) bool {
	for _, o := range r.Options {
		if o == answer {
			return true
		}
	}
	return false
}
