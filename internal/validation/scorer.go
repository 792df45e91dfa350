package validation

import (
	"fmt"
	"sort"
)

// Status is the routing outcome of scoring an image.
type Status string

const (
	StatusAutoAccepted Status = "auto_accepted"
	StatusNeedsReview  Status = "needs_review"
	StatusAutoRejected Status = "auto_rejected"
)

// Thresholds holds the inclusive routing boundaries. Scores at or above
// Accept are accepted; at or above Review they go to a human; below that
// they are rejected.
type Thresholds struct {
	Accept float64
	Review float64
}

// Result is the outcome of scoring one image's check results.
type Result struct {
	Overall    float64
	Status     Status
	Reason     string
	UsedWeight float64
	Checks     map[string]float64
}

// Score combines per-check scores into a weighted overall score and routing
// status. Checks absent from results are excluded and the remaining weights
// are re-normalized, so a missing optional check never drags the score down.
// The function is pure; identical inputs always produce identical results.
func Score(results map[string]float64, weights map[string]float64, thresholds Thresholds) (Result, error) {
	for name, weight := range weights {
		if weight < 0 {
			return Result{}, fmt.Errorf("weight for check %q is negative", name)
		}
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		usedWeight  float64
		weightedSum float64
		lowestName  string
		lowestScore float64
	)
	present := make(map[string]float64, len(names))
	for _, name := range names {
		score := results[name]
		if score < 0 || score > 1 {
			return Result{}, fmt.Errorf("score for check %q is %v, outside [0, 1]", name, score)
		}
		weight, ok := weights[name]
		if !ok || weight == 0 {
			continue
		}
		present[name] = score
		usedWeight += weight
		weightedSum += weight * score
		if lowestName == "" || score < lowestScore {
			lowestName = name
			lowestScore = score
		}
	}

	if usedWeight == 0 {
		return Result{}, fmt.Errorf("no weighted checks present: %w", ErrInsufficientChecks)
	}

	overall := weightedSum / usedWeight
	result := Result{
		Overall:    overall,
		UsedWeight: usedWeight,
		Checks:     present,
	}

	switch {
	case overall >= thresholds.Accept:
		result.Status = StatusAutoAccepted
		result.Reason = "all checks passed"
	case overall >= thresholds.Review:
		result.Status = StatusNeedsReview
		result.Reason = fmt.Sprintf("low %s score (%.2f)", lowestName, lowestScore)
	default:
		result.Status = StatusAutoRejected
		result.Reason = fmt.Sprintf("low %s score (%.2f)", lowestName, lowestScore)
	}
	return result, nil
}
