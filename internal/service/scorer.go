package service

import (
	"math"

	"tink/internal/model"

	"github.com/shopspring/decimal"
)

// Compatibility bands
const (
	ExcellentMatchThreshold = 80.0
	GoodMatchThreshold      = 60.0
	FairMatchThreshold      = 40.0
)

// Compatibility reason texts
const (
	ReasonTextExcellent = "Excellent match"
	ReasonTextGood      = "Good match"
	ReasonTextFair      = "Fair match"
	ReasonTextPoor      = "Poor match"
)

const (
	neutralFactor = 0.5
	neutralScore  = 50.0

	// overBudgetPenalty maps the relative overshoot to lost budget fit:
	// 40% above budget drops the factor to zero.
	overBudgetPenalty = 2.5
)

// Weights defines coefficients for each compatibility factor
type Weights struct {
	Budget     float64 `json:"budget"`
	Capacity   float64 `json:"capacity"`
	Preference float64 `json:"preference"`
}

// DefaultWeights makes budget fit the dominant signal
func DefaultWeights() Weights {
	return Weights{
		Budget:     0.60,
		Capacity:   0.25,
		Preference: 0.15,
	}
}

// Scorer computes application/room compatibility in the range 0-100.
// It is pure: no I/O, no shared state, same inputs give the same score.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the given weights
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score returns the compatibility of room for app, rounded to 0.1
func (s *Scorer) Score(app model.Application, room model.Room) float64 {
	factors := []struct {
		weight float64
		value  float64
	}{
		{s.weights.Budget, budgetFit(app.RentBudget, room.MonthlyRent)},
		{s.weights.Capacity, capacityFit(room)},
		{s.weights.Preference, preferenceFit(app, room)},
	}

	var sumW, sum float64
	for _, f := range factors {
		// Skip disabled, NaN and infinite weights.
		if !(f.weight > 0) || math.IsInf(f.weight, 0) {
			continue
		}
		sumW += f.weight
		sum += f.weight * clamp01(f.value)
	}

	if sumW <= 0 {
		return neutralScore
	}

	score := math.Round(sum/sumW*1000) / 10
	return clamp(score, 0, 100)
}

// Evaluate returns the score together with its banded explanation
func (s *Scorer) Evaluate(app model.Application, room model.Room) model.Compatibility {
	score := s.Score(app, room)
	code, text := DescribeCompatibility(score)
	return model.Compatibility{
		Score:      score,
		ReasonCode: code,
		ReasonText: text,
	}
}

// DescribeCompatibility maps a score onto its reason band
func DescribeCompatibility(score float64) (model.CompatibilityReason, string) {
	switch {
	case score >= ExcellentMatchThreshold:
		return model.CompatibilityExcellent, ReasonTextExcellent
	case score >= GoodMatchThreshold:
		return model.CompatibilityGood, ReasonTextGood
	case score >= FairMatchThreshold:
		return model.CompatibilityFair, ReasonTextFair
	default:
		return model.CompatibilityPoor, ReasonTextPoor
	}
}

// budgetFit rewards rent at or below the budget. A missing budget is no
// constraint; a missing rent is unknown and scores neutral.
func budgetFit(budget, rent *decimal.Decimal) float64 {
	if budget == nil || !budget.IsPositive() {
		return 1.0
	}
	if rent == nil || rent.IsNegative() {
		return neutralFactor
	}
	if rent.LessThanOrEqual(*budget) {
		return 1.0
	}

	overshoot := rent.Sub(*budget).Div(*budget).InexactFloat64()
	return clamp01(1 - overshoot*overBudgetPenalty)
}

// capacityFit prefers rooms with free headroom. Unknown capacity falls back
// to the vacancy flag.
func capacityFit(room model.Room) float64 {
	if room.MaxCapacity <= 0 {
		if room.IsVacant {
			return 1.0
		}
		return 0
	}
	occupancy := room.CurrentOccupancy
	if occupancy < 0 {
		occupancy = 0
	}
	return clamp01(float64(room.MaxCapacity-occupancy) / float64(room.MaxCapacity))
}

func preferenceFit(app model.Application, room model.Room) float64 {
	if app.RoomID != nil && *app.RoomID == room.ID {
		return 1.0
	}
	return neutralFactor
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return neutralFactor
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
