package service

import (
	"fmt"
	"math"
	"strconv"

	"tink/internal/model"
)

// Priority cutoffs used when competing applications are resolved
const (
	DefaultHighPriorityThreshold   = 80.0
	DefaultMediumPriorityThreshold = 60.0
)

// Thresholds holds the priority cutoffs of the resolver
type Thresholds struct {
	High   float64
	Medium float64
}

// DefaultThresholds returns the 80/60 cutoffs
func DefaultThresholds() Thresholds {
	return Thresholds{
		High:   DefaultHighPriorityThreshold,
		Medium: DefaultMediumPriorityThreshold,
	}
}

// Resolver proposes one resolution per competing application. Each
// application is decided on its own; there is no global assignment.
type Resolver struct {
	scorer     *Scorer
	thresholds Thresholds
}

// NewResolver creates a resolver using scorer for room selection
func NewResolver(scorer *Scorer, thresholds Thresholds) *Resolver {
	return &Resolver{scorer: scorer, thresholds: thresholds}
}

// Thresholds returns the configured priority cutoffs
func (r *Resolver) Thresholds() Thresholds {
	return r.thresholds
}

// Resolve returns exactly one resolution per application, in input order
func (r *Resolver) Resolve(apps []model.Application, rooms []model.Room) []model.Resolution {
	out := make([]model.Resolution, 0, len(apps))
	for _, app := range apps {
		out = append(out, r.ResolveOne(app, rooms))
	}
	return out
}

// ResolveOne applies the high/medium/low priority rule to a single application
func (r *Resolver) ResolveOne(app model.Application, rooms []model.Room) model.Resolution {
	priority := app.EffectivePriority()
	candidates := model.RoomsForProperty(rooms, app.PropertyID)

	if priority >= r.thresholds.High && len(candidates) > 0 {
		best, score := r.bestRoom(app, candidates)
		roomID := best.ID
		return model.Resolution{
			ApplicationID: app.ID,
			Action:        model.ActionAssignRoom,
			RoomID:        &roomID,
			Reason: fmt.Sprintf("High priority (%s) - Best room match (%d%% compatibility)",
				formatPriority(priority), int(math.Round(score))),
			ReasonCode: model.ReasonHighPriorityBestRoom,
			Source:     model.SourceAuto,
		}
	}

	if priority >= r.thresholds.Medium {
		return model.Resolution{
			ApplicationID: app.ID,
			Action:        model.ActionApprove,
			Reason:        fmt.Sprintf("Medium priority (%s) - Approve for manual room assignment", formatPriority(priority)),
			ReasonCode:    model.ReasonMediumPriority,
			Source:        model.SourceAuto,
		}
	}

	return model.Resolution{
		ApplicationID: app.ID,
		Action:        model.ActionReject,
		Reason:        fmt.Sprintf("Low priority (%s) - Reject to resolve conflict", formatPriority(priority)),
		ReasonCode:    model.ReasonLowPriority,
		Source:        model.SourceAuto,
	}
}

// bestRoom picks the highest scoring candidate; the first one wins ties.
// candidates must be non-empty.
func (r *Resolver) bestRoom(app model.Application, candidates []model.Room) (model.Room, float64) {
	best := candidates[0]
	bestScore := r.scorer.Score(app, best)
	for _, room := range candidates[1:] {
		if s := r.scorer.Score(app, room); s > bestScore {
			best, bestScore = room, s
		}
	}
	return best, bestScore
}

func formatPriority(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
