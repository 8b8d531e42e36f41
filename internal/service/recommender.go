package service

import (
	"sort"

	"tink/internal/model"
	"tink/internal/utils"
)

// DefaultMinRecommendationScore hides rooms that are worse than a fair match
const DefaultMinRecommendationScore = 50.0

// RoomFilter narrows the candidate pool before scoring
type RoomFilter struct {
	RoomType string
	Features []string
}

func (f RoomFilter) matches(room model.Room) bool {
	if f.RoomType != "" && !utils.MatchRoomType(f.RoomType, room.RoomType) {
		return false
	}
	return utils.HasAllFeatures(f.Features, room.Features)
}

// Recommender ranks rooms for a single application
type Recommender struct {
	scorer *Scorer
}

// NewRecommender creates a recommender backed by scorer
func NewRecommender(scorer *Scorer) *Recommender {
	return &Recommender{scorer: scorer}
}

// Recommend returns the rooms of the application's property scoring at least
// minScore, best first. Equal scores keep their input order.
func (r *Recommender) Recommend(app model.Application, rooms []model.Room, minScore float64) []model.RoomMatch {
	return r.RecommendFiltered(app, rooms, minScore, RoomFilter{})
}

// RecommendFiltered is Recommend with an additional room type/feature filter
func (r *Recommender) RecommendFiltered(app model.Application, rooms []model.Room, minScore float64, filter RoomFilter) []model.RoomMatch {
	matches := make([]model.RoomMatch, 0, len(rooms))
	for _, room := range model.RoomsForProperty(rooms, app.PropertyID) {
		if !filter.matches(room) {
			continue
		}
		c := r.scorer.Evaluate(app, room)
		if c.Score < minScore {
			continue
		}
		matches = append(matches, model.RoomMatch{Room: room, Compatibility: c})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Compatibility.Score > matches[j].Compatibility.Score
	})
	return matches
}

// Top returns at most limit recommendations; limit <= 0 means no cap
func (r *Recommender) Top(app model.Application, rooms []model.Room, minScore float64, limit int) []model.RoomMatch {
	matches := r.Recommend(app, rooms, minScore)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
