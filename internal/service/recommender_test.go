package service

import (
	"testing"

	"tink/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommender_Recommend(t *testing.T) {
	recommender := NewRecommender(NewScorer(DefaultWeights()))
	rooms := append(exampleRooms(), model.Room{ID: 30, PropertyID: 2, MonthlyRent: dec("500"), IsVacant: true})

	t.Run("filters by property and threshold, best first", func(t *testing.T) {
		got := recommender.Recommend(exampleApplications()[0], rooms, DefaultMinRecommendationScore)

		require.Len(t, got, 1)
		assert.Equal(t, int64(10), got[0].Room.ID)
		assert.Equal(t, 92.5, got[0].Compatibility.Score)
	})

	t.Run("zero threshold keeps every property room", func(t *testing.T) {
		got := recommender.Recommend(exampleApplications()[0], rooms, 0)

		require.Len(t, got, 2)
		assert.Equal(t, int64(10), got[0].Room.ID)
		assert.Equal(t, int64(11), got[1].Room.ID)
		assert.Equal(t, model.CompatibilityFair, got[1].Compatibility.ReasonCode)
	})

	t.Run("nothing above threshold is an empty list", func(t *testing.T) {
		got := recommender.Recommend(exampleApplications()[0], rooms, 99)

		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("every score meets the threshold", func(t *testing.T) {
		for _, min := range []float64{0, 40, 50, 80, 92.5, 100} {
			for _, m := range recommender.Recommend(exampleApplications()[1], rooms, min) {
				assert.GreaterOrEqual(t, m.Compatibility.Score, min)
			}
		}
	})
}

func TestRecommender_StableOnTies(t *testing.T) {
	recommender := NewRecommender(NewScorer(DefaultWeights()))
	rooms := []model.Room{
		{ID: 3, PropertyID: 1, MonthlyRent: dec("900"), IsVacant: true},
		{ID: 1, PropertyID: 1, MonthlyRent: dec("900"), IsVacant: true},
		{ID: 2, PropertyID: 1, MonthlyRent: dec("900"), IsVacant: true},
	}

	got := recommender.Recommend(exampleApplications()[0], rooms, 0)

	require.Len(t, got, 3)
	assert.Equal(t, []int64{3, 1, 2}, []int64{got[0].Room.ID, got[1].Room.ID, got[2].Room.ID})
}

func TestRecommender_Top(t *testing.T) {
	recommender := NewRecommender(NewScorer(DefaultWeights()))
	app := exampleApplications()[1]

	assert.Len(t, recommender.Top(app, exampleRooms(), 0, 1), 1)
	assert.Len(t, recommender.Top(app, exampleRooms(), 0, 0), 2)
	assert.Len(t, recommender.Top(app, exampleRooms(), 0, 5), 2)
}

func TestRecommender_RecommendFiltered(t *testing.T) {
	recommender := NewRecommender(NewScorer(DefaultWeights()))
	rooms := []model.Room{
		{ID: 1, PropertyID: 1, RoomType: "single", Features: model.JSONArray{"Desk"}, IsVacant: true},
		{ID: 2, PropertyID: 1, RoomType: "shared", Features: model.JSONArray{"Desk", "Balcony"}, IsVacant: true},
		{ID: 3, PropertyID: 1, RoomType: "private", Features: model.JSONArray{"Terrace"}, IsVacant: true},
	}
	app := model.Application{ID: 1, PropertyID: 1}

	got := recommender.RecommendFiltered(app, rooms, 0, RoomFilter{RoomType: "private"})
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].Room.ID)
	assert.Equal(t, int64(3), got[1].Room.ID)

	got = recommender.RecommendFiltered(app, rooms, 0, RoomFilter{Features: []string{"balcony"}})
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].Room.ID)
	assert.Equal(t, int64(3), got[1].Room.ID)
}
