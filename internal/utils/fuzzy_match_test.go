package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzzyMatchFeature(t *testing.T) {
	tests := []struct {
		name    string
		search  string
		feature string
		want    bool
	}{
		{name: "exact", search: "Balcony", feature: "balcony", want: true},
		{name: "contains", search: "desk", feature: "Large work desk", want: true},
		{name: "alias", search: "aircon", feature: "Air conditioning", want: true},
		{name: "reverse alias", search: "ensuite", feature: "Private bathroom", want: true},
		{name: "empty search", search: "  ", feature: "anything", want: true},
		{name: "no match", search: "balcony", feature: "Wardrobe", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FuzzyMatchFeature(tt.search, tt.feature))
		})
	}
}

func TestHasAllFeatures(t *testing.T) {
	features := []string{"Air conditioner", "Built-in wardrobe", "Terrace"}

	assert.True(t, HasAllFeatures(nil, features))
	assert.True(t, HasAllFeatures([]string{"aircon", "closet", "balcony"}, features))
	assert.False(t, HasAllFeatures([]string{"aircon", "desk"}, features))
	assert.False(t, HasAllFeatures([]string{"desk"}, nil))
}

func TestMatchRoomType(t *testing.T) {
	tests := []struct {
		want     string
		roomType string
		match    bool
	}{
		{"single", "Private", true},
		{"twin", "shared", true},
		{"Studio", "studio", true},
		{"", "suite", true},
		{"studio", "shared", false},
		{"loft", "loft", true},
	}

	for _, tt := range tests {
		t.Run(tt.want+"/"+tt.roomType, func(t *testing.T) {
			assert.Equal(t, tt.match, MatchRoomType(tt.want, tt.roomType))
		})
	}
}
