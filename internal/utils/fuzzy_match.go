package utils

import (
	"strings"
)

// featureAliases maps a search keyword to the listing texts that satisfy it
var featureAliases = map[string][]string{
	"aircon":   {"air conditioner", "air conditioning", "aircon", "a/c"},
	"bathroom": {"ensuite", "en-suite", "private bathroom", "attached bathroom"},
	"balcony":  {"balcony", "terrace"},
	"desk":     {"desk", "study table", "work desk"},
	"wardrobe": {"wardrobe", "built-in wardrobe", "closet"},
	"window":   {"window", "natural light"},
	"heater":   {"heater", "heating", "radiator"},
	"fridge":   {"fridge", "refrigerator", "mini fridge"},
	"furnish":  {"furnished", "fully furnished", "partially furnished"},
}

// roomTypeAliases groups room type names that tenants use interchangeably
var roomTypeAliases = map[string][]string{
	"private": {"private", "single", "standard"},
	"shared":  {"shared", "double", "twin", "dorm"},
	"studio":  {"studio"},
	"suite":   {"suite", "master", "ensuite"},
}

// FuzzyMatchFeature performs fuzzy matching for room feature names
// Returns true if the search term fuzzy matches the feature
func FuzzyMatchFeature(searchTerm, feature string) bool {
	searchLower := strings.ToLower(strings.TrimSpace(searchTerm))
	featureLower := strings.ToLower(strings.TrimSpace(feature))

	if searchLower == "" {
		return true
	}

	// Exact or contains match
	if searchLower == featureLower || strings.Contains(featureLower, searchLower) {
		return true
	}

	for key, values := range featureAliases {
		if !strings.Contains(searchLower, key) && !containsAny(searchLower, values) {
			continue
		}
		if strings.Contains(featureLower, key) || containsAny(featureLower, values) {
			return true
		}
	}

	return false
}

// HasAllFeatures reports whether every wanted term matches one of features
func HasAllFeatures(wanted, features []string) bool {
	for _, term := range wanted {
		found := false
		for _, f := range features {
			if FuzzyMatchFeature(term, f) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// MatchRoomType compares a requested room type with a room's type, treating
// known synonyms as equal
func MatchRoomType(want, roomType string) bool {
	wantLower := NormalizeRoomType(want)
	typeLower := NormalizeRoomType(roomType)

	if wantLower == "" {
		return true
	}
	return wantLower == typeLower
}

// NormalizeRoomType maps a room type onto its canonical group name
func NormalizeRoomType(roomType string) string {
	lower := strings.ToLower(strings.TrimSpace(roomType))
	for canonical, values := range roomTypeAliases {
		for _, alias := range values {
			if lower == alias {
				return canonical
			}
		}
	}
	return lower
}

func containsAny(s string, values []string) bool {
	for _, v := range values {
		if strings.Contains(s, v) {
			return true
		}
	}
	return false
}
