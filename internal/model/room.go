package model

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Room represents a rentable unit inside a property
type Room struct {
	ID               int64            `json:"id" db:"id"`
	PropertyID       int64            `json:"property_ref" db:"property_id"`
	Name             string           `json:"name" db:"name"`
	MonthlyRent      *decimal.Decimal `json:"monthly_rent,omitempty" db:"monthly_rent"`
	CurrentOccupancy int              `json:"current_occupancy" db:"current_occupancy"`
	MaxCapacity      int              `json:"max_capacity" db:"max_capacity"`
	IsVacant         bool             `json:"is_vacant" db:"is_vacant"`
	RoomType         string           `json:"room_type" db:"room_type"`
	Floor            *int             `json:"floor,omitempty" db:"floor"`
	SquareFootage    *int             `json:"square_footage,omitempty" db:"square_footage"`
	Features         JSONArray        `json:"features,omitempty" db:"features"`
}

// HasVacancy reports whether the room advertises free capacity. Advisory only.
func (r Room) HasVacancy() bool {
	if r.IsVacant {
		return true
	}
	return r.MaxCapacity > 0 && r.CurrentOccupancy < r.MaxCapacity
}

// RoomsForProperty returns the rooms belonging to propertyID, keeping input order
func RoomsForProperty(rooms []Room, propertyID int64) []Room {
	out := make([]Room, 0, len(rooms))
	for _, r := range rooms {
		if r.PropertyID == propertyID {
			out = append(out, r)
		}
	}
	return out
}

// JSONArray represents a JSON array field
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), j)
	}
	return json.Unmarshal(bytes, j)
}
