package service

import (
	"sort"

	"tink/internal/model"
)

// DetectConflicts groups pending applications by property, in order of first
// appearance. A group is in conflict when at least two applications compete
// and either outnumber the vacant rooms or target the same room.
func DetectConflicts(apps []model.Application, rooms []model.Room) []model.ConflictGroup {
	order := make([]int64, 0)
	byProperty := make(map[int64][]model.Application)
	for _, app := range apps {
		if !app.IsPending() {
			continue
		}
		if _, seen := byProperty[app.PropertyID]; !seen {
			order = append(order, app.PropertyID)
		}
		byProperty[app.PropertyID] = append(byProperty[app.PropertyID], app)
	}

	groups := make([]model.ConflictGroup, 0, len(order))
	for _, propertyID := range order {
		groups = append(groups, buildConflictGroup(propertyID, byProperty[propertyID], rooms))
	}
	return groups
}

// ConflictForProperty returns the group for one property, empty when it has
// no pending applications
func ConflictForProperty(propertyID int64, apps []model.Application, rooms []model.Room) model.ConflictGroup {
	pending := make([]model.Application, 0, len(apps))
	for _, app := range apps {
		if app.PropertyID == propertyID && app.IsPending() {
			pending = append(pending, app)
		}
	}
	return buildConflictGroup(propertyID, pending, rooms)
}

func buildConflictGroup(propertyID int64, apps []model.Application, rooms []model.Room) model.ConflictGroup {
	propertyRooms := model.RoomsForProperty(rooms, propertyID)

	vacant := 0
	for _, room := range propertyRooms {
		if room.HasVacancy() {
			vacant++
		}
	}

	targets := make(map[int64]int)
	for _, app := range apps {
		if app.RoomID != nil {
			targets[*app.RoomID]++
		}
	}
	shared := make([]int64, 0)
	for roomID, n := range targets {
		if n > 1 {
			shared = append(shared, roomID)
		}
	}
	sort.Slice(shared, func(i, j int) bool { return shared[i] < shared[j] })

	return model.ConflictGroup{
		PropertyID:    propertyID,
		Applications:  apps,
		Rooms:         propertyRooms,
		VacantRooms:   vacant,
		SharedRoomIDs: shared,
		InConflict:    len(apps) >= 2 && (len(apps) > vacant || len(shared) > 0),
	}
}
