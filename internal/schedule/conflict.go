// Package schedule holds the write-time rules for schedule windows: overlap
// detection, window parsing from admin form fields, and display status.
package schedule

import "github.com/Nixie-Tech-LLC/beacon/internal/model"

// Overlaps reports whether two half-open windows [s1,e1) and [s2,e2) intersect.
// Back-to-back windows (e1 == s2) do not overlap.
func Overlaps(a, b model.Window) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Conflicting returns the first existing item whose window overlaps candidate,
// skipping the item with excludeID so an edit does not clash with its own prior
// state. IDs are positive; excludeID 0 skips nothing.
func Conflicting(candidate model.Window, existing []model.ScheduleItem, excludeID int) *model.ScheduleItem {
	for i := range existing {
		if excludeID != 0 && existing[i].ID == excludeID {
			continue
		}
		if Overlaps(candidate, existing[i].Window()) {
			return &existing[i]
		}
	}
	return nil
}

func HasConflict(candidate model.Window, existing []model.ScheduleItem, excludeID int) bool {
	return Conflicting(candidate, existing, excludeID) != nil
}

// CheckConflict wraps Conflicting into a *model.ConflictError.
func CheckConflict(candidate model.Window, existing []model.ScheduleItem, excludeID int) error {
	if clash := Conflicting(candidate, existing, excludeID); clash != nil {
		return &model.ConflictError{Candidate: candidate, With: *clash}
	}
	return nil
}
