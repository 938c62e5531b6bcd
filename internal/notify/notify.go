// Package notify computes how many interest events a call owner has not seen
// yet and keeps the per-client "last seen" cursor.
package notify

import "time"

// Window is how many recent interest events are inspected. Owners with more
// unseen events than this are undercounted.
const Window = 200

// Precision is the resolution cursors and events are compared at. It matches
// the datetime(3) columns on MySQL so every backend orders them alike.
const Precision = time.Millisecond

// Result is the outcome of a diff.
type Result struct {
	Unseen    int  `json:"unseen_count"`
	ShowToast bool `json:"show_toast"`
}

// Diff counts events strictly newer than lastSeen at millisecond precision.
// With no cursor yet every event counts as unseen.
func Diff(lastSeen *time.Time, events []time.Time) Result {
	count := 0
	if lastSeen == nil {
		count = len(events)
	} else {
		for _, at := range events {
			if at.Truncate(Precision).After(lastSeen.Truncate(Precision)) {
				count++
			}
		}
	}
	return Result{Unseen: count, ShowToast: count > 0}
}
