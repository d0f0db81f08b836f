// Package moderation derives the admin dashboard from the appointment
// collection and keeps the dashboard's working copy in step with the store.
package moderation

import (
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/clinique-espoir-be/internal/models"
)

// Filter selects appointments by status.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterConfirmed Filter = "confirmed"
	FilterCancelled Filter = "cancelled"
)

// ParseFilter accepts the dashboard's tab names. An empty value means all.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterPending, FilterConfirmed, FilterCancelled:
		return f, nil
	}
	return "", fmt.Errorf("unknown status filter %q", s)
}

func (f Filter) match(a models.Appointment) bool {
	return f == FilterAll || f == "" || string(a.Status) == string(f)
}

// Query is what the admin typed and clicked.
type Query struct {
	Filter Filter `json:"filter"`
	Search string `json:"search"`
}

// Counters summarise the whole collection, whatever the query.
type Counters struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Today   int `json:"today"`
}

// View is the derived dashboard.
type View struct {
	Items    []models.Appointment `json:"items"`
	Counters Counters             `json:"counters"`
}

// Derive filters items by status and search term and counts the full set.
// The name match ignores case; the id match does not. Today compares the
// appointment date with now's local calendar date. items must already be
// newest first; their order is kept.
func Derive(items []models.Appointment, q Query, now time.Time) View {
	today := now.Local().Format(models.DateLayout)
	term := strings.ToLower(q.Search)

	view := View{Items: make([]models.Appointment, 0, len(items))}
	for _, a := range items {
		view.Counters.Total++
		if a.Status == models.StatusPending {
			view.Counters.Pending++
		}
		if a.Date == today {
			view.Counters.Today++
		}

		if !q.Filter.match(a) {
			continue
		}
		if q.Search != "" &&
			!strings.Contains(strings.ToLower(a.PatientName), term) &&
			!strings.Contains(a.ID, q.Search) {
			continue
		}
		view.Items = append(view.Items, a)
	}
	return view
}
