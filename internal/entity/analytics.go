package entity

import (
	"sort"
	"time"
)

const RecentActivityLimit = 10

// LeadSummary is the projection of a lead the aggregator works on.
type LeadSummary struct {
	ID          string    `json:"id"`
	PatientName string    `json:"patient_name"`
	StatusName  string    `json:"status"`
	Source      Source    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

// FirstResponse pairs a lead's creation time with its first move out of New.
type FirstResponse struct {
	LeadID      string
	CreatedAt   time.Time
	RespondedAt time.Time
}

// SnapshotData is the raw material of one analytics window.
type SnapshotData struct {
	InScope   []LeadSummary
	Recent    []LeadSummary
	Responses []FirstResponse
}

type BreakdownEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type AnalyticsSnapshot struct {
	Since           time.Time        `json:"since"`
	TotalLeads      int              `json:"total_leads"`
	NewLeads        int              `json:"new_leads"`
	ConvertedLeads  int              `json:"converted_leads"`
	PendingLeads    int              `json:"pending_leads"`
	ConversionRate  float64          `json:"conversion_rate"`
	SourceBreakdown []BreakdownEntry `json:"source_breakdown"`
	StatusBreakdown []BreakdownEntry `json:"status_breakdown"`
	RecentActivity  []LeadSummary    `json:"recent_activity"`

	// AverageResponseSeconds is nil until at least one in-scope lead has
	// left New.
	AverageResponseSeconds *float64 `json:"average_response_time_seconds"`
	RespondedLeads         int      `json:"responded_leads"`
}

// BuildSnapshot is the pure rollup behind the analytics endpoint. inScope
// holds the leads created at or after since; recent holds the newest leads
// regardless of window; responses holds first-response pairs for in-scope
// leads.
func BuildSnapshot(since time.Time, inScope, recent []LeadSummary, responses []FirstResponse) *AnalyticsSnapshot {
	snap := &AnalyticsSnapshot{
		Since:           since,
		TotalLeads:      len(inScope),
		SourceBreakdown: []BreakdownEntry{},
		StatusBreakdown: []BreakdownEntry{},
		RecentActivity:  []LeadSummary{},
	}

	bySource := map[string]int{}
	byStatus := map[string]int{}
	for _, l := range inScope {
		switch {
		case l.StatusName == StatusNameNew:
			snap.NewLeads++
		case l.StatusName == StatusNameConverted:
			snap.ConvertedLeads++
		case IsPending(l.StatusName):
			snap.PendingLeads++
		}
		bySource[string(l.Source)]++
		byStatus[l.StatusName]++
	}

	if snap.TotalLeads > 0 {
		snap.ConversionRate = float64(snap.ConvertedLeads) / float64(snap.TotalLeads) * 100
	}
	snap.SourceBreakdown = breakdown(bySource)
	snap.StatusBreakdown = breakdown(byStatus)

	recentCopy := append([]LeadSummary(nil), recent...)
	sort.SliceStable(recentCopy, func(i, j int) bool {
		if !recentCopy[i].CreatedAt.Equal(recentCopy[j].CreatedAt) {
			return recentCopy[i].CreatedAt.After(recentCopy[j].CreatedAt)
		}
		return recentCopy[i].ID < recentCopy[j].ID
	})
	if len(recentCopy) > RecentActivityLimit {
		recentCopy = recentCopy[:RecentActivityLimit]
	}
	snap.RecentActivity = append(snap.RecentActivity, recentCopy...)

	var total time.Duration
	for _, r := range responses {
		total += r.RespondedAt.Sub(r.CreatedAt)
		snap.RespondedLeads++
	}
	if snap.RespondedLeads > 0 {
		avg := total.Seconds() / float64(snap.RespondedLeads)
		snap.AverageResponseSeconds = &avg
	}

	return snap
}

func breakdown(counts map[string]int) []BreakdownEntry {
	out := make([]BreakdownEntry, 0, len(counts))
	for k, c := range counts {
		out = append(out, BreakdownEntry{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
