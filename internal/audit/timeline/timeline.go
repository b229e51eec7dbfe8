// Package timeline partitions entries into date-separated sections.
package timeline

import (
	"sort"
	"time"

	"statedeck/internal/audit/models"
	"statedeck/internal/format"
)

// Group is one timeline section. Key is the calendar date (YYYY-MM-DD) in the
// grouping location, or empty when grouping is off.
type Group struct {
	Key     string         `json:"key"`
	Label   string         `json:"label"`
	Entries []models.Entry `json:"entries"`
}

// GroupByDate partitions entries by calendar date in loc (nil means UTC).
//
// When groupByDate is false a single unlabeled group holds every entry in
// input order. Otherwise groups are ordered newest date first and each group
// keeps the input order of its entries. Every entry lands in exactly one group.
func GroupByDate(entries []models.Entry, groupByDate bool, loc *time.Location) []Group {
	if len(entries) == 0 {
		return []Group{}
	}
	if !groupByDate {
		return []Group{{Entries: append([]models.Entry(nil), entries...)}}
	}
	if loc == nil {
		loc = time.UTC
	}

	index := make(map[string]int)
	var groups []Group
	for _, e := range entries {
		key := format.DateKey(e.Timestamp, loc)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key, Label: format.Date(e.Timestamp, loc)})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}

	// Keys are YYYY-MM-DD so lexical order is date order.
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Key > groups[b].Key
	})
	return groups
}

// Flatten returns the entries of groups in emitted order.
func Flatten(groups []Group) []models.Entry {
	n := 0
	for _, g := range groups {
		n += len(g.Entries)
	}
	out := make([]models.Entry, 0, n)
	for _, g := range groups {
		out = append(out, g.Entries...)
	}
	return out
}
