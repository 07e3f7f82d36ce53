package storage

import (
	"sort"
	"strings"

	"mercator-hq/mpl-builtins/pkg/evidence"
)

// Sort columns accepted in Query.SortBy.
const (
	SortByCallTime = "call_time"
	SortByDuration = "duration"
	SortByBuiltin  = "builtin"
)

// matchesQuery checks if a record matches the query filters.
func matchesQuery(record *evidence.EvidenceRecord, query *evidence.Query) bool {
	if query == nil {
		return true
	}

	// Time range filter
	if query.StartTime != nil && record.CallTime.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.CallTime.After(*query.EndTime) {
		return false
	}

	// Call filters
	if query.Builtin != "" && record.Builtin != query.Builtin {
		return false
	}
	if query.Family != "" && record.Family != query.Family {
		return false
	}
	if query.Outcome != "" && record.Outcome != query.Outcome {
		return false
	}
	if query.ErrorKind != "" && record.ErrorKind != query.ErrorKind {
		return false
	}
	if query.RequestID != "" && record.RequestID != query.RequestID {
		return false
	}
	if query.Strict != nil && record.Strict != *query.Strict {
		return false
	}

	// Duration thresholds
	if query.MinDuration != nil && record.Duration < *query.MinDuration {
		return false
	}
	if query.MaxDuration != nil && record.Duration > *query.MaxDuration {
		return false
	}

	return true
}

// sortRecords orders records per query. The default is newest first.
func sortRecords(records []*evidence.EvidenceRecord, query *evidence.Query) {
	sortBy, desc := SortByCallTime, true
	if query != nil {
		if query.SortBy != "" {
			sortBy = query.SortBy
		}
		if strings.EqualFold(query.SortOrder, "asc") {
			desc = false
		}
	}

	// id breaks ties, matching the SQLite ordering
	less := func(a, b *evidence.EvidenceRecord) bool {
		switch sortBy {
		case SortByDuration:
			if a.Duration != b.Duration {
				return a.Duration < b.Duration
			}
		case SortByBuiltin:
			if a.Builtin != b.Builtin {
				return a.Builtin < b.Builtin
			}
		default:
			if !a.CallTime.Equal(b.CallTime) {
				return a.CallTime.Before(b.CallTime)
			}
		}
		return a.ID < b.ID
	}

	sort.Slice(records, func(i, j int) bool {
		if desc {
			return less(records[j], records[i])
		}
		return less(records[i], records[j])
	})
}

// paginate applies Offset and Limit. Limit 0 means no limit.
func paginate(records []*evidence.EvidenceRecord, query *evidence.Query) []*evidence.EvidenceRecord {
	if query == nil {
		return records
	}

	start := query.Offset
	if start > len(records) {
		return []*evidence.EvidenceRecord{}
	}
	records = records[start:]

	if query.Limit > 0 && query.Limit < len(records) {
		records = records[:query.Limit]
	}
	return records
}
