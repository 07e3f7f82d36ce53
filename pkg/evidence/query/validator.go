package query

import (
	"fmt"
	"strings"

	"mercator-hq/mpl-builtins/pkg/config"
	"mercator-hq/mpl-builtins/pkg/evidence"
	"mercator-hq/mpl-builtins/pkg/evidence/storage"
	"mercator-hq/mpl-builtins/pkg/mpl/builtins"
)

const (
	// DefaultLimit is the default number of records to return if not specified.
	DefaultLimit = config.DefaultEvidenceQueryDefaultLimit

	// MaxLimit is the maximum number of records that can be returned in a single query.
	MaxLimit = config.DefaultEvidenceQueryMaxLimit
)

// ValidSortFields contains the fields that can be used for sorting.
var ValidSortFields = map[string]bool{
	storage.SortByCallTime: true,
	storage.SortByDuration: true,
	storage.SortByBuiltin:  true,
}

// ValidSortOrders contains the valid sort orders.
var ValidSortOrders = map[string]bool{
	"asc":  true,
	"desc": true,
}

// ValidOutcomes contains the outcomes a record can carry.
var ValidOutcomes = map[string]bool{
	evidence.OutcomeOK:        true,
	evidence.OutcomeError:     true,
	evidence.OutcomeSoftError: true,
}

// Validator checks queries against configured limits.
type Validator struct {
	defaultLimit int
	maxLimit     int
}

// NewValidator creates a validator from the evidence query configuration.
// Zero limits fall back to DefaultLimit and MaxLimit.
func NewValidator(cfg config.QueryConfig) *Validator {
	v := &Validator{defaultLimit: cfg.DefaultLimit, maxLimit: cfg.MaxLimit}
	if v.defaultLimit <= 0 {
		v.defaultLimit = DefaultLimit
	}
	if v.maxLimit <= 0 {
		v.maxLimit = MaxLimit
	}
	if v.defaultLimit > v.maxLimit {
		v.defaultLimit = v.maxLimit
	}
	return v
}

var defaultValidator = NewValidator(config.QueryConfig{})

// Validate validates a query using the package default limits.
func Validate(q *evidence.Query) error {
	return defaultValidator.Validate(q)
}

// ApplyDefaults applies the package default limit and ordering to a query.
func ApplyDefaults(q *evidence.Query) {
	defaultValidator.ApplyDefaults(q)
}

// Validate validates a query and returns an error if any parameters are invalid.
func (v *Validator) Validate(q *evidence.Query) error {
	if q == nil {
		return evidence.NewQueryError(q, fmt.Errorf("query is required"))
	}

	// Validate limit
	if q.Limit < 0 {
		return evidence.NewQueryError(q, fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if q.Limit > v.maxLimit {
		return evidence.NewQueryError(q, fmt.Errorf("limit must be <= %d, got %d", v.maxLimit, q.Limit))
	}

	// Validate offset
	if q.Offset < 0 {
		return evidence.NewQueryError(q, fmt.Errorf("offset must be >= 0, got %d", q.Offset))
	}

	// Validate sort field
	if q.SortBy != "" && !ValidSortFields[q.SortBy] {
		return evidence.NewQueryError(q, fmt.Errorf("invalid sort field: %s (must be one of %s)", q.SortBy, sortFieldList()))
	}

	// Validate sort order
	if q.SortOrder != "" && !ValidSortOrders[strings.ToLower(q.SortOrder)] {
		return evidence.NewQueryError(q, fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", q.SortOrder))
	}

	// Validate time range
	if q.StartTime != nil && q.EndTime != nil {
		if q.StartTime.After(*q.EndTime) {
			return evidence.NewQueryError(q, fmt.Errorf("start_time must be before end_time"))
		}
	}

	// Validate duration thresholds
	if q.MinDuration != nil && *q.MinDuration < 0 {
		return evidence.NewQueryError(q, fmt.Errorf("min_duration must be >= 0"))
	}
	if q.MinDuration != nil && q.MaxDuration != nil {
		if *q.MinDuration > *q.MaxDuration {
			return evidence.NewQueryError(q, fmt.Errorf("min_duration must be <= max_duration"))
		}
	}

	// Validate outcome
	if q.Outcome != "" && !ValidOutcomes[q.Outcome] {
		return evidence.NewQueryError(q, fmt.Errorf("invalid outcome: %s (must be 'ok', 'error', or 'soft_error')", q.Outcome))
	}

	// Validate family
	if q.Family != "" {
		if _, err := builtins.ParseFamily(q.Family); err != nil {
			return evidence.NewQueryError(q, err)
		}
	}

	return nil
}

// ApplyDefaults applies default values to a query.
func (v *Validator) ApplyDefaults(q *evidence.Query) {
	if q.Limit == 0 {
		q.Limit = v.defaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = storage.SortByCallTime
	}
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
	q.SortOrder = strings.ToLower(q.SortOrder)
}

func sortFieldList() string {
	return strings.Join([]string{storage.SortByCallTime, storage.SortByDuration, storage.SortByBuiltin}, ", ")
}
