// Package query validates evidence queries before they reach a storage
// backend.
//
// Validate rejects negative pagination, limits above the configured maximum,
// sort fields outside the backend whitelist, inverted time and duration
// ranges, unknown outcomes and unknown builtin families. ApplyDefaults fills
// in the default limit and newest-first ordering.
//
//	v := query.NewValidator(cfg.Evidence.Query)
//	q := &evidence.Query{Builtin: "json.verify_schema", Outcome: evidence.OutcomeSoftError}
//	v.ApplyDefaults(q)
//	if err := v.Validate(q); err != nil {
//	    return err
//	}
//	records, err := store.Query(ctx, q)
package query
