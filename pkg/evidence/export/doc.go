// Package export writes evidence records as JSON, JSON Lines or CSV.
//
// Every exporter accepts either a slice (Export) or a record channel
// (ExportStream), so `evidence query` can stream straight from
// Storage.QueryStream:
//
//	exp, err := export.New(format)
//	if err != nil {
//	    return err
//	}
//	records, errCh, err := store.QueryStream(ctx, q)
//	if err != nil {
//	    return err
//	}
//	if err := exp.ExportStream(ctx, records, os.Stdout); err != nil {
//	    return err
//	}
//	return <-errCh
//
// JSON output is always an array. CSV output reports durations in
// microseconds and times in RFC 3339 UTC.
package export
