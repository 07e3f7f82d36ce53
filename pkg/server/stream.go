package server

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"mercator-hq/mpl-builtins/pkg/evidence"
	mplerrors "mercator-hq/mpl-builtins/pkg/mpl/errors"
)

// MaxLineBytes bounds one request line on the serve stream.
const MaxLineBytes = 16 << 20

// ServeLines reads JSON-lines requests from r and writes one JSON-line
// response per request to w, in request order. Blank lines are skipped.
// It returns nil at EOF or when ctx is cancelled between requests.
func (h *Handler) ServeLines(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)

	out := &lineWriter{w: bufio.NewWriter(w)}
	served := 0

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var resp *Response
		req, err := DecodeRequest(line)
		if err != nil {
			resp = requestError(&Response{}, fmt.Sprintf("malformed request: %v", err))
		} else {
			resp = h.Handle(ctx, req)
		}

		if err := out.write(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
		served++
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read requests: %w", err)
	}

	h.logger.DebugContext(ctx, "request stream closed", "requests", served)
	return nil
}

// lineWriter writes one JSON document per line and flushes after each so a
// client waiting for a response is never stalled by buffering.
type lineWriter struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func (lw *lineWriter) write(resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		// the result cannot be represented in JSON; report that instead
		data, err = json.Marshal(&Response{
			ID:      resp.ID,
			Outcome: evidence.OutcomeError,
			Error: &ErrorBody{
				Type:    string(mplerrors.ErrorTypeSerialize),
				Message: fmt.Sprintf("result cannot be encoded as JSON: %v", err),
			},
		})
		if err != nil {
			return err
		}
	}

	lw.mu.Lock()
	defer lw.mu.Unlock()
	if _, err := lw.w.Write(data); err != nil {
		return err
	}
	if err := lw.w.WriteByte('\n'); err != nil {
		return err
	}
	return lw.w.Flush()
}
