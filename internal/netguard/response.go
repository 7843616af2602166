package netguard

import (
	"fmt"
	"io"
	"net/http"
)

// checkDeclaredSize rejects a response whose Content-Length already exceeds
// maxBytes, before any of the body is read. A missing or negative
// Content-Length passes here; the actual-size check catches it.
func checkDeclaredSize(resp *http.Response, maxBytes int64) error {
	if resp.ContentLength > maxBytes {
		return &Error{
			Code:       CodeResponseTooLarge,
			Message:    fmt.Sprintf("declared response size %d exceeds limit %d", resp.ContentLength, maxBytes),
			StatusCode: resp.StatusCode,
		}
	}
	return nil
}

// readBodyCapped buffers at most maxBytes of the response body and rejects
// responses that run past the cap, independent of what Content-Length
// declared. Exactly maxBytes passes; one byte more fails. The check is
// post-buffering by design — streaming enforcement would need progressive
// accounting during transfer, which this gateway does not do.
func readBodyCapped(resp *http.Response, maxBytes int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, &Error{
			Code:       CodeTransportError,
			Message:    "reading response body",
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	if int64(len(body)) == maxBytes {
		// Probe one extra byte to distinguish exactly-at-limit from over.
		extra := make([]byte, 1)
		if n, _ := resp.Body.Read(extra); n > 0 {
			return nil, &Error{
				Code:       CodeResponseTooLarge,
				Message:    fmt.Sprintf("response body exceeds limit %d", maxBytes),
				StatusCode: resp.StatusCode,
			}
		}
	}

	return body, nil
}
