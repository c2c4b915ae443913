package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"ptcli/internal/features/discovery"
)

// Result carries a dispatched call's response. Decoded is nil when the body
// was not valid JSON; the raw bytes are always present so an undecodable
// body can still be shown verbatim.
type Result struct {
	Status  int
	Body    []byte
	Decoded interface{}
}

// Execute performs exactly one HTTP request for a resolution: the resolved
// method and fully substituted path appended to the base URL. A non-nil body
// forces POST, matching the original client's --data behavior.
func Execute(ctx context.Context, d discovery.Doer, baseURL string, res *Resolution, body io.Reader) (*Result, error) {
	base, err := discovery.NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	method := res.Route.Method
	if body != nil {
		method = http.MethodPost
	}

	target := base + res.Path
	if q := res.Query.Encode(); q != "" {
		target += "?" + q
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, discovery.Wrapf(discovery.NetworkFailure, err, "building %s request for %s", method, target)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.Do(req)
	if err != nil {
		return nil, discovery.Wrapf(discovery.NetworkFailure, err, "%s %s", method, target)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, discovery.Wrapf(discovery.NetworkFailure, err, "reading response from %s", target)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, discovery.Errf(discovery.ServerError, "%s %s returned %s: %s",
			method, target, resp.Status, snippet(payload))
	}

	result := &Result{Status: resp.StatusCode, Body: payload}
	// Decode failures are the one non-fatal case: the body is still shown raw.
	var decoded interface{}
	if err := json.Unmarshal(bytes.TrimSpace(payload), &decoded); err == nil {
		result.Decoded = decoded
	}
	return result, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
