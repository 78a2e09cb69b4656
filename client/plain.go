package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Plain is an HTTP client with no session behaviour: no Authorizer and no
// Response Recovery. It is used for the token refresh call and for login,
// where recursion into recovery would be wrong.
type Plain struct {
	base       *url.URL
	httpClient *http.Client
}

func NewPlain(baseURL string, httpClient *http.Client) (*Plain, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Plain{base: base, httpClient: httpClient}, nil
}

// PostJSON posts body as JSON and decodes a 2xx response into out. Non-2xx
// responses are returned as *APIError.
func (p *Plain) PostJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("[Plain PostJSON] failed to encode body: %w", err)
	}
	target, err := resolveURL(p.base, path, nil)
	if err != nil {
		return fmt.Errorf("[Plain PostJSON] %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("[Plain PostJSON] failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)

	httpResp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("[Plain PostJSON] %s: %w", path, err)
	}
	resp, err := readResponse(httpResp)
	if err != nil {
		return fmt.Errorf("[Plain PostJSON] %w", err)
	}
	if !isSuccess(resp.StatusCode) {
		return &APIError{Method: http.MethodPost, Path: path, StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return resp.Decode(out)
}

func parseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", raw)
	}
	return base, nil
}
