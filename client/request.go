package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

const (
	contentTypeJSON = "application/json"
	maxResponseBody = 32 << 20
)

// Request describes one API call. Path is relative to the API root; an
// absolute URL is used as is.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   any            // JSON-encoded when non-nil
	Form   *MultipartForm // multipart/form-data; takes precedence over Body
}

// MultipartForm is a multipart body, e.g. a lesson with its video file.
type MultipartForm struct {
	Fields map[string]string
	Files  []FormFile
}

type FormFile struct {
	Field    string
	FileName string
	Content  io.Reader
}

// Response is a completed API response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into out. Empty bodies decode to nothing.
func (r *Response) Decode(out any) error {
	if out == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("[Response Decode] %w: %w", ErrDecodeResponse, err)
	}
	return nil
}

// encodeBody renders the request body once so it can be replayed on retry.
func encodeBody(r *Request) ([]byte, string, error) {
	if r.Form != nil {
		return r.Form.encode()
	}
	if r.Body == nil {
		return nil, "", nil
	}
	data, err := json.Marshal(r.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request body: %w", err)
	}
	return data, contentTypeJSON, nil
}

func (f *MultipartForm) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, f.Fields[k]); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", k, err)
		}
	}

	for _, file := range f.Files {
		part, err := w.CreateFormFile(file.Field, file.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file %s: %w", file.Field, err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("failed to copy form file %s: %w", file.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// resolveURL joins path onto base. A rooted path that already starts with the
// API root ("/api/courses/5/") has the root removed, as PathMatcher.Normalize
// does; any other leading slash does not escape the API root.
func resolveURL(base *url.URL, path string, query url.Values) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	if !ref.IsAbs() {
		ref.Path = strings.TrimLeft(stripAPIRoot(base.Path, ref.Path), "/")
		ref.RawPath = ""
	}
	target := base.ResolveReference(ref)

	if len(query) > 0 {
		q := target.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		target.RawQuery = q.Encode()
	}
	return target.String(), nil
}

func stripAPIRoot(root, p string) string {
	root = strings.TrimSuffix(root, "/")
	if root == "" || !strings.HasPrefix(p, "/") {
		return p
	}
	if p == root || strings.HasPrefix(p, root+"/") {
		return strings.TrimPrefix(p, root)
	}
	return p
}

func readResponse(resp *http.Response) (*Response, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
