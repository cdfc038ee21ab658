// Package restapi is the HTTP client of the school REST API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/school"
)

const DefaultTimeout = 15 * time.Second

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

type Options struct {
	BaseURL    string
	Token      string // sent as a bearer token when set
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the school API. It implements school.API.
type Client struct {
	base  string
	token string
	http  *http.Client
}

var _ school.API = (*Client)(nil)

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		base:  strings.TrimRight(opts.BaseURL, "/"),
		token: opts.Token,
		http:  hc,
	}
}

// List fetches one page of the collection at path into out.
func (c *Client) List(ctx context.Context, path string, page, limit int, out interface{}) error {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return c.do(ctx, http.MethodGet, path+"?"+q.Encode(), "", nil, out)
}

func (c *Client) Create(ctx context.Context, path string, in, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, "", in, out)
}

func (c *Client) Update(ctx context.Context, path, id string, in, out interface{}) error {
	return c.do(ctx, http.MethodPut, path+"/"+url.PathEscape(id), id, in, out)
}

func (c *Client) Delete(ctx context.Context, path, id string) error {
	return c.do(ctx, http.MethodDelete, path+"/"+url.PathEscape(id), id, nil, nil)
}

func (c *Client) ToggleStatus(ctx context.Context, path, id string, active bool) error {
	body := map[string]bool{"isActive": active}
	return c.do(ctx, http.MethodPut, path+"/toggle-status/"+url.PathEscape(id), id, body, nil)
}

// Ping checks that the API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, id string, in, out interface{}) error {
	op := strings.ToLower(method) + " " + strings.SplitN(path, "?", 2)[0]

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		nerr := &core.NetworkError{Op: op, Err: err}
		var uerr *url.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &uerr) && uerr.Timeout()) {
			nerr.Timeout = true
		}
		return nerr
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &core.NotFoundError{Entity: entityOf(path), ID: id}
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return decodeValidationError(resp.Body)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return core.NewNetworkError(op, resp.StatusCode, nil)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return core.NewNetworkError(op, 0, errors.Wrap(err, "decoding response"))
	}
	return nil
}

// decodeValidationError reads a rejection body: either {"error": "message"}
// or a map of field names to messages.
func decodeValidationError(r io.Reader) error {
	var payload map[string]interface{}
	if err := json.NewDecoder(io.LimitReader(r, maxErrorBody)).Decode(&payload); err != nil {
		return core.NewServerValidationError(errors.New("the server rejected the request"))
	}

	var msg string
	for _, key := range []string{"error", "message"} {
		if s, ok := payload[key].(string); ok && s != "" {
			msg = s
			break
		}
	}
	if nested, ok := payload["errors"].(map[string]interface{}); ok {
		payload = nested
	}

	var flds []core.FieldError
	for field, v := range payload {
		if s, ok := v.(string); ok && field != "error" && field != "message" {
			flds = append(flds, core.FieldError{Field: field, Error: s})
		}
	}
	sort.Slice(flds, func(i, j int) bool { return flds[i].Field < flds[j].Field })

	var err error
	if msg != "" {
		err = errors.New(msg)
	}
	if err == nil && len(flds) == 0 {
		err = errors.New("the server rejected the request")
	}
	return core.NewServerValidationError(err, flds...)
}

// entityOf returns the collection name of an API path, eg. "/classes/c1" -> "classes".
func entityOf(path string) string {
	path = strings.SplitN(path, "?", 2)[0]
	return strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)[0]
}
