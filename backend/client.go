// Package backend implements the REST client for the dashboard backend
// consumed by the streaming engine: the historical stream source, the demo
// reset operation, and the alert persistence resource.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Leesungkyoung/Cpastone02/streaming/errors"
	"github.com/Leesungkyoung/Cpastone02/internal/log"
)

type (
	// Client represents a client of the dashboard backend.
	Client struct {
		base      *url.URL
		http      *http.Client
		userAgent string
		logger    log.Logger
	}
)

// New creates a new backend client for the given base URL.
func New(baseURL string, opt ...ClientOption) (*Client, error) {
	var opts ClientOptions
	opts.Apply(opt)

	if baseURL == "" {
		return nil, &errors.Error{
			Message:      "base URL must not be empty",
			Kind:         errors.ConfigurationInvalid,
			PropertyName: "baseURL",
		}
	}

	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, &errors.Error{
			Message:       "base URL is not a valid URL",
			Kind:          errors.ConfigurationInvalid,
			PropertyName:  "baseURL",
			PropertyValue: baseURL,
			NestedError:   err,
		}
	}

	c := &Client{
		base:      base,
		http:      opts.HTTPClient,
		userAgent: opts.UserAgent,
		logger:    log.Wrap(opts.Logger),
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	return c, nil
}

// do performs a request against the backend and decodes the JSON response
// body into out (when out is non-nil and the response has a body).
func (c *Client) do(
	ctx context.Context,
	method, path string,
	body, out any,
) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &errors.Error{
				Message:     "request body could not be encoded",
				Kind:        errors.PayloadInvalid,
				Operation:   method + " " + path,
				NestedError: err,
			}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		method,
		c.base.JoinPath(path).String(),
		reader,
	)
	if err != nil {
		return &errors.Error{
			Message:     "request could not be created",
			Kind:        errors.InternalLogicError,
			Operation:   method + " " + path,
			NestedError: err,
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	res, err := c.http.Do(req)
	if err != nil {
		kind := errors.NetworkError
		if ctx.Err() != nil {
			kind = errors.Cancellation
		}
		return &errors.Error{
			Message:     "request to the backend failed",
			Kind:        kind,
			Operation:   method + " " + path,
			NestedError: err,
		}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &errors.Error{
			Message:        "backend returned an error status",
			Kind:           errors.ServiceError,
			Operation:      method + " " + path,
			HTTPStatusCode: res.StatusCode,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &errors.Error{
			Message:     "response body could not be decoded",
			Kind:        errors.PayloadInvalid,
			Operation:   method + " " + path,
			NestedError: err,
		}
	}
	return nil
}
