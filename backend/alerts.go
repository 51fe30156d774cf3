package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Leesungkyoung/Cpastone02/streaming/errors"
)

// CreateAlert submits a new alert to the backend and returns the persisted
// representation.
func (c *Client) CreateAlert(
	ctx context.Context,
	alert AlertCreate,
) (*Alert, error) {
	var created Alert
	if err := c.do(
		ctx, http.MethodPost, "/api/alerts", alert, &created,
	); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListAlerts returns every persisted alert, newest first.
func (c *Client) ListAlerts(ctx context.Context) ([]Alert, error) {
	var alerts []Alert
	if err := c.do(ctx, http.MethodGet, "/api/alerts", nil, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// ResolveAlert marks the alert with the given id as resolved.
func (c *Client) ResolveAlert(ctx context.Context, id int64) (*Alert, error) {
	if id <= 0 {
		return nil, &errors.Error{
			Message:       "alert id must be positive",
			Kind:          errors.ArgumentInvalid,
			PropertyName:  "id",
			PropertyValue: id,
		}
	}

	var resolved Alert
	path := "/api/alerts/" + strconv.FormatInt(id, 10) + "/resolve"
	if err := c.do(ctx, http.MethodPatch, path, nil, &resolved); err != nil {
		return nil, err
	}
	return &resolved, nil
}
