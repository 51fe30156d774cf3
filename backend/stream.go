package backend

import (
	"context"
	"net/http"
)

// AllRows fetches the full ordered batch of historical sensor-read records
// for the session.
func (c *Client) AllRows(ctx context.Context) ([]RawRow, error) {
	var rows []RawRow
	if err := c.do(
		ctx, http.MethodGet, "/api/stream/all_rows", nil, &rows,
	); err != nil {
		return nil, err
	}
	return rows, nil
}

// ResetDemo clears the alerts persisted by a previous demo session.
func (c *Client) ResetDemo(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/reset_demo", nil, nil)
}
