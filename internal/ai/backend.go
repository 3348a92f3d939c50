package ai

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nhle/memoask/internal/model"
	"github.com/nhle/memoask/internal/request"
)

// Ping checks that the backend answers on its test endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var resp model.TestResponse
	err := c.doer.Do(ctx, request.Options{
		URL:    model.TestPath,
		Method: http.MethodPost,
	}, &resp)
	if err != nil {
		return fmt.Errorf("pinging backend: %w", err)
	}
	if resp.Message == "" {
		return fmt.Errorf("pinging backend: empty reply")
	}
	return nil
}

// History returns up to limit recorded exchanges, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]model.Exchange, error) {
	url := model.HistoryPath
	if limit > 0 {
		url += "?limit=" + strconv.Itoa(limit)
	}

	var resp model.HistoryResponse
	if err := c.doer.Do(ctx, request.Options{URL: url}, &resp); err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	return resp.Exchanges, nil
}
