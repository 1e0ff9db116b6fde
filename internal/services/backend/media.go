package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/amaumene/cinematheque/internal/models"
)

// ListMedia returns the records matching query; an empty query lists everything
func (c *Client) ListMedia(ctx context.Context, query url.Values) ([]models.MediaRecord, error) {
	path := "/media"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var records []models.MediaRecord
	if err := c.doRequest(ctx, "list", http.MethodGet, path, sessionToken, "", nil, &records); err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	if records == nil {
		records = []models.MediaRecord{}
	}
	return records, nil
}

// GetStats returns the aggregate statistics of the whole collection
func (c *Client) GetStats(ctx context.Context) (*models.AggregateStats, error) {
	var stats models.AggregateStats
	if err := c.doRequest(ctx, "stats", http.MethodGet, "/stats", sessionToken, "", nil, &stats); err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &stats, nil
}

// CreateMedia persists a new record
func (c *Client) CreateMedia(ctx context.Context, record models.WireRecord) (*models.MediaRecord, error) {
	var created models.MediaRecord
	if err := c.doRequest(ctx, "create", http.MethodPost, "/media", sessionToken, "", record, &created); err != nil {
		return nil, fmt.Errorf("failed to create media: %w", err)
	}
	return &created, nil
}

// UpdateMedia replaces the record with the given id
func (c *Client) UpdateMedia(ctx context.Context, id models.RecordID, record models.WireRecord) (*models.MediaRecord, error) {
	var updated models.MediaRecord
	path := "/media/" + url.PathEscape(string(id))
	if err := c.doRequest(ctx, "update", http.MethodPut, path, sessionToken, "", record, &updated); err != nil {
		return nil, fmt.Errorf("failed to update media %s: %w", id, err)
	}
	return &updated, nil
}

// DeleteMedia removes the record with the given id
func (c *Client) DeleteMedia(ctx context.Context, id models.RecordID) error {
	path := "/media/" + url.PathEscape(string(id))
	if err := c.doRequest(ctx, "delete", http.MethodDelete, path, sessionToken, "", nil, nil); err != nil {
		return fmt.Errorf("failed to delete media %s: %w", id, err)
	}
	return nil
}
