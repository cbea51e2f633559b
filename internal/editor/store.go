package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"centre-block/internal/models"
)

// BlockClient reads and saves one block's selection through the server's
// block endpoints.
type BlockClient struct {
	baseURL    string
	blockID    string
	httpClient *http.Client
}

func NewBlockClient(baseURL, blockID string, timeout time.Duration) *BlockClient {
	return &BlockClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		blockID:    blockID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *BlockClient) blockURL() string {
	return c.baseURL + "/awanui/v1/blocks/" + url.PathEscape(c.blockID)
}

// LoadSelection returns the block's saved centre id.
func (c *BlockClient) LoadSelection(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.blockURL(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	var block models.Block
	if err := c.do(req, &block); err != nil {
		return "", fmt.Errorf("load block %s: %w", c.blockID, err)
	}
	return block.CentreID, nil
}

// SaveSelection stores centreID on the block; "" clears it.
func (c *BlockClient) SaveSelection(ctx context.Context, centreID string) error {
	body, err := json.Marshal(models.BlockSelectionRequest{CentreID: centreID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.blockURL(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("save block %s: %w", c.blockID, err)
	}
	return nil
}

func (c *BlockClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
