package storefront

import (
	"context"
	"fmt"
	"strings"
)

// Product loads a product by handle. ErrNotFound is returned when the
// handle does not resolve.
func (c *Client) Product(ctx context.Context, handle string) (*Product, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, ErrNotFound
	}

	var resp struct {
		Product *rawProduct `json:"product"`
	}
	if err := c.Query(ctx, "Product", ProductQuery, map[string]interface{}{"handle": handle}, &resp); err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", handle, err)
	}

	product, ok := toProduct(resp.Product)
	if !ok {
		return nil, ErrNotFound
	}
	return product, nil
}
