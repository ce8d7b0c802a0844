package storefront

import (
	"context"
)

const unavailableShopName = "Storefront Unavailable"

// Shop loads the shop name and description. On failure it logs and returns
// a placeholder so the page chrome can still render.
func (c *Client) Shop(ctx context.Context) *Shop {
	var resp struct {
		Shop *struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
		} `json:"shop"`
	}
	if err := c.Query(ctx, "Layout", LayoutQuery, nil, &resp); err != nil {
		c.logger.Error("Failed to load shop: %v", err)
		return &Shop{Name: unavailableShopName}
	}

	shop := &Shop{Name: unavailableShopName}
	if resp.Shop == nil {
		return shop
	}
	if s := cleanString(resp.Shop.Name); s != "" {
		shop.Name = s
	}
	if resp.Shop.Description != nil {
		shop.Description = *resp.Shop.Description
	}
	return shop
}
