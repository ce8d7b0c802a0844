package storefront

import (
	"context"
	"fmt"
)

// LineInput adds a variant to a cart.
type LineInput struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

// LineUpdate changes the quantity of an existing line. A zero quantity
// removes the line.
type LineUpdate struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type rawCart struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkoutUrl"`
	TotalQuantity int    `json:"totalQuantity"`
	Cost          struct {
		SubtotalAmount Money `json:"subtotalAmount"`
		TotalAmount    Money `json:"totalAmount"`
	} `json:"cost"`
	Lines struct {
		Nodes []struct {
			ID       string `json:"id"`
			Quantity int    `json:"quantity"`
			Cost     struct {
				TotalAmount Money `json:"totalAmount"`
			} `json:"cost"`
			Merchandise struct {
				ID    string `json:"id"`
				Title string `json:"title"`
				Price Money  `json:"price"`
				Image *struct {
					URL string `json:"url"`
				} `json:"image"`
				Product struct {
					Title  string `json:"title"`
					Handle string `json:"handle"`
				} `json:"product"`
			} `json:"merchandise"`
		} `json:"nodes"`
	} `json:"lines"`
}

func (r *rawCart) toCart() *Cart {
	cart := &Cart{
		ID:            r.ID,
		CheckoutURL:   r.CheckoutURL,
		TotalQuantity: r.TotalQuantity,
		Subtotal:      r.Cost.SubtotalAmount,
		Total:         r.Cost.TotalAmount,
		Lines:         make([]CartLine, 0, len(r.Lines.Nodes)),
	}
	for _, n := range r.Lines.Nodes {
		line := CartLine{
			ID:          n.ID,
			Quantity:    n.Quantity,
			VariantID:   n.Merchandise.ID,
			VariantName: n.Merchandise.Title,
			ProductName: n.Merchandise.Product.Title,
			Handle:      n.Merchandise.Product.Handle,
			Price:       n.Merchandise.Price,
			LineTotal:   n.Cost.TotalAmount,
		}
		if n.Merchandise.Image != nil {
			line.ImageURL = n.Merchandise.Image.URL
		}
		if line.LineTotal.Amount == "" {
			line.LineTotal = Money{
				Amount:       line.Price.Decimal().Mul(decimalFromInt(line.Quantity)).StringFixed(2),
				CurrencyCode: line.Price.CurrencyCode,
			}
		}
		cart.Lines = append(cart.Lines, line)
	}
	if cart.Subtotal.Amount == "" && len(cart.Lines) > 0 {
		cart.Subtotal = sumLines(cart.Lines)
	}
	return cart
}

type cartPayload struct {
	Cart *rawCart `json:"cart"`
}

// Cart fetches a cart by id. ErrNotFound is returned when the cart no longer
// exists.
func (c *Client) Cart(ctx context.Context, cartID string) (*Cart, error) {
	var resp cartPayload
	if err := c.QueryNoCache(ctx, "Cart", CartQuery, map[string]interface{}{"cartId": cartID}, &resp); err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if resp.Cart == nil {
		return nil, ErrNotFound
	}
	return resp.Cart.toCart(), nil
}

// CreateCart creates a cart holding lines.
func (c *Client) CreateCart(ctx context.Context, lines []LineInput) (*Cart, error) {
	return c.cartMutation(ctx, "cartCreate", CartCreateMutation, map[string]interface{}{
		"input": map[string]interface{}{"lines": lines},
	})
}

func (c *Client) AddLines(ctx context.Context, cartID string, lines []LineInput) (*Cart, error) {
	return c.cartMutation(ctx, "cartLinesAdd", CartLinesAddMutation, map[string]interface{}{
		"cartId": cartID,
		"lines":  lines,
	})
}

func (c *Client) UpdateLines(ctx context.Context, cartID string, lines []LineUpdate) (*Cart, error) {
	return c.cartMutation(ctx, "cartLinesUpdate", CartLinesUpdateMutation, map[string]interface{}{
		"cartId": cartID,
		"lines":  lines,
	})
}

func (c *Client) RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*Cart, error) {
	return c.cartMutation(ctx, "cartLinesRemove", CartLinesRemoveMutation, map[string]interface{}{
		"cartId":  cartID,
		"lineIds": lineIDs,
	})
}

// cartMutation runs a cart mutation whose payload lives under root. The
// first user error, if any, is returned as the error.
func (c *Client) cartMutation(ctx context.Context, root, mutation string, vars map[string]interface{}) (*Cart, error) {
	var resp map[string]*cartPayload
	data, err := c.Mutate(ctx, root, mutation, vars, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", root, err)
	}
	if userErrs := userErrorsAt(data, root); len(userErrs) > 0 {
		return nil, userErrs
	}

	payload := resp[root]
	if payload == nil || payload.Cart == nil {
		return nil, fmt.Errorf("%s returned no cart", root)
	}
	return payload.Cart.toCart(), nil
}
