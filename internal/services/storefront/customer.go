package storefront

import (
	"context"
	"fmt"
	"time"
)

var customerErrorMessages = map[string]string{
	"INVALID_CREDENTIALS":                     "Invalid email or password",
	"CUSTOMER_DISABLED":                       "Your account has been disabled",
	"CUSTOMER_NOT_FOUND":                      "No account found with this email",
	"PASSWORD_STARTS_OR_ENDS_WITH_WHITESPACE": "Password cannot start or end with spaces",
	"TOO_SHORT":                               "Password is too short",
	"TOO_LONG":                                "Password is too long",
	"INVALID":                                 "Invalid input",
	"TAKEN":                                   "This email is already in use",
	"BLANK":                                   "This field cannot be blank",
}

// FriendlyMessage maps a customer user error onto a message fit for display.
func (e UserError) FriendlyMessage() string {
	if msg, ok := customerErrorMessages[e.Code]; ok {
		return msg
	}
	if e.Message != "" {
		return e.Message
	}
	return "An error occurred"
}

// Messages returns the friendly message of every error.
func (e UserErrors) Messages() []string {
	out := make([]string, len(e))
	for i, ue := range e {
		out[i] = ue.FriendlyMessage()
	}
	return out
}

// ExpiresAtTime parses the token expiry, returning the zero time when absent.
func (t CustomerAccessToken) ExpiresAtTime() time.Time {
	at, err := time.Parse(time.RFC3339, t.ExpiresAt)
	if err != nil {
		return time.Time{}
	}
	return at
}

// CreateAccessToken logs a customer in.
func (c *Client) CreateAccessToken(ctx context.Context, email, password string) (*CustomerAccessToken, error) {
	var resp struct {
		Payload struct {
			Token *CustomerAccessToken `json:"customerAccessToken"`
		} `json:"customerAccessTokenCreate"`
	}
	vars := map[string]interface{}{
		"input": map[string]string{"email": email, "password": password},
	}
	if err := c.customerMutation(ctx, "customerAccessTokenCreate", CustomerAccessTokenCreateMutation, vars, &resp); err != nil {
		return nil, err
	}
	if resp.Payload.Token == nil {
		return nil, UserErrors{{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"}}
	}
	return resp.Payload.Token, nil
}

// DeleteAccessToken invalidates a customer token on logout.
func (c *Client) DeleteAccessToken(ctx context.Context, token string) error {
	return c.customerMutation(ctx, "customerAccessTokenDelete", CustomerAccessTokenDeleteMutation,
		map[string]interface{}{"customerAccessToken": token}, nil)
}

// RenewAccessToken extends an expiring customer token.
func (c *Client) RenewAccessToken(ctx context.Context, token string) (*CustomerAccessToken, error) {
	var resp struct {
		Payload struct {
			Token *CustomerAccessToken `json:"customerAccessToken"`
		} `json:"customerAccessTokenRenew"`
	}
	if err := c.customerMutation(ctx, "customerAccessTokenRenew", CustomerAccessTokenRenewMutation,
		map[string]interface{}{"customerAccessToken": token}, &resp); err != nil {
		return nil, err
	}
	if resp.Payload.Token == nil {
		return nil, ErrNotFound
	}
	return resp.Payload.Token, nil
}

type CustomerInput struct {
	Email     string `json:"email,omitempty"`
	Password  string `json:"password,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// CreateCustomer registers a new customer account.
func (c *Client) CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error) {
	var resp struct {
		Payload struct {
			Customer *Customer `json:"customer"`
		} `json:"customerCreate"`
	}
	if err := c.customerMutation(ctx, "customerCreate", CustomerCreateMutation,
		map[string]interface{}{"input": input}, &resp); err != nil {
		return nil, err
	}
	if resp.Payload.Customer == nil {
		return nil, fmt.Errorf("customerCreate returned no customer")
	}
	return resp.Payload.Customer, nil
}

// RecoverCustomer sends a password reset email.
func (c *Client) RecoverCustomer(ctx context.Context, email string) error {
	return c.customerMutation(ctx, "customerRecover", CustomerRecoverMutation,
		map[string]interface{}{"email": email}, nil)
}

// UpdateCustomer changes profile fields. Empty fields are left untouched.
func (c *Client) UpdateCustomer(ctx context.Context, token string, input CustomerInput) (*Customer, error) {
	var resp struct {
		Payload struct {
			Customer *Customer `json:"customer"`
		} `json:"customerUpdate"`
	}
	if err := c.customerMutation(ctx, "customerUpdate", CustomerUpdateMutation, map[string]interface{}{
		"customerAccessToken": token,
		"customer":            input,
	}, &resp); err != nil {
		return nil, err
	}
	if resp.Payload.Customer == nil {
		return nil, ErrNotFound
	}
	return resp.Payload.Customer, nil
}

// Customer loads the profile and recent orders for token. ErrNotFound is
// returned when the token no longer resolves to a customer.
func (c *Client) Customer(ctx context.Context, token string) (*Customer, error) {
	var resp struct {
		Customer *struct {
			ID          string  `json:"id"`
			DisplayName *string `json:"displayName"`
			Email       *string `json:"email"`
			FirstName   *string `json:"firstName"`
			LastName    *string `json:"lastName"`
			Orders      struct {
				Edges []struct {
					Node struct {
						ID          string `json:"id"`
						OrderNumber int    `json:"orderNumber"`
						TotalPrice  Money  `json:"totalPrice"`
						ProcessedAt string `json:"processedAt"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"orders"`
		} `json:"customer"`
	}
	err := c.QueryNoCache(ctx, "getCustomer", CustomerQuery, map[string]interface{}{"customerAccessToken": token}, &resp)
	if err != nil {
		if IsAccessDenied(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	if resp.Customer == nil {
		return nil, ErrNotFound
	}

	customer := &Customer{
		ID:          resp.Customer.ID,
		DisplayName: resp.Customer.DisplayName,
		Email:       resp.Customer.Email,
		FirstName:   resp.Customer.FirstName,
		LastName:    resp.Customer.LastName,
		Orders:      make([]Order, 0, len(resp.Customer.Orders.Edges)),
	}
	for _, edge := range resp.Customer.Orders.Edges {
		n := edge.Node
		customer.Orders = append(customer.Orders, Order{
			ID:          n.ID,
			OrderNumber: n.OrderNumber,
			TotalPrice:  n.TotalPrice.Amount + " " + n.TotalPrice.CurrencyCode,
			ProcessedAt: n.ProcessedAt,
		})
	}
	return customer, nil
}

func (c *Client) customerMutation(ctx context.Context, root, mutation string, vars map[string]interface{}, out interface{}) error {
	data, err := c.Mutate(ctx, root, mutation, vars, out)
	if err != nil {
		return fmt.Errorf("failed to run %s: %w", root, err)
	}
	if userErrs := userErrorsAt(data, root); len(userErrs) > 0 {
		return userErrs
	}
	return nil
}
