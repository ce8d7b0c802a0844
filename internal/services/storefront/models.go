package storefront

import (
	"github.com/shopspring/decimal"
)

// Money is a Storefront API MoneyV2.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

var currencySymbols = map[string]string{
	"USD": "$",
	"CAD": "CA$",
	"AUD": "A$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// Display renders the amount with two decimals and the currency symbol when
// one is known, e.g. "$129.00" or "129.00 CHF".
func (m Money) Display() string {
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return m.Amount + " " + m.CurrencyCode
	}
	if symbol, ok := currencySymbols[m.CurrencyCode]; ok {
		return symbol + amount.StringFixed(2)
	}
	return amount.StringFixed(2) + " " + m.CurrencyCode
}

// Decimal parses the amount, returning zero for malformed values.
func (m Money) Decimal() decimal.Decimal {
	d, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

type Image struct {
	URL     string  `json:"url"`
	AltText *string `json:"altText"`
}

// ProductCard is the projection of a product used in grids.
type ProductCard struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Handle      string  `json:"handle"`
	Description *string `json:"description"`
	Summary     string  `json:"summary,omitempty"`
	ImageURL    *string `json:"imageUrl"`
	Price       *Money  `json:"price"`
}

type PageInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	EndCursor       *string `json:"endCursor"`
	StartCursor     *string `json:"startCursor"`
}

// Facet is a filter group offered for a collection.
type Facet struct {
	ID     string       `json:"id"`
	Label  string       `json:"label"`
	Type   string       `json:"type"`
	Values []FacetValue `json:"values"`
}

// FacetValue.Input is the JSON ProductFilter that selects this value.
type FacetValue struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Count int    `json:"count"`
	Input string `json:"input"`
}

type CollectionPage struct {
	ID          string        `json:"id,omitempty"`
	Title       string        `json:"title"`
	Handle      string        `json:"handle"`
	Description *string       `json:"description"`
	Found       bool          `json:"found"`
	Products    []ProductCard `json:"products"`
	Facets      []Facet       `json:"filters"`
	PageInfo    PageInfo      `json:"pageInfo"`
}

type NavigationItem struct {
	Title  string `json:"title"`
	Handle string `json:"handle"`
	URL    string `json:"url"`
}

type Variant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	AvailableForSale bool             `json:"availableForSale"`
	Price            Money            `json:"price"`
	SelectedOptions  []SelectedOption `json:"selectedOptions,omitempty"`
}

type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type ProductOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type Product struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Handle          string          `json:"handle"`
	Description     *string         `json:"description"`
	DescriptionHTML *string         `json:"descriptionHtml"`
	ImageURL        *string         `json:"imageUrl"`
	Gallery         []Image         `json:"gallery"`
	Options         []ProductOption `json:"options"`
	Variants        []Variant       `json:"variants"`
	Price           *Money          `json:"price"`
	Available       bool            `json:"available"`
}

type Shop struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CartLine struct {
	ID          string `json:"id"`
	Quantity    int    `json:"quantity"`
	VariantID   string `json:"variantId"`
	VariantName string `json:"variantTitle"`
	ProductName string `json:"productTitle"`
	Handle      string `json:"handle"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Price       Money  `json:"price"`
	LineTotal   Money  `json:"lineTotal"`
}

type Cart struct {
	ID            string     `json:"id"`
	CheckoutURL   string     `json:"checkoutUrl"`
	TotalQuantity int        `json:"totalQuantity"`
	Subtotal      Money      `json:"subtotal"`
	Total         Money      `json:"total"`
	Lines         []CartLine `json:"lines"`
}

type CustomerAccessToken struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   string `json:"expiresAt"`
}

type Order struct {
	ID          string `json:"id"`
	OrderNumber int    `json:"orderNumber"`
	TotalPrice  string `json:"totalPrice"`
	ProcessedAt string `json:"processedAt"`
}

type Customer struct {
	ID          string  `json:"id"`
	DisplayName *string `json:"displayName"`
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Email       *string `json:"email"`
	Orders      []Order `json:"orders"`
}

// UserError is a mutation's userErrors / customerUserErrors entry.
type UserError struct {
	Code    string   `json:"code,omitempty"`
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
}
