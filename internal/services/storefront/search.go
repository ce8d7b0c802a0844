package storefront

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

type SearchSort string

const (
	SearchRelevance   SearchSort = "RELEVANCE"
	SearchPrice       SearchSort = "PRICE"
	SearchCreated     SearchSort = "CREATED"
	SearchTitle       SearchSort = "TITLE"
	SearchBestSelling SearchSort = "BEST_SELLING"

	minSearchLength    = 2
	defaultSearchFirst = 12
	maxSearchFirst     = 24
)

// ParseSearchSort accepts a sort name case-insensitively, falling back to
// relevance.
func ParseSearchSort(value string) SearchSort {
	switch s := SearchSort(strings.ToUpper(strings.TrimSpace(value))); s {
	case SearchPrice, SearchCreated, SearchTitle, SearchBestSelling:
		return s
	default:
		return SearchRelevance
	}
}

// sortKey maps a search sort onto ProductSortKeys. Newest results come first
// for CREATED.
func (s SearchSort) sortKey() (string, bool) {
	switch s {
	case SearchPrice:
		return "PRICE", false
	case SearchCreated:
		return "CREATED", true
	case SearchTitle:
		return "TITLE", false
	case SearchBestSelling:
		return "BEST_SELLING", false
	default:
		return "RELEVANCE", false
	}
}

type SearchParams struct {
	Query string
	First int
	After string
	Sort  SearchSort
	// Reverse overrides the direction implied by Sort when set.
	Reverse *bool
}

type SearchResult struct {
	Items    []ProductCard `json:"items"`
	PageInfo *PageInfo     `json:"pageInfo"`
	Query    string        `json:"query"`
}

type searchResponse struct {
	Products struct {
		Edges []struct {
			Cursor string      `json:"cursor"`
			Node   *rawProduct `json:"node"`
		} `json:"edges"`
		PageInfo *PageInfo `json:"pageInfo"`
	} `json:"products"`
}

// Search runs a product search. Terms shorter than two characters return no
// results. When the expanded query matches nothing a plain title/tag query is
// tried. Failures are logged and produce an empty result.
func (c *Client) Search(ctx context.Context, params SearchParams) *SearchResult {
	q := strings.TrimSpace(params.Query)
	empty := &SearchResult{Items: []ProductCard{}, Query: q}
	if utf8.RuneCountInString(q) < minSearchLength {
		return empty
	}

	first := params.First
	if first == 0 {
		first = defaultSearchFirst
	}
	if first < 1 {
		first = 1
	}
	if first > maxSearchFirst {
		first = maxSearchFirst
	}

	sortKey, reverse := params.Sort.sortKey()
	if params.Reverse != nil {
		reverse = *params.Reverse
	}

	vars := map[string]interface{}{
		"query":   BuildSearchQuery(q),
		"first":   first,
		"sortKey": sortKey,
		"reverse": reverse,
	}
	if params.After != "" {
		vars["after"] = params.After
	}

	var primary searchResponse
	if err := c.Query(ctx, "ProductSearch", ProductSearchQuery, vars, &primary); err != nil {
		c.logger.Error("Product search failed for %q: %v", q, err)
		return empty
	}

	if len(primary.Products.Edges) == 0 {
		vars["query"] = fallbackSearchQuery(q)
		var fallback searchResponse
		if err := c.Query(ctx, "ProductSearchFallback", ProductSearchQuery, vars, &fallback); err != nil {
			c.logger.Warn("Fallback product search failed for %q: %v", q, err)
		} else if len(fallback.Products.Edges) > 0 {
			return fallback.result(q)
		}
	}
	return primary.result(q)
}

func (r *searchResponse) result(q string) *SearchResult {
	out := &SearchResult{Items: make([]ProductCard, 0, len(r.Products.Edges)), Query: q}
	for _, edge := range r.Products.Edges {
		if card, ok := toCard(edge.Node); ok {
			out.Items = append(out.Items, card)
		}
	}
	out.PageInfo = r.Products.PageInfo
	if out.PageInfo == nil {
		out.PageInfo = &PageInfo{}
	}
	return out
}

func sanitizeSearchTerm(term string) string {
	term = strings.ReplaceAll(term, `"`, `\"`)
	return strings.NewReplacer("(", "", ")", "").Replace(term)
}

// BuildSearchQuery expands a term into a Storefront search query matching
// title, tag, body and vendor with a few case variants.
func BuildSearchQuery(q string) string {
	term := strings.TrimSpace(q)
	if term == "" {
		return ""
	}

	safe := sanitizeSearchTerm(term)
	lower := strings.ToLower(safe)
	upper := strings.ToUpper(safe)
	titleCase := lower
	if r, size := utf8.DecodeRuneInString(safe); r != utf8.RuneError {
		titleCase = strings.ToUpper(string(r)) + strings.ToLower(safe[size:])
	}

	group := func(field string, variants ...string) string {
		parts := make([]string, len(variants))
		for i, v := range variants {
			parts[i] = fmt.Sprintf("%s:*%s*", field, v)
		}
		return "(" + strings.Join(parts, " OR ") + ")"
	}

	return strings.Join([]string{
		group("title", safe, lower, upper, titleCase),
		group("tag", safe, lower),
		group("body", safe, lower),
		group("vendor", safe, lower),
	}, " OR ")
}

func fallbackSearchQuery(q string) string {
	simple := sanitizeSearchTerm(q)
	return fmt.Sprintf("title:*%s* OR tag:*%s*", simple, simple)
}
