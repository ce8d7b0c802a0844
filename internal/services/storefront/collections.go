package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"stride/internal/filters"
)

const (
	DefaultCollectionPageCount = 24
	maxCollectionPageCount     = 250
)

// CollectionParams selects one page of a collection.
type CollectionParams struct {
	Handle  string
	Filters []filters.Filter
	SortKey string
	Reverse bool
	First   int
	After   string
}

type collectionPageResponse struct {
	Collection *struct {
		ID          string  `json:"id"`
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Products    struct {
			Filters  []Facet       `json:"filters"`
			Nodes    []*rawProduct `json:"nodes"`
			PageInfo PageInfo      `json:"pageInfo"`
		} `json:"products"`
	} `json:"collection"`
}

// Collection loads a page of products with the given filters and sort
// applied. An unknown handle yields a page titled after the handle with no
// products.
func (c *Client) Collection(ctx context.Context, params CollectionParams) (*CollectionPage, error) {
	if strings.TrimSpace(params.Handle) == "" {
		return nil, fmt.Errorf("collection handle is required")
	}

	first := params.First
	if first <= 0 {
		first = DefaultCollectionPageCount
	}
	if first > maxCollectionPageCount {
		first = maxCollectionPageCount
	}

	vars := map[string]interface{}{
		"handle":  params.Handle,
		"first":   first,
		"reverse": params.Reverse,
		"filters": filterVariables(params.Filters),
	}
	if params.SortKey != "" {
		vars["sortKey"] = params.SortKey
	}
	if params.After != "" {
		vars["after"] = params.After
	}

	var resp collectionPageResponse
	if err := c.Query(ctx, "CollectionPage", CollectionPageQuery, vars, &resp); err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", params.Handle, err)
	}

	page := &CollectionPage{
		Title:    TitleFromHandle(params.Handle),
		Handle:   params.Handle,
		Products: []ProductCard{},
		Facets:   []Facet{},
	}
	if resp.Collection == nil {
		return page, nil
	}

	page.Found = true
	page.ID = resp.Collection.ID
	page.Description = resp.Collection.Description
	if resp.Collection.Title != nil && *resp.Collection.Title != "" {
		page.Title = *resp.Collection.Title
	}
	page.Products = toCards(resp.Collection.Products.Nodes)
	if resp.Collection.Products.Filters != nil {
		page.Facets = resp.Collection.Products.Filters
	}
	page.PageInfo = resp.Collection.Products.PageInfo
	return page, nil
}

// filterVariables passes decoded filters through as ProductFilter inputs.
func filterVariables(in []filters.Filter) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(in))
	for _, f := range in {
		out = append(out, map[string]interface{}(f))
	}
	return out
}

type collectionNode struct {
	ID     *string `json:"id"`
	Title  *string `json:"title"`
	Handle *string `json:"handle"`
}

// CollectionsByHandles resolves navigation entries for the given handles in a
// single aliased query. Missing collections are omitted and failures are
// logged, yielding an empty map.
func (c *Client) CollectionsByHandles(ctx context.Context, handles []string) map[string]NavigationItem {
	unique := make([]string, 0, len(handles))
	seen := make(map[string]bool, len(handles))
	for _, h := range handles {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		unique = append(unique, h)
	}

	result := make(map[string]NavigationItem, len(unique))
	if len(unique) == 0 {
		return result
	}

	var b strings.Builder
	b.WriteString("query CollectionsByHandle {\n")
	for i, h := range unique {
		quoted, _ := json.Marshal(h)
		fmt.Fprintf(&b, "  collection_%d: collection(handle: %s) { id title handle description }\n", i, quoted)
	}
	b.WriteString("}\n")

	var resp map[string]*collectionNode
	if err := c.Query(ctx, "CollectionsByHandle", b.String(), nil, &resp); err != nil {
		c.logger.Error("Failed to load navigation collections: %v", err)
		return result
	}

	for i, h := range unique {
		node := resp[fmt.Sprintf("collection_%d", i)]
		if node == nil || isBlank(node.ID) || isBlank(node.Handle) {
			continue
		}
		title := h
		if node.Title != nil {
			title = *node.Title
		}
		result[h] = NavigationItem{
			Title:  title,
			Handle: *node.Handle,
			URL:    "/collections/" + url.PathEscape(*node.Handle),
		}
	}
	return result
}
