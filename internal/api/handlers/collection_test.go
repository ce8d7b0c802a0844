package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"stride/internal/events"
	"stride/internal/filters"
	"stride/internal/models"
	"stride/internal/services/storefront"
)

func trailRunningPage() *storefront.CollectionPage {
	cursor := "cursor-24"
	return &storefront.CollectionPage{
		ID:     "gid://shopify/Collection/1",
		Title:  "Trail Running",
		Handle: "trail-running",
		Found:  true,
		Products: []storefront.ProductCard{
			{ID: "gid://shopify/Product/1", Title: "Ridge Runner", Handle: "ridge-runner"},
		},
		Facets: []storefront.Facet{
			{
				ID:    "filter.p.vendor",
				Label: "Brand",
				Type:  "LIST",
				Values: []storefront.FacetValue{
					{ID: "v1", Label: "Stride", Count: 4, Input: `{"productVendor":"Stride"}`},
					{ID: "v2", Label: "Summit", Count: 2, Input: `{"productVendor":"Summit"}`},
				},
			},
		},
		PageInfo: storefront.PageInfo{HasNextPage: true, EndCursor: &cursor},
	}
}

func TestCollectionShow(t *testing.T) {
	env := newTestEnv(t)
	env.catalog.collection = trailRunningPage()

	q := url.Values{}
	q.Add("filter", `{ "productVendor": "Stride" }`)
	q.Set("sort", "price-desc")
	w := env.do(http.MethodGet, "/api/v1/collections/trail-running?"+q.Encode(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	params := env.catalog.lastCollection
	assert.Equal(t, "trail-running", params.Handle)
	assert.Equal(t, filters.SortKeyPrice, params.SortKey)
	assert.True(t, params.Reverse)
	assert.Equal(t, storefront.DefaultCollectionPageCount, params.First)
	require.Len(t, params.Filters, 1)

	assert.Equal(t, int64(1), gjson.Get(body, "data.productsCount").Int())
	assert.True(t, gjson.Get(body, "data.filters.0.values.0.active").Bool())
	assert.False(t, gjson.Get(body, "data.filters.0.values.1.active").Bool())
	assert.Equal(t, "/collections/trail-running?sort=price-desc", gjson.Get(body, "data.filters.0.values.0.toggleUrl").String())
	assert.Contains(t, gjson.Get(body, "data.filters.0.values.1.toggleUrl").String(), "Summit")
	assert.Equal(t, "/collections/trail-running?sort=price-desc", gjson.Get(body, "data.clearFiltersUrl").String())
	assert.Equal(t, []interface{}{`{"productVendor":"Stride"}`}, gjson.Get(body, "data.appliedFilters").Value())
	assert.Equal(t, "price-desc", gjson.Get(body, "data.sort.param").String())
	assert.Contains(t, gjson.Get(body, "data.nextPageUrl").String(), "cursor=cursor-24")
	assert.Equal(t, int64(3), gjson.Get(body, "data.view.columns").Int())

	for _, opt := range gjson.Get(body, "data.sort.options").Array() {
		if opt.Get("value").String() == "collection-default" {
			assert.NotContains(t, opt.Get("url").String(), "sort=")
		}
	}

	require.Eventually(t, func() bool { return len(env.events.Events()) == 1 }, time.Second, 10*time.Millisecond)
	event := env.events.Events()[0]
	assert.Equal(t, events.TypeCollectionViewed, event.Type)
	var payload events.CollectionViewed
	require.NoError(t, event.Decode(&payload))
	assert.Equal(t, "trail-running", payload.Handle)
	assert.Equal(t, 1, payload.ProductsCount)
}

func TestCollectionShow_Error(t *testing.T) {
	env := newTestEnv(t)
	env.catalog.collectionErr = errors.New("boom")

	w := env.do(http.MethodGet, "/api/v1/collections/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Collection not found"}`, w.Body.String())
}

func TestPopularFilters(t *testing.T) {
	env := newTestEnv(t)
	env.analytics.filters = []models.FilterStat{
		{CollectionHandle: "trail-running", FilterInput: `{"productVendor":"Stride"}`, Hits: 7},
	}

	w := env.do(http.MethodGet, "/api/v1/collections/trail-running/popular-filters", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), gjson.Get(w.Body.String(), "data.0.hits").Int())
	assert.Contains(t, gjson.Get(w.Body.String(), "data.0.url").String(), "/collections/trail-running?filter=")

	w = env.do(http.MethodGet, "/api/v1/collections/trail-running/popular-filters?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCollectionShow_EscapesHandleInURLs(t *testing.T) {
	env := newTestEnv(t)
	page := trailRunningPage()
	page.Handle = "a?b&c"
	env.catalog.collection = page

	w := env.do(http.MethodGet, "/api/v1/collections/a%3Fb%26c?sort=price-desc", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a?b&c", env.catalog.lastCollection.Handle)

	body := w.Body.String()
	for _, path := range []string{"data.canonicalUrl", "data.clearFiltersUrl", "data.nextPageUrl", "data.filters.0.values.0.toggleUrl"} {
		u, err := url.Parse(gjson.Get(body, path).String())
		require.NoError(t, err, path)
		assert.Equal(t, "/collections/a?b&c", u.Path, path)
		assert.Equal(t, "price-desc", u.Query().Get("sort"), path)
	}
	assert.Equal(t, "/collections/a%3Fb&c?sort=price-desc", gjson.Get(body, "data.canonicalUrl").String())
}
