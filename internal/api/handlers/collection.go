package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stride/internal/events"
	"stride/internal/filters"
	"stride/internal/logger"
	"stride/internal/services/storefront"
)

type CollectionHandler struct {
	catalog   Catalog
	analytics Analytics
	publisher events.Publisher
	logger    *logger.Logger
	pageCount int
}

func NewCollectionHandler(catalog Catalog, analytics Analytics, publisher events.Publisher, logger *logger.Logger, pageCount int) *CollectionHandler {
	if pageCount <= 0 {
		pageCount = storefront.DefaultCollectionPageCount
	}
	return &CollectionHandler{
		catalog:   catalog,
		analytics: analytics,
		publisher: publisher,
		logger:    logger,
		pageCount: pageCount,
	}
}

type filterValueView struct {
	storefront.FacetValue
	Active    bool    `json:"active"`
	ToggleURL *string `json:"toggleUrl"`
}

type filterView struct {
	ID     string            `json:"id"`
	Label  string            `json:"label"`
	Type   string            `json:"type"`
	Values []filterValueView `json:"values"`
}

type sortOptionView struct {
	Value  filters.SortParam `json:"value"`
	Label  string            `json:"label"`
	Active bool              `json:"active"`
	URL    string            `json:"url"`
}

type viewOptionView struct {
	Value   filters.ViewMode `json:"value"`
	Label   string           `json:"label"`
	Columns int              `json:"columns"`
	Active  bool             `json:"active"`
	URL     string           `json:"url"`
}

type collectionView struct {
	Collection      collectionSummary        `json:"collection"`
	Products        []storefront.ProductCard `json:"products"`
	ProductsCount   int                      `json:"productsCount"`
	Filters         []filterView             `json:"filters"`
	AppliedFilters  []string                 `json:"appliedFilters"`
	Sort            sortView                 `json:"sort"`
	View            viewModeView             `json:"view"`
	ClearFiltersURL string                   `json:"clearFiltersUrl"`
	NextPageURL     *string                  `json:"nextPageUrl"`
	CanonicalURL    string                   `json:"canonicalUrl"`
	PageInfo        storefront.PageInfo      `json:"pageInfo"`
	Page            int                      `json:"page"`
}

type collectionSummary struct {
	ID          string  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Handle      string  `json:"handle"`
	Description *string `json:"description"`
	Found       bool    `json:"found"`
}

type sortView struct {
	filters.SortState
	Options []sortOptionView `json:"options"`
}

type viewModeView struct {
	Mode    filters.ViewMode `json:"mode"`
	Columns int              `json:"columns"`
	Options []viewOptionView `json:"options"`
}

// Show serves one page of a collection with the filter, sort and view state
// taken from the query string. Every URL in the response is built from the
// canonical form of that state.
func (h *CollectionHandler) Show(c *gin.Context) {
	handle := c.Param("handle")
	state := filters.Parse(c.Request.URL.Query())

	page, err := h.catalog.Collection(c.Request.Context(), storefront.CollectionParams{
		Handle:  handle,
		Filters: state.Filters,
		SortKey: state.Sort.SortKey,
		Reverse: state.Sort.Reverse,
		First:   h.pageCount,
		After:   state.Cursor,
	})
	if err != nil {
		h.logger.Error("Failed to load collection %s: %v", handle, err)
		respondError(c, http.StatusNotFound, "Collection not found")
		return
	}

	path := collectionPath(handle)
	canonical := state.Canonical()
	view := collectionView{
		Collection: collectionSummary{
			ID:          page.ID,
			Title:       page.Title,
			Handle:      page.Handle,
			Description: page.Description,
			Found:       page.Found,
		},
		Products:        page.Products,
		ProductsCount:   len(page.Products),
		Filters:         buildFilterViews(path, state, canonical, page.Facets),
		AppliedFilters:  filters.NormalizeFilterInputs(state.FilterInputs),
		Sort:            buildSortView(path, state, canonical),
		View:            buildViewModeView(path, state, canonical),
		ClearFiltersURL: pageURL(path, filters.ClearFilterParams(canonical)),
		CanonicalURL:    pageURL(path, canonical),
		PageInfo:        page.PageInfo,
		Page:            state.Page,
	}
	if page.PageInfo.HasNextPage && page.PageInfo.EndCursor != nil {
		next := pageURL(path, state.NextPage(*page.PageInfo.EndCursor))
		view.NextPageURL = &next
	}

	h.publishViewed(handle, state, len(page.Products))
	c.JSON(http.StatusOK, gin.H{"data": view})
}

// collectionPath is the storefront URL path of a collection. The handle
// arrives decoded from the route, so it is escaped again here.
func collectionPath(handle string) string {
	return "/collections/" + url.PathEscape(handle)
}

func buildFilterViews(path string, state filters.State, canonical url.Values, facets []storefront.Facet) []filterView {
	active := state.ActiveInputs()
	out := make([]filterView, 0, len(facets))
	for _, facet := range facets {
		fv := filterView{ID: facet.ID, Label: facet.Label, Type: facet.Type, Values: make([]filterValueView, 0, len(facet.Values))}
		for _, value := range facet.Values {
			vv := filterValueView{FacetValue: value}
			_, vv.Active = active[filters.NormalizeFilterInput(value.Input)]
			if decoded, ok := filters.DecodeFilter(value.Input); ok {
				u := pageURL(path, filters.ToggleFilterParam(canonical, decoded))
				vv.ToggleURL = &u
			}
			fv.Values = append(fv.Values, vv)
		}
		out = append(out, fv)
	}
	return out
}

func buildSortView(path string, state filters.State, canonical url.Values) sortView {
	sv := sortView{SortState: state.Sort, Options: make([]sortOptionView, 0, len(filters.SortParamValues))}
	for _, param := range filters.SortParamValues {
		sv.Options = append(sv.Options, sortOptionView{
			Value:  param,
			Label:  param.Label(),
			Active: param == state.Sort.Param,
			URL:    pageURL(path, filters.SetSortParam(canonical, param)),
		})
	}
	return sv
}

func buildViewModeView(path string, state filters.State, canonical url.Values) viewModeView {
	vv := viewModeView{Mode: state.View, Columns: state.View.Columns(), Options: make([]viewOptionView, 0, len(filters.ViewModeValues))}
	for _, mode := range filters.ViewModeValues {
		vv.Options = append(vv.Options, viewOptionView{
			Value:   mode,
			Label:   mode.Label(),
			Columns: mode.Columns(),
			Active:  mode == state.View,
			URL:     pageURL(path, filters.SetViewModeParam(canonical, mode)),
		})
	}
	return vv
}

func (h *CollectionHandler) publishViewed(handle string, state filters.State, count int) {
	event, err := events.New(uuid.New().String(), events.TypeCollectionViewed, events.CollectionViewed{
		Handle:        handle,
		FilterInputs:  state.FilterInputs,
		Sort:          string(state.Sort.Param),
		View:          string(state.View),
		Page:          state.Page,
		ProductsCount: count,
	}, time.Now().UTC())
	if err != nil {
		h.logger.Warn("Failed to build collection event: %v", err)
		return
	}
	publishAsync(h.publisher, h.logger, event)
}

// PopularFilters lists the filter inputs shoppers apply most on a
// collection.
func (h *CollectionHandler) PopularFilters(c *gin.Context) {
	handle := c.Param("handle")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 50 {
		respondError(c, http.StatusBadRequest, "limit must be between 1 and 50")
		return
	}

	stats, err := h.analytics.PopularFilters(c.Request.Context(), handle, limit)
	if err != nil {
		h.logger.Error("Failed to load popular filters for %s: %v", handle, err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch popular filters")
		return
	}

	path := collectionPath(handle)
	items := make([]gin.H, 0, len(stats))
	for _, s := range stats {
		item := gin.H{
			"input": s.FilterInput,
			"hits":  s.Hits,
		}
		if f, ok := filters.DecodeFilter(s.FilterInput); ok {
			item["url"] = pageURL(path, filters.ToggleFilterParam(nil, f))
		}
		items = append(items, item)
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}
