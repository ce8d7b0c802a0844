package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stride/internal/events"
	"stride/internal/logger"
	"stride/internal/services/storefront"
)

type SearchHandler struct {
	catalog   Catalog
	analytics Analytics
	publisher events.Publisher
	logger    *logger.Logger
}

func NewSearchHandler(catalog Catalog, analytics Analytics, publisher events.Publisher, logger *logger.Logger) *SearchHandler {
	return &SearchHandler{
		catalog:   catalog,
		analytics: analytics,
		publisher: publisher,
		logger:    logger,
	}
}

// Search runs a product search for ?q=, honouring ?sort= and ?cursor=.
func (h *SearchHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	sort := storefront.ParseSearchSort(c.Query("sort"))

	result := h.catalog.Search(c.Request.Context(), storefront.SearchParams{
		Query: q,
		Sort:  sort,
		After: c.Query("cursor"),
	})

	if result.PageInfo != nil {
		event, err := events.New(uuid.New().String(), events.TypeSearchPerformed, events.SearchPerformed{
			Term:        q,
			Sort:        string(sort),
			ResultCount: len(result.Items),
		}, time.Now().UTC())
		if err != nil {
			h.logger.Warn("Failed to build search event: %v", err)
		} else {
			publishAsync(h.publisher, h.logger, event)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"query":    result.Query,
			"sort":     sort,
			"items":    result.Items,
			"pageInfo": result.PageInfo,
		},
	})
}

// Popular lists the most searched terms.
func (h *SearchHandler) Popular(c *gin.Context) {
	terms, err := h.analytics.TopSearchTerms(c.Request.Context(), 10)
	if err != nil {
		h.logger.Error("Failed to load search terms: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch popular searches")
		return
	}

	out := make([]gin.H, 0, len(terms))
	for _, t := range terms {
		out = append(out, gin.H{"term": t.Term, "hits": t.Hits, "lastResultCount": t.LastResultCount})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}
