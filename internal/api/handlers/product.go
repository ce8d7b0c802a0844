package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stride/internal/logger"
	"stride/internal/services/storefront"
	"stride/internal/session"
)

type ProductHandler struct {
	catalog  Catalog
	sessions Sessions
	logger   *logger.Logger
}

func NewProductHandler(catalog Catalog, sessions Sessions, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{
		catalog:  catalog,
		sessions: sessions,
		logger:   logger,
	}
}

// Get serves a product page and remembers the handle in the visitor's
// recently viewed list.
func (h *ProductHandler) Get(c *gin.Context) {
	handle := c.Param("handle")

	product, err := h.catalog.Product(c.Request.Context(), handle)
	if err != nil {
		if errors.Is(err, storefront.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("Failed to load product %s: %v", handle, err)
		respondError(c, http.StatusBadGateway, "Failed to fetch product")
		return
	}

	s := session.From(c)
	recent := make([]string, 0, len(s.RecentlyViewed))
	for _, viewed := range s.RecentlyViewed {
		if viewed != product.Handle {
			recent = append(recent, viewed)
		}
	}

	s.Viewed(product.Handle)
	if err := h.sessions.Save(c, s); err != nil {
		h.logger.Warn("Failed to record recently viewed %s: %v", product.Handle, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"product":        product,
			"recentlyViewed": recent,
		},
	})
}
