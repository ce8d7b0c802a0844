package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stride/internal/logger"
	"stride/internal/models"
	"stride/internal/services/storefront"
	"stride/internal/session"
)

type CartHandler struct {
	carts    Carts
	sessions Sessions
	logger   *logger.Logger
}

func NewCartHandler(carts Carts, sessions Sessions, logger *logger.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		sessions: sessions,
		logger:   logger,
	}
}

type AddLineRequest struct {
	VariantID string `json:"variantId"`
	Quantity  *int   `json:"quantity"`
}

type UpdateLineRequest struct {
	LineID   string `json:"lineId"`
	Quantity *int   `json:"quantity"`
}

// Get returns the session's cart, or null when there is none.
func (h *CartHandler) Get(c *gin.Context) {
	s := session.From(c)
	cart := h.currentCart(c.Request.Context(), c, s)
	c.JSON(http.StatusOK, gin.H{"data": cart})
}

// currentCart loads the session's cart. A cart the Storefront API no longer
// knows, or refuses to show, is forgotten.
func (h *CartHandler) currentCart(ctx context.Context, c *gin.Context, s *models.Session) *storefront.Cart {
	if s.CartID == nil || *s.CartID == "" {
		return nil
	}
	cart, err := h.carts.Cart(ctx, *s.CartID)
	if err == nil {
		return cart
	}
	if errors.Is(err, storefront.ErrNotFound) || storefront.IsAccessDenied(err) {
		s.CartID = nil
		if err := h.sessions.Save(c, s); err != nil {
			h.logger.Warn("Failed to forget cart: %v", err)
		}
		return nil
	}
	h.logger.Error("Failed to load cart %s: %v", *s.CartID, err)
	return nil
}

func (h *CartHandler) AddLine(c *gin.Context) {
	var req AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	req.VariantID = strings.TrimSpace(req.VariantID)
	if req.VariantID == "" {
		respondError(c, http.StatusBadRequest, "Variant ID is required")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 {
		respondError(c, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}

	s := session.From(c)
	lines := []storefront.LineInput{{MerchandiseID: req.VariantID, Quantity: quantity}}

	var (
		cart *storefront.Cart
		err  error
	)
	if s.CartID != nil && *s.CartID != "" {
		cart, err = h.carts.AddLines(c.Request.Context(), *s.CartID, lines)
		if err != nil && (errors.Is(err, storefront.ErrNotFound) || storefront.IsAccessDenied(err)) {
			cart, err = h.carts.CreateCart(c.Request.Context(), lines)
		}
	} else {
		cart, err = h.carts.CreateCart(c.Request.Context(), lines)
	}
	if err != nil {
		h.cartError(c, "add to cart", err)
		return
	}

	if s.CartID == nil || *s.CartID != cart.ID {
		id := cart.ID
		s.CartID = &id
		if err := h.sessions.Save(c, s); err != nil {
			h.logger.Error("Failed to save cart id: %v", err)
			respondError(c, http.StatusInternalServerError, "Failed to save cart")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": cart})
}

// UpdateLine sets a line's quantity; zero removes the line.
func (h *CartHandler) UpdateLine(c *gin.Context) {
	var req UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.LineID) == "" {
		respondError(c, http.StatusBadRequest, "Line ID is required")
		return
	}
	if req.Quantity == nil || *req.Quantity < 0 {
		respondError(c, http.StatusBadRequest, "Quantity must be zero or more")
		return
	}

	cartID, ok := h.requireCart(c)
	if !ok {
		return
	}

	cart, err := h.carts.UpdateLines(c.Request.Context(), cartID, []storefront.LineUpdate{
		{ID: req.LineID, Quantity: *req.Quantity},
	})
	if err != nil {
		h.cartError(c, "update cart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cart})
}

func (h *CartHandler) RemoveLine(c *gin.Context) {
	lineID := c.Param("lineId")
	if strings.TrimSpace(lineID) == "" {
		respondError(c, http.StatusBadRequest, "Line ID is required")
		return
	}

	cartID, ok := h.requireCart(c)
	if !ok {
		return
	}

	cart, err := h.carts.RemoveLines(c.Request.Context(), cartID, []string{lineID})
	if err != nil {
		h.cartError(c, "remove from cart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cart})
}

func (h *CartHandler) requireCart(c *gin.Context) (string, bool) {
	s := session.From(c)
	if s.CartID == nil || *s.CartID == "" {
		respondError(c, http.StatusBadRequest, "No cart found")
		return "", false
	}
	return *s.CartID, true
}

func (h *CartHandler) cartError(c *gin.Context, action string, err error) {
	if respondUserErrors(c, err) {
		return
	}
	if errors.Is(err, storefront.ErrNotFound) {
		respondError(c, http.StatusNotFound, "Cart not found")
		return
	}
	h.logger.Error("Failed to %s: %v", action, err)
	respondError(c, http.StatusBadGateway, "Failed to "+action)
}
