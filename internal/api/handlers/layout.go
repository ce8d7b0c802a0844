package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"stride/internal/logger"
	"stride/internal/services/storefront"
	"stride/internal/session"
)

type LinkType string

const (
	LinkCollection LinkType = "collection"
	LinkStatic     LinkType = "static"
	LinkComingSoon LinkType = "comingSoon"
)

type SiteLink struct {
	Type   LinkType `json:"type"`
	Title  string   `json:"title"`
	Handle string   `json:"handle,omitempty"`
	URL    string   `json:"url,omitempty"`
}

var NavLinks = []SiteLink{
	{Type: LinkCollection, Handle: "trail-running", Title: "Trail Running"},
	{Type: LinkCollection, Handle: "road-running", Title: "Road Running"},
	{Type: LinkCollection, Handle: "ultralight", Title: "Ultralight"},
	{Type: LinkStatic, Title: "Run Club", URL: "/run-club", Handle: "run-club"},
	{Type: LinkComingSoon, Title: "Blog", Handle: "blog", URL: "/blog"},
}

var FooterLinks = []SiteLink{
	{Type: LinkStatic, Title: "FAQ", URL: "/faq", Handle: "faq"},
	{Type: LinkStatic, Title: "Careers", URL: "/careers", Handle: "careers"},
	{Type: LinkStatic, Title: "Run Club", URL: "/run-club", Handle: "run-club"},
	{Type: LinkComingSoon, Title: "Blog", Handle: "blog", URL: "/blog"},
	{Type: LinkComingSoon, Title: "Sustainability", Handle: "sustainability", URL: "/sustainability"},
}

type Navigation struct {
	Header []SiteLink `json:"header"`
	Footer []SiteLink `json:"footer"`
}

type LayoutHandler struct {
	catalog Catalog
	carts   *CartHandler
	home    storefront.HomepageParams
	logger  *logger.Logger
}

func NewLayoutHandler(catalog Catalog, carts *CartHandler, home storefront.HomepageParams, logger *logger.Logger) *LayoutHandler {
	return &LayoutHandler{
		catalog: catalog,
		carts:   carts,
		home:    home,
		logger:  logger,
	}
}

// Layout loads everything the page chrome needs. The shop, navigation and
// cart lookups run concurrently; each degrades on its own rather than
// failing the request.
func (h *LayoutHandler) Layout(c *gin.Context) {
	s := session.From(c)

	var (
		shop *storefront.Shop
		nav  Navigation
		cart *storefront.Cart
	)

	// Every lookup degrades instead of failing, so the group is only used
	// to wait for all three.
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		shop = h.catalog.Shop(ctx)
		return nil
	})
	g.Go(func() error {
		nav = h.navigation(ctx)
		return nil
	})
	g.Go(func() error {
		cart = h.carts.currentCart(ctx, c, s)
		return nil
	})
	g.Wait()

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"shop":       shop,
			"navigation": nav,
			"cart":       cart,
			"isLoggedIn": s.IsLoggedIn(),
		},
	})
}

func (h *LayoutHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.catalog.Homepage(c.Request.Context(), h.home)})
}

func (h *LayoutHandler) Navigation(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.navigation(c.Request.Context())})
}

// navigation resolves collection links against the Storefront API. A
// collection that cannot be found keeps its configured title and points at
// its collection page.
func (h *LayoutHandler) navigation(ctx context.Context) Navigation {
	var handles []string
	for _, links := range [][]SiteLink{NavLinks, FooterLinks} {
		for _, l := range links {
			if l.Type == LinkCollection {
				handles = append(handles, l.Handle)
			}
		}
	}

	found := h.catalog.CollectionsByHandles(ctx, handles)
	return Navigation{
		Header: resolveLinks(NavLinks, found),
		Footer: resolveLinks(FooterLinks, found),
	}
}

func resolveLinks(links []SiteLink, found map[string]storefront.NavigationItem) []SiteLink {
	out := make([]SiteLink, 0, len(links))
	for _, l := range links {
		if l.Type == LinkCollection {
			if item, ok := found[l.Handle]; ok {
				l.Title = item.Title
				l.URL = item.URL
			} else {
				l.URL = collectionPath(l.Handle)
			}
		}
		out = append(out, l)
	}
	return out
}
