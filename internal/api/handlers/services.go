package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"stride/internal/events"
	"stride/internal/logger"
	"stride/internal/models"
	"stride/internal/services/storefront"
)

// Catalog is the read side of the Storefront API.
type Catalog interface {
	Collection(ctx context.Context, params storefront.CollectionParams) (*storefront.CollectionPage, error)
	CollectionsByHandles(ctx context.Context, handles []string) map[string]storefront.NavigationItem
	Product(ctx context.Context, handle string) (*storefront.Product, error)
	Search(ctx context.Context, params storefront.SearchParams) *storefront.SearchResult
	Homepage(ctx context.Context, params storefront.HomepageParams) *storefront.Homepage
	Shop(ctx context.Context) *storefront.Shop
}

type Carts interface {
	Cart(ctx context.Context, cartID string) (*storefront.Cart, error)
	CreateCart(ctx context.Context, lines []storefront.LineInput) (*storefront.Cart, error)
	AddLines(ctx context.Context, cartID string, lines []storefront.LineInput) (*storefront.Cart, error)
	UpdateLines(ctx context.Context, cartID string, lines []storefront.LineUpdate) (*storefront.Cart, error)
	RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*storefront.Cart, error)
}

type Customers interface {
	CreateAccessToken(ctx context.Context, email, password string) (*storefront.CustomerAccessToken, error)
	DeleteAccessToken(ctx context.Context, token string) error
	RenewAccessToken(ctx context.Context, token string) (*storefront.CustomerAccessToken, error)
	CreateCustomer(ctx context.Context, input storefront.CustomerInput) (*storefront.Customer, error)
	RecoverCustomer(ctx context.Context, email string) error
	UpdateCustomer(ctx context.Context, token string, input storefront.CustomerInput) (*storefront.Customer, error)
	Customer(ctx context.Context, token string) (*storefront.Customer, error)
}

// Sessions persists the per-visitor session loaded by the session middleware.
type Sessions interface {
	Save(c *gin.Context, s *models.Session) error
	Destroy(c *gin.Context, s *models.Session) error
}

// Analytics reads what the worker aggregated from storefront events.
type Analytics interface {
	PopularFilters(ctx context.Context, collectionHandle string, limit int) ([]models.FilterStat, error)
	TopSearchTerms(ctx context.Context, limit int) ([]models.SearchTerm, error)
}

// Pinger is satisfied by the database for health checks.
type Pinger interface {
	Ping() error
}

const publishTimeout = 5 * time.Second

// publishAsync sends an event without holding up the response.
func publishAsync(publisher events.Publisher, log *logger.Logger, event events.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := publisher.Publish(ctx, event); err != nil {
			log.Warn("Failed to publish %s: %v", event.Type, err)
		}
	}()
}
