package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"stride/internal/database"
	"stride/internal/events"
	"stride/internal/logger"
	"stride/internal/models"
	"stride/internal/services/storefront"
	"stride/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCatalog struct {
	mu             sync.Mutex
	collection     *storefront.CollectionPage
	collectionErr  error
	lastCollection storefront.CollectionParams
	navigation     map[string]storefront.NavigationItem
	products       map[string]*storefront.Product
	search         *storefront.SearchResult
	lastSearch     storefront.SearchParams
	homepage       *storefront.Homepage
}

func (f *fakeCatalog) Collection(_ context.Context, params storefront.CollectionParams) (*storefront.CollectionPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCollection = params
	return f.collection, f.collectionErr
}

func (f *fakeCatalog) CollectionsByHandles(_ context.Context, _ []string) map[string]storefront.NavigationItem {
	if f.navigation == nil {
		return map[string]storefront.NavigationItem{}
	}
	return f.navigation
}

func (f *fakeCatalog) Product(_ context.Context, handle string) (*storefront.Product, error) {
	if p, ok := f.products[handle]; ok {
		return p, nil
	}
	return nil, storefront.ErrNotFound
}

func (f *fakeCatalog) Search(_ context.Context, params storefront.SearchParams) *storefront.SearchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSearch = params
	if f.search == nil {
		return &storefront.SearchResult{Items: []storefront.ProductCard{}, Query: params.Query}
	}
	return f.search
}

func (f *fakeCatalog) Homepage(context.Context, storefront.HomepageParams) *storefront.Homepage {
	if f.homepage == nil {
		return &storefront.Homepage{Products: []storefront.ProductCard{}, FeaturedProducts: []storefront.ProductCard{}}
	}
	return f.homepage
}

func (f *fakeCatalog) Shop(context.Context) *storefront.Shop {
	return &storefront.Shop{Name: "Stride", Description: "Running gear"}
}

// fakeCarts keeps carts in memory, keyed by id.
type fakeCarts struct {
	mu      sync.Mutex
	carts   map[string]*storefront.Cart
	next    int
	readErr error
	addErr  error
	readCtx context.Context
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: map[string]*storefront.Cart{}}
}

func (f *fakeCarts) Cart(ctx context.Context, id string) (*storefront.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readCtx = ctx
	if f.readErr != nil {
		return nil, f.readErr
	}
	if c, ok := f.carts[id]; ok {
		return c, nil
	}
	return nil, storefront.ErrNotFound
}

func (f *fakeCarts) CreateCart(_ context.Context, lines []storefront.LineInput) (*storefront.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	c := &storefront.Cart{ID: fmt.Sprintf("gid://shopify/Cart/%d", f.next)}
	f.carts[c.ID] = c
	f.add(c, lines)
	return c, nil
}

func (f *fakeCarts) AddLines(_ context.Context, id string, lines []storefront.LineInput) (*storefront.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return nil, f.addErr
	}
	c, ok := f.carts[id]
	if !ok {
		return nil, storefront.ErrNotFound
	}
	f.add(c, lines)
	return c, nil
}

func (f *fakeCarts) add(c *storefront.Cart, lines []storefront.LineInput) {
	for _, l := range lines {
		c.Lines = append(c.Lines, storefront.CartLine{
			ID:        fmt.Sprintf("line-%d", len(c.Lines)+1),
			VariantID: l.MerchandiseID,
			Quantity:  l.Quantity,
		})
		c.TotalQuantity += l.Quantity
	}
}

func (f *fakeCarts) UpdateLines(_ context.Context, id string, lines []storefront.LineUpdate) (*storefront.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[id]
	if !ok {
		return nil, storefront.ErrNotFound
	}
	for _, u := range lines {
		for i := range c.Lines {
			if c.Lines[i].ID == u.ID {
				c.TotalQuantity += u.Quantity - c.Lines[i].Quantity
				c.Lines[i].Quantity = u.Quantity
			}
		}
	}
	return c, nil
}

func (f *fakeCarts) RemoveLines(_ context.Context, id string, lineIDs []string) (*storefront.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[id]
	if !ok {
		return nil, storefront.ErrNotFound
	}
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if l.ID == lineIDs[0] {
			c.TotalQuantity -= l.Quantity
			continue
		}
		kept = append(kept, l)
	}
	c.Lines = kept
	return c, nil
}

type fakeCustomers struct {
	password    string
	tokens      map[string]string
	expiresAt   string
	created     []storefront.CustomerInput
	renewed     int
	deleted     []string
	recoverErr  error
	customerErr error
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{
		password:  "correct-horse",
		tokens:    map[string]string{},
		expiresAt: time.Now().Add(30 * 24 * time.Hour).UTC().Format(time.RFC3339),
	}
}

func (f *fakeCustomers) CreateAccessToken(_ context.Context, email, password string) (*storefront.CustomerAccessToken, error) {
	if password != f.password {
		return nil, storefront.UserErrors{{Code: "INVALID_CREDENTIALS", Message: "Unidentified customer"}}
	}
	token := "token-" + email
	f.tokens[token] = email
	return &storefront.CustomerAccessToken{AccessToken: token, ExpiresAt: f.expiresAt}, nil
}

func (f *fakeCustomers) DeleteAccessToken(_ context.Context, token string) error {
	f.deleted = append(f.deleted, token)
	delete(f.tokens, token)
	return nil
}

func (f *fakeCustomers) RenewAccessToken(_ context.Context, token string) (*storefront.CustomerAccessToken, error) {
	f.renewed++
	email := f.tokens[token]
	renewed := token + "-renewed"
	f.tokens[renewed] = email
	return &storefront.CustomerAccessToken{
		AccessToken: renewed,
		ExpiresAt:   time.Now().Add(30 * 24 * time.Hour).UTC().Format(time.RFC3339),
	}, nil
}

func (f *fakeCustomers) CreateCustomer(_ context.Context, input storefront.CustomerInput) (*storefront.Customer, error) {
	for _, c := range f.created {
		if c.Email == input.Email {
			return nil, storefront.UserErrors{{Code: "TAKEN", Field: []string{"input", "email"}, Message: "Email has already been taken"}}
		}
	}
	f.created = append(f.created, input)
	f.password = input.Password
	email := input.Email
	return &storefront.Customer{ID: "gid://shopify/Customer/1", Email: &email, Orders: []storefront.Order{}}, nil
}

func (f *fakeCustomers) RecoverCustomer(context.Context, string) error {
	return f.recoverErr
}

func (f *fakeCustomers) UpdateCustomer(_ context.Context, token string, input storefront.CustomerInput) (*storefront.Customer, error) {
	c, err := f.Customer(context.Background(), token)
	if err != nil {
		return nil, err
	}
	if input.FirstName != "" {
		c.FirstName = &input.FirstName
	}
	return c, nil
}

func (f *fakeCustomers) Customer(_ context.Context, token string) (*storefront.Customer, error) {
	if f.customerErr != nil {
		return nil, f.customerErr
	}
	email, ok := f.tokens[token]
	if !ok {
		return nil, storefront.ErrNotFound
	}
	return &storefront.Customer{
		ID:    "gid://shopify/Customer/1",
		Email: &email,
		Orders: []storefront.Order{
			{ID: "gid://shopify/Order/1", OrderNumber: 1001, TotalPrice: "120.00 USD"},
		},
	}, nil
}

type fakeAnalytics struct {
	filters []models.FilterStat
	terms   []models.SearchTerm
}

func (f *fakeAnalytics) PopularFilters(context.Context, string, int) ([]models.FilterStat, error) {
	return f.filters, nil
}

func (f *fakeAnalytics) TopSearchTerms(context.Context, int) ([]models.SearchTerm, error) {
	return f.terms, nil
}

type testEnv struct {
	router    *gin.Engine
	catalog   *fakeCatalog
	carts     *fakeCarts
	customers *fakeCustomers
	analytics *fakeAnalytics
	events    *events.Recorder
	accounts  *AccountHandler
	cookies   []*http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.New(fmt.Sprintf("sqlite://file:%s?mode=memory&cache=shared", name), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logger.Nop()
	env := &testEnv{
		catalog:   &fakeCatalog{products: map[string]*storefront.Product{}},
		carts:     newFakeCarts(),
		customers: newFakeCustomers(),
		analytics: &fakeAnalytics{},
		events:    &events.Recorder{},
	}
	sessions := session.NewManager(db.DB, "test-secret", time.Hour, false, log)

	cartHandler := NewCartHandler(env.carts, sessions, log)
	layoutHandler := NewLayoutHandler(env.catalog, cartHandler, storefront.HomepageParams{}, log)
	collectionHandler := NewCollectionHandler(env.catalog, env.analytics, env.events, log, 0)
	productHandler := NewProductHandler(env.catalog, sessions, log)
	searchHandler := NewSearchHandler(env.catalog, env.analytics, env.events, log)
	env.accounts = NewAccountHandler(env.customers, sessions, log)
	healthHandler := NewHealthHandler(db, log)

	r := gin.New()
	r.GET("/health", healthHandler.Health)
	v1 := r.Group("/api/v1", sessions.Middleware())
	v1.GET("/layout", layoutHandler.Layout)
	v1.GET("/home", layoutHandler.Home)
	v1.GET("/navigation", layoutHandler.Navigation)
	v1.GET("/collections/:handle", collectionHandler.Show)
	v1.GET("/collections/:handle/popular-filters", collectionHandler.PopularFilters)
	v1.GET("/products/:handle", productHandler.Get)
	v1.GET("/search", searchHandler.Search)
	v1.GET("/search/popular", searchHandler.Popular)
	v1.GET("/cart", cartHandler.Get)
	v1.POST("/cart/lines", cartHandler.AddLine)
	v1.PATCH("/cart/lines", cartHandler.UpdateLine)
	v1.DELETE("/cart/lines/:lineId", cartHandler.RemoveLine)
	v1.GET("/account", env.accounts.Get)
	v1.PATCH("/account", env.accounts.Update)
	v1.POST("/account/login", env.accounts.Login)
	v1.POST("/account/register", env.accounts.Register)
	v1.POST("/account/recover", env.accounts.Recover)
	v1.POST("/account/logout", env.accounts.Logout)

	env.router = r
	return env
}

// do sends a request carrying the cookies set by earlier responses, the way
// a browser would.
func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range e.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name != session.CookieName {
			continue
		}
		if c.MaxAge < 0 {
			e.cookies = nil
		} else {
			e.cookies = []*http.Cookie{c}
		}
	}
	return w
}
