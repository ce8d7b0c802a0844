package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stride/internal/filters"
)

const collectionPayload = `{"data":{"collection":{
  "id":"gid://shopify/Collection/1",
  "title":"Trail Running",
  "description":"Shoes for the dirt.",
  "products":{
    "filters":[{"id":"filter.v.availability","label":"Availability","type":"LIST","values":[
      {"id":"filter.v.availability.1","label":"In stock","count":4,"input":"{\"available\":true}"}
    ]}],
    "nodes":[
      {"id":"gid://shopify/Product/1","title":"Ridge Runner","handle":"ridge-runner","description":"Grippy.",
       "images":{"nodes":[{"url":"https://cdn.example/ridge.jpg","altText":null}]},
       "variants":{"nodes":[{"price":{"amount":"129.0","currencyCode":"USD"}}]}},
      {"id":null,"title":"Broken","handle":"broken"},
      {"id":"gid://shopify/Product/3","title":null,"handle":"mystery","images":{"nodes":[]},"variants":{"nodes":[]}}
    ],
    "pageInfo":{"hasNextPage":true,"hasPreviousPage":false,"endCursor":"c2","startCursor":"c1"}
  }
}}}`

func TestCollection_ProjectsProducts(t *testing.T) {
	c, _ := newTestClient(t, func(t *testing.T, req graphQLRequest) (int, string) {
		assert.Equal(t, "trail-running", req.Variables["handle"])
		assert.Equal(t, float64(24), req.Variables["first"])
		assert.Equal(t, "PRICE", req.Variables["sortKey"])
		assert.Equal(t, true, req.Variables["reverse"])
		assert.Equal(t, "c1", req.Variables["after"])
		assert.Len(t, req.Variables["filters"], 1)
		return http.StatusOK, collectionPayload
	})

	page, err := c.Collection(context.Background(), CollectionParams{
		Handle:  "trail-running",
		Filters: []filters.Filter{{"available": true}},
		SortKey: filters.SortKeyPrice,
		Reverse: true,
		After:   "c1",
	})
	require.NoError(t, err)

	assert.True(t, page.Found)
	assert.Equal(t, "Trail Running", page.Title)
	require.Len(t, page.Products, 2)

	assert.Equal(t, "Ridge Runner", page.Products[0].Title)
	require.NotNil(t, page.Products[0].ImageURL)
	assert.Equal(t, "https://cdn.example/ridge.jpg", *page.Products[0].ImageURL)
	require.NotNil(t, page.Products[0].Price)
	assert.Equal(t, "$129.00", page.Products[0].Price.Display())

	assert.Equal(t, "Untitled Product", page.Products[1].Title)
	assert.Nil(t, page.Products[1].ImageURL)
	assert.Nil(t, page.Products[1].Price)

	require.Len(t, page.Facets, 1)
	assert.Equal(t, `{"available":true}`, page.Facets[0].Values[0].Input)
	assert.True(t, page.PageInfo.HasNextPage)
}

func TestCollection_UnknownHandle(t *testing.T) {
	c, _ := newTestClient(t, func(t *testing.T, req graphQLRequest) (int, string) {
		return http.StatusOK, `{"data":{"collection":null}}`
	})

	page, err := c.Collection(context.Background(), CollectionParams{Handle: "road-racing-flats"})
	require.NoError(t, err)
	assert.False(t, page.Found)
	assert.Equal(t, "Road Racing Flats", page.Title)
	assert.Empty(t, page.Products)
	assert.NotNil(t, page.Products)
}

func TestCollectionsByHandles(t *testing.T) {
	c, _ := newTestClient(t, func(t *testing.T, req graphQLRequest) (int, string) {
		assert.Contains(t, req.Query, `collection_0: collection(handle: "trail")`)
		assert.Contains(t, req.Query, `collection_1: collection(handle: "road")`)
		assert.NotContains(t, req.Query, "collection_2")
		return http.StatusOK, `{"data":{
		  "collection_0":{"id":"gid://shopify/Collection/1","title":"Trail","handle":"trail"},
		  "collection_1":null}}`
	})

	nav := c.CollectionsByHandles(context.Background(), []string{" trail ", "road", "trail", ""})
	require.Len(t, nav, 1)
	assert.Equal(t, NavigationItem{Title: "Trail", Handle: "trail", URL: "/collections/trail"}, nav["trail"])
}

func TestCollectionsByHandles_EscapesURL(t *testing.T) {
	c, _ := newTestClient(t, func(t *testing.T, req graphQLRequest) (int, string) {
		return http.StatusOK, `{"data":{
		  "collection_0":{"id":"gid://shopify/Collection/9","title":"Sale","handle":"sale?a&b"}}}`
	})

	nav := c.CollectionsByHandles(context.Background(), []string{"sale?a&b"})
	assert.Equal(t, "/collections/sale%3Fa&b", nav["sale?a&b"].URL)
}

func TestCollectionsByHandles_ErrorYieldsEmpty(t *testing.T) {
	c, _ := newTestClient(t, func(t *testing.T, req graphQLRequest) (int, string) {
		return http.StatusBadGateway, ``
	})

	assert.Empty(t, c.CollectionsByHandles(context.Background(), []string{"trail"}))
}

func TestProduct_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(t *testing.T, req graphQLRequest) (int, string) {
		return http.StatusOK, `{"data":{"product":null}}`
	})

	_, err := c.Product(context.Background(), "ghost")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestProduct_Normalizes(t *testing.T) {
	c, _ := newTestClient(t, func(t *testing.T, req graphQLRequest) (int, string) {
		return http.StatusOK, `{"data":{"product":{
		  "id":"gid://shopify/Product/1","title":"Ridge Runner","handle":"ridge-runner",
		  "featuredImage":null,
		  "images":{"nodes":[{"url":"https://cdn.example/a.jpg","altText":"side"},{"url":null}]},
		  "options":[{"name":" Size ","values":["9"," 10 ",""]},{"name":"","values":["x"]}],
		  "variants":{"nodes":[
		    {"id":"v1","title":"9","availableForSale":true,"price":{"amount":"129.00","currencyCode":"USD"},
		     "selectedOptions":[{"name":"Size","value":"9"}]},
		    {"id":"v2","title":"10","availableForSale":false,"price":null}
		  ]}}}}`
	})

	p, err := c.Product(context.Background(), "ridge-runner")
	require.NoError(t, err)
	assert.Len(t, p.Gallery, 1)
	require.NotNil(t, p.ImageURL)
	assert.Equal(t, "https://cdn.example/a.jpg", *p.ImageURL)
	assert.Equal(t, []ProductOption{{Name: "Size", Values: []string{"9", "10"}}}, p.Options)
	require.Len(t, p.Variants, 1)
	assert.True(t, p.Available)
	assert.Equal(t, "129.00", p.Price.Amount)
}

func TestSearch_ShortTermSkipsAPI(t *testing.T) {
	c, calls := newTestClient(t, func(t *testing.T, req graphQLRequest) (int, string) {
		return http.StatusOK, `{}`
	})

	res := c.Search(context.Background(), SearchParams{Query: " a "})
	assert.Empty(t, res.Items)
	assert.Nil(t, res.PageInfo)
	assert.Equal(t, "a", res.Query)
	assert.Zero(t, *calls)
}

func TestSearch_FallsBackWhenNoEdges(t *testing.T) {
	var queries []string
	c, _ := newTestClient(t, func(t *testing.T, req graphQLRequest) (int, string) {
		q := req.Variables["query"].(string)
		queries = append(queries, q)
		assert.Equal(t, float64(24), req.Variables["first"])
		assert.Equal(t, "CREATED", req.Variables["sortKey"])
		assert.Equal(t, true, req.Variables["reverse"])
		if strings.HasPrefix(q, "(") {
			return http.StatusOK, `{"data":{"products":{"edges":[],"pageInfo":{"hasNextPage":false}}}}`
		}
		return http.StatusOK, `{"data":{"products":{"edges":[{"cursor":"x","node":{
		  "id":"gid://shopify/Product/9","title":"Trail Sock","handle":"trail-sock",
		  "featuredImage":{"url":"https://cdn.example/sock.jpg"},
		  "variants":{"nodes":[{"price":{"amount":"18.00","currencyCode":"USD"}}]}}}],
		  "pageInfo":{"hasNextPage":false}}}}`
	})

	res := c.Search(context.Background(), SearchParams{Query: "sock", First: 100, Sort: SearchCreated})
	require.Len(t, queries, 2)
	assert.Equal(t, "title:*sock* OR tag:*sock*", queries[1])
	require.Len(t, res.Items, 1)
	assert.Equal(t, "trail-sock", res.Items[0].Handle)
	assert.Equal(t, "https://cdn.example/sock.jpg", *res.Items[0].ImageURL)
	assert.NotNil(t, res.PageInfo)
}

func TestSearch_ErrorYieldsEmpty(t *testing.T) {
	c, _ := newTestClient(t, func(t *testing.T, req graphQLRequest) (int, string) {
		return http.StatusInternalServerError, `boom`
	})

	res := c.Search(context.Background(), SearchParams{Query: "shoes"})
	assert.Empty(t, res.Items)
	assert.Nil(t, res.PageInfo)
}

func TestBuildSearchQuery(t *testing.T) {
	q := BuildSearchQuery(` tRail "x" (y) `)
	assert.Equal(t,
		`(title:*tRail \"x\" y* OR title:*trail \"x\" y* OR title:*TRAIL \"X\" Y* OR title:*Trail \"x\" y*) OR `+
			`(tag:*tRail \"x\" y* OR tag:*trail \"x\" y*) OR `+
			`(body:*tRail \"x\" y* OR body:*trail \"x\" y*) OR `+
			`(vendor:*tRail \"x\" y* OR vendor:*trail \"x\" y*)`,
		q)
	assert.Equal(t, "", BuildSearchQuery("   "))
}

func TestParseSearchSort(t *testing.T) {
	assert.Equal(t, SearchPrice, ParseSearchSort("price"))
	assert.Equal(t, SearchBestSelling, ParseSearchSort("BEST_SELLING"))
	assert.Equal(t, SearchRelevance, ParseSearchSort("random"))
	assert.Equal(t, SearchRelevance, ParseSearchSort(""))
}

func TestHomepage(t *testing.T) {
	c, _ := newTestClient(t, func(t *testing.T, req graphQLRequest) (int, string) {
		assert.Equal(t, "frontpage", req.Variables["gridHandle"])
		assert.Len(t, req.Variables["metafieldIdentifiers"], 9)
		return http.StatusOK, `{"data":{
		  "grid":{"title":"Front","products":{"nodes":[
		    {"id":"p1","title":"One","handle":"one"},
		    {"id":"p2","title":"Two","handle":"two"}]}},
		  "showcase":{"title":"Hero","products":{"nodes":[{
		    "id":"p2","title":"Two","handle":"two",
		    "featuredImage":{"url":"https://cdn.example/two.jpg"},
		    "variants":{"nodes":[{"id":"v","title":"9","availableForSale":true,
		      "price":{"amount":"150.00","currencyCode":"USD"},
		      "selectedOptions":[{"name":"Size","value":"9"}]}]},
		    "metafields":[
		      {"namespace":"homepage","key":"hero_cta_link","value":"/collections/trail"},
		      {"namespace":"homepage","key":"size_options","value":"[\"8\",\" 9 \",3]"},
		      {"namespace":"homepage","key":"benefit_list","value":"Free shipping\nFree returns, Lifetime support"},
		      null]}]}},
		  "featured":{"title":"Featured","products":{"nodes":[
		    {"id":"f1","handle":"f1"},{"id":"f2","handle":"f2"},{"id":"f3","handle":"f3"},{"id":"f4","handle":"f4"}]}},
		  "fallback":{"nodes":[{"id":"p1","title":"One","handle":"one"},{"id":"p3","title":"Three","handle":"three"}]}
		}}`
	})

	home := c.Homepage(context.Background(), HomepageParams{
		GridHandle:     "frontpage",
		ShowcaseHandle: "showcase",
		FeaturedHandle: "featured",
	})

	handles := make([]string, len(home.Products))
	for i, p := range home.Products {
		handles[i] = p.Handle
	}
	assert.Equal(t, []string{"one", "three"}, handles)

	require.NotNil(t, home.Showcase)
	assert.Equal(t, "two", home.Showcase.Handle)
	require.NotNil(t, home.Showcase.HeroCTA)
	assert.Equal(t, "Explore Collection", home.Showcase.HeroCTA.Label)
	assert.Equal(t, "/collections/trail", *home.Showcase.HeroCTA.Href)
	assert.Equal(t, []string{"8", "9"}, home.Showcase.SizeOptions)
	assert.Equal(t, []string{"Free shipping", "Free returns", "Lifetime support"}, home.Showcase.Benefits)
	assert.Empty(t, home.Showcase.ColorOptions)
	assert.Equal(t, []SelectedOption{{Name: "Size", Value: "9"}}, home.Showcase.SelectedOptions)

	assert.Len(t, home.FeaturedProducts, 3)
	assert.Equal(t, "Hero", *home.ShowcaseCollectionTitle)
}

func TestHomepage_ErrorYieldsEmpty(t *testing.T) {
	c, _ := newTestClient(t, func(t *testing.T, req graphQLRequest) (int, string) {
		return http.StatusInternalServerError, ``
	})

	home := c.Homepage(context.Background(), HomepageParams{GridHandle: "frontpage"})
	assert.Empty(t, home.Products)
	assert.Nil(t, home.Showcase)
	assert.Equal(t, "frontpage", home.CollectionHandle)
}

const cartJSON = `{"id":"gid://shopify/Cart/1","checkoutUrl":"https://shop.example/checkout","totalQuantity":2,
  "cost":{"subtotalAmount":{"amount":"258.00","currencyCode":"USD"},"totalAmount":{"amount":"258.00","currencyCode":"USD"}},
  "lines":{"nodes":[{"id":"gid://shopify/CartLine/1","quantity":2,
    "cost":{"totalAmount":{"amount":"258.00","currencyCode":"USD"}},
    "merchandise":{"id":"gid://shopify/ProductVariant/1","title":"9","price":{"amount":"129.00","currencyCode":"USD"},
      "image":{"url":"https://cdn.example/ridge.jpg"},"product":{"title":"Ridge Runner","handle":"ridge-runner"}}}]}}`

func TestCreateCart(t *testing.T) {
	c, _ := newTestClient(t, func(t *testing.T, req graphQLRequest) (int, string) {
		input := req.Variables["input"].(map[string]interface{})
		lines := input["lines"].([]interface{})
		assert.Equal(t, "gid://shopify/ProductVariant/1", lines[0].(map[string]interface{})["merchandiseId"])
		return http.StatusOK, `{"data":{"cartCreate":{"cart":` + cartJSON + `,"userErrors":[]}}}`
	})

	cart, err := c.CreateCart(context.Background(), []LineInput{{MerchandiseID: "gid://shopify/ProductVariant/1", Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, 2, cart.TotalQuantity)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "Ridge Runner", cart.Lines[0].ProductName)
	assert.Equal(t, "$258.00", cart.Subtotal.Display())
}

func TestCartMutation_UserErrors(t *testing.T) {
	c, _ := newTestClient(t, func(t *testing.T, req graphQLRequest) (int, string) {
		return http.StatusOK, `{"data":{"cartLinesUpdate":{"cart":null,"userErrors":[
		  {"code":"INVALID","field":["lines","0","quantity"],"message":"Quantity is invalid"}]}}}`
	})

	_, err := c.UpdateLines(context.Background(), "gid://shopify/Cart/1", []LineUpdate{{ID: "l", Quantity: -1}})
	require.Error(t, err)
	assert.Equal(t, "Quantity is invalid", err.Error())

	var userErrs UserErrors
	require.True(t, errors.As(err, &userErrs))
	assert.Equal(t, []string{"lines", "0", "quantity"}, userErrs[0].Field)
}

func TestCart_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(t *testing.T, req graphQLRequest) (int, string) {
		return http.StatusOK, `{"data":{"cart":null}}`
	})

	_, err := c.Cart(context.Background(), "gid://shopify/Cart/404")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCartLineTotalComputedWhenMissing(t *testing.T) {
	var raw rawCart
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c","lines":{"nodes":[
	  {"id":"l1","quantity":3,"merchandise":{"id":"v","price":{"amount":"19.5","currencyCode":"USD"}}}]}}`), &raw))

	cart := raw.toCart()
	assert.Equal(t, "58.50", cart.Lines[0].LineTotal.Amount)
	assert.Equal(t, "$58.50", cart.Subtotal.Display())
}

func TestCreateAccessToken_FriendlyErrors(t *testing.T) {
	c, _ := newTestClient(t, func(t *testing.T, req graphQLRequest) (int, string) {
		return http.StatusOK, `{"data":{"customerAccessTokenCreate":{"customerAccessToken":null,"customerUserErrors":[
		  {"code":"UNIDENTIFIED_CUSTOMER","field":["input"],"message":"Unidentified customer"},
		  {"code":"INVALID_CREDENTIALS","field":["input"],"message":"bad"}]}}}`
	})

	_, err := c.CreateAccessToken(context.Background(), "runner@example.com", "password1")
	var userErrs UserErrors
	require.True(t, errors.As(err, &userErrs))
	assert.Equal(t, []string{"Unidentified customer", "Invalid email or password"}, userErrs.Messages())
}

func TestCustomer_Orders(t *testing.T) {
	c, _ := newTestClient(t, func(t *testing.T, req graphQLRequest) (int, string) {
		assert.Equal(t, "tok", req.Variables["customerAccessToken"])
		return http.StatusOK, `{"data":{"customer":{"id":"gid://shopify/Customer/1","email":"runner@example.com",
		  "orders":{"edges":[{"node":{"id":"o1","orderNumber":1001,
		    "totalPrice":{"amount":"129.0","currencyCode":"USD"},"processedAt":"2025-01-02T00:00:00Z"}}]}}}}`
	})

	customer, err := c.Customer(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, customer.Orders, 1)
	assert.Equal(t, "129.0 USD", customer.Orders[0].TotalPrice)
	assert.Equal(t, 1001, customer.Orders[0].OrderNumber)
}

func TestCustomer_InvalidToken(t *testing.T) {
	c, _ := newTestClient(t, func(t *testing.T, req graphQLRequest) (int, string) {
		return http.StatusOK, `{"data":{"customer":null}}`
	})

	_, err := c.Customer(context.Background(), "expired")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUserError_FriendlyMessage(t *testing.T) {
	assert.Equal(t, "This email is already in use", UserError{Code: "TAKEN"}.FriendlyMessage())
	assert.Equal(t, "custom", UserError{Code: "OTHER", Message: "custom"}.FriendlyMessage())
	assert.Equal(t, "An error occurred", UserError{}.FriendlyMessage())
}

func TestTitleFromHandle(t *testing.T) {
	assert.Equal(t, "Trail Running", TitleFromHandle("trail-running"))
	assert.Equal(t, "Mens Shoes 2025", TitleFromHandle("mens-shoes-2025"))
}

func TestParseList(t *testing.T) {
	s := func(v string) *string { return &v }
	assert.Equal(t, []string{"a", "b"}, parseList(s(`["a"," b ",""]`)))
	assert.Equal(t, []string{"a", "b", "c"}, parseList(s("a, b\nc,")))
	assert.Equal(t, []string{}, parseList(nil))
	assert.Equal(t, []string{}, parseList(s("   ")))
}
