package storefront

import (
	"context"
)

const showcaseNamespace = "homepage"

var showcaseMetafieldKeys = []string{
	"hero_cta_text",
	"hero_cta_link",
	"hero_subtitle",
	"hero_background",
	"size_options",
	"width_options",
	"color_options",
	"shipping_note",
	"benefit_list",
}

type HomepageParams struct {
	GridHandle     string
	ShowcaseHandle string
	FeaturedHandle string
	GridCount      int
	FeaturedCount  int
	GalleryCount   int
}

type HeroCTA struct {
	Label string  `json:"label"`
	Href  *string `json:"href,omitempty"`
}

// ShowcaseProduct is the hero product, merchandised through "homepage"
// metafields.
type ShowcaseProduct struct {
	Product
	SelectedOptions   []SelectedOption `json:"selectedOptions"`
	HeroSubtitle      *string          `json:"heroSubtitle"`
	HeroBackgroundURL *string          `json:"heroBackgroundUrl"`
	HeroCTA           *HeroCTA         `json:"heroCta"`
	SizeOptions       []string         `json:"sizeOptions"`
	WidthOptions      []string         `json:"widthOptions"`
	ColorOptions      []string         `json:"colorOptions"`
	ShippingNote      *string          `json:"shippingNote"`
	Benefits          []string         `json:"benefits"`
}

type Homepage struct {
	Products                []ProductCard    `json:"products"`
	Showcase                *ShowcaseProduct `json:"productShowcase"`
	ShowcaseCollectionTitle *string          `json:"showcaseCollectionTitle"`
	CollectionHandle        string           `json:"collectionHandle"`
	ShowcaseHandle          string           `json:"showcaseHandle"`
	FeaturedProducts        []ProductCard    `json:"featuredProducts"`
	FeaturedCollectionTitle *string          `json:"featuredCollectionTitle"`
	FeaturedHandle          string           `json:"featuredHandle"`
}

type homepageCollection struct {
	Title    *string              `json:"title"`
	Products rawProductConnection `json:"products"`
}

type homepageResponse struct {
	Grid     *homepageCollection  `json:"grid"`
	Showcase *homepageCollection  `json:"showcase"`
	Featured *homepageCollection  `json:"featured"`
	Fallback rawProductConnection `json:"fallback"`
}

func (p *HomepageParams) applyDefaults() {
	if p.GridCount <= 0 {
		p.GridCount = 6
	}
	if p.FeaturedCount <= 0 {
		p.FeaturedCount = 3
	}
	if p.GalleryCount <= 0 {
		p.GalleryCount = 4
	}
}

// Homepage loads the landing page in one round trip. Errors are logged and
// yield an empty homepage.
func (c *Client) Homepage(ctx context.Context, params HomepageParams) *Homepage {
	params.applyDefaults()

	home := &Homepage{
		Products:         []ProductCard{},
		FeaturedProducts: []ProductCard{},
		CollectionHandle: params.GridHandle,
		ShowcaseHandle:   params.ShowcaseHandle,
		FeaturedHandle:   params.FeaturedHandle,
	}

	identifiers := make([]map[string]string, len(showcaseMetafieldKeys))
	for i, key := range showcaseMetafieldKeys {
		identifiers[i] = map[string]string{"namespace": showcaseNamespace, "key": key}
	}

	var resp homepageResponse
	err := c.Query(ctx, "HomepageData", HomepageQuery, map[string]interface{}{
		"gridHandle":           params.GridHandle,
		"showcaseHandle":       params.ShowcaseHandle,
		"featuredHandle":       params.FeaturedHandle,
		"gridCount":            params.GridCount,
		"featuredCount":        params.FeaturedCount,
		"galleryCount":         params.GalleryCount,
		"metafieldIdentifiers": identifiers,
	}, &resp)
	if err != nil {
		c.logger.Error("Failed to load homepage data: %v", err)
		return home
	}

	var raw []*rawProduct
	if resp.Grid != nil {
		raw = append(raw, resp.Grid.Products.Nodes...)
	}
	raw = append(raw, resp.Fallback.Nodes...)

	seen := make(map[string]bool)
	var deduped []ProductCard
	for _, card := range toCards(raw) {
		if seen[card.ID] {
			continue
		}
		seen[card.ID] = true
		deduped = append(deduped, card)
		if len(deduped) == params.GridCount {
			break
		}
	}

	if resp.Showcase != nil {
		home.ShowcaseCollectionTitle = resp.Showcase.Title
		if nodes := resp.Showcase.Products.Nodes; len(nodes) > 0 {
			home.Showcase = toShowcase(nodes[0])
		}
	}

	for _, card := range deduped {
		if home.Showcase != nil && (card.ID == home.Showcase.ID || card.Handle == home.Showcase.Handle) {
			continue
		}
		home.Products = append(home.Products, card)
	}

	if resp.Featured != nil {
		home.FeaturedCollectionTitle = resp.Featured.Title
		featured := toCards(resp.Featured.Products.Nodes)
		if len(featured) > params.FeaturedCount {
			featured = featured[:params.FeaturedCount]
		}
		home.FeaturedProducts = featured
	}
	return home
}

func toShowcase(node *rawProduct) *ShowcaseProduct {
	product, ok := toProduct(node)
	if !ok {
		return nil
	}
	if node.Title == nil {
		product.Title = "Featured Product"
	}

	meta := make(map[string]*string)
	for _, m := range node.Metafields {
		if m == nil || isBlank(m.Namespace) || isBlank(m.Key) {
			continue
		}
		meta[*m.Namespace+":"+*m.Key] = m.Value
	}
	get := func(key string) *string { return meta[showcaseNamespace+":"+key] }
	clean := func(key string) *string {
		if s := cleanString(get(key)); s != "" {
			return &s
		}
		return nil
	}

	s := &ShowcaseProduct{
		Product:           *product,
		SelectedOptions:   []SelectedOption{},
		HeroSubtitle:      clean("hero_subtitle"),
		HeroBackgroundURL: clean("hero_background"),
		SizeOptions:       parseList(get("size_options")),
		WidthOptions:      parseList(get("width_options")),
		ColorOptions:      parseList(get("color_options")),
		ShippingNote:      clean("shipping_note"),
		Benefits:          parseList(get("benefit_list")),
	}

	ctaText, ctaLink := clean("hero_cta_text"), clean("hero_cta_link")
	if ctaText != nil || ctaLink != nil {
		cta := &HeroCTA{Label: "Explore Collection", Href: ctaLink}
		if ctaText != nil {
			cta.Label = *ctaText
		}
		s.HeroCTA = cta
	}

	if first := node.firstVariant(); first != nil {
		for _, opt := range first.SelectedOptions {
			name, value := cleanString(opt.Name), cleanString(opt.Value)
			if name != "" && value != "" {
				s.SelectedOptions = append(s.SelectedOptions, SelectedOption{Name: name, Value: value})
			}
		}
	}
	return s
}
