package storefront

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const summaryLength = 120

type rawImage struct {
	URL     *string `json:"url"`
	AltText *string `json:"altText"`
}

type rawVariant struct {
	ID               *string `json:"id"`
	Title            *string `json:"title"`
	AvailableForSale *bool   `json:"availableForSale"`
	Price            *Money  `json:"price"`
	SelectedOptions  []struct {
		Name  *string `json:"name"`
		Value *string `json:"value"`
	} `json:"selectedOptions"`
}

type rawMetafield struct {
	Namespace *string `json:"namespace"`
	Key       *string `json:"key"`
	Value     *string `json:"value"`
	Type      *string `json:"type"`
}

type rawOption struct {
	Name   *string   `json:"name"`
	Values []*string `json:"values"`
}

// rawProduct covers every product shape requested by the queries; fields a
// query does not select stay nil.
type rawProduct struct {
	ID              *string   `json:"id"`
	Title           *string   `json:"title"`
	Handle          *string   `json:"handle"`
	Description     *string   `json:"description"`
	DescriptionHTML *string   `json:"descriptionHtml"`
	FeaturedImage   *rawImage `json:"featuredImage"`
	Images          *struct {
		Nodes []*rawImage `json:"nodes"`
	} `json:"images"`
	Options  []*rawOption `json:"options"`
	Variants *struct {
		Nodes []*rawVariant `json:"nodes"`
	} `json:"variants"`
	Metafields []*rawMetafield `json:"metafields"`
}

type rawProductConnection struct {
	Nodes []*rawProduct `json:"nodes"`
}

func (p *rawProduct) firstImage() *rawImage {
	if p.Images == nil {
		return nil
	}
	for _, img := range p.Images.Nodes {
		if img != nil {
			return img
		}
	}
	return nil
}

func (p *rawProduct) firstVariant() *rawVariant {
	if p.Variants == nil || len(p.Variants.Nodes) == 0 {
		return nil
	}
	return p.Variants.Nodes[0]
}

// toCard projects a product node onto a ProductCard. Nodes without an id or
// handle are dropped.
func toCard(node *rawProduct) (ProductCard, bool) {
	if node == nil || isBlank(node.ID) || isBlank(node.Handle) {
		return ProductCard{}, false
	}

	card := ProductCard{
		ID:          *node.ID,
		Title:       "Untitled Product",
		Handle:      *node.Handle,
		Description: node.Description,
	}
	if node.Title != nil {
		card.Title = *node.Title
	}
	if node.Description != nil {
		card.Summary = truncate(*node.Description, summaryLength)
	}

	if img := node.firstImage(); img != nil && !isBlank(img.URL) {
		card.ImageURL = img.URL
	} else if node.FeaturedImage != nil && !isBlank(node.FeaturedImage.URL) {
		card.ImageURL = node.FeaturedImage.URL
	}
	if v := node.firstVariant(); v != nil && v.Price != nil {
		price := *v.Price
		card.Price = &price
	}
	return card, true
}

func toCards(nodes []*rawProduct) []ProductCard {
	cards := make([]ProductCard, 0, len(nodes))
	for _, node := range nodes {
		if card, ok := toCard(node); ok {
			cards = append(cards, card)
		}
	}
	return cards
}

func toProduct(node *rawProduct) (*Product, bool) {
	if node == nil || isBlank(node.ID) || isBlank(node.Handle) {
		return nil, false
	}

	p := &Product{
		ID:              *node.ID,
		Title:           "Untitled Product",
		Handle:          *node.Handle,
		Description:     node.Description,
		DescriptionHTML: node.DescriptionHTML,
		Gallery:         []Image{},
		Options:         toOptions(node.Options),
		Variants:        []Variant{},
	}
	if node.Title != nil {
		p.Title = *node.Title
	}

	if node.Images != nil {
		for _, img := range node.Images.Nodes {
			if img == nil || isBlank(img.URL) {
				continue
			}
			p.Gallery = append(p.Gallery, Image{URL: *img.URL, AltText: img.AltText})
		}
	}
	if node.FeaturedImage != nil && !isBlank(node.FeaturedImage.URL) {
		p.ImageURL = node.FeaturedImage.URL
	} else if len(p.Gallery) > 0 {
		p.ImageURL = &p.Gallery[0].URL
	}

	if node.Variants != nil {
		for _, v := range node.Variants.Nodes {
			if variant, ok := toVariant(v); ok {
				p.Variants = append(p.Variants, variant)
			}
		}
	}
	if first := node.firstVariant(); first != nil {
		if first.Price != nil {
			price := *first.Price
			p.Price = &price
		}
		p.Available = first.AvailableForSale != nil && *first.AvailableForSale
	}
	return p, true
}

func toVariant(v *rawVariant) (Variant, bool) {
	if v == nil || isBlank(v.ID) || v.Price == nil {
		return Variant{}, false
	}
	variant := Variant{
		ID:               *v.ID,
		Title:            "Default",
		AvailableForSale: v.AvailableForSale != nil && *v.AvailableForSale,
		Price:            *v.Price,
	}
	if v.Title != nil {
		variant.Title = *v.Title
	}
	for _, opt := range v.SelectedOptions {
		name, value := cleanString(opt.Name), cleanString(opt.Value)
		if name == "" || value == "" {
			continue
		}
		variant.SelectedOptions = append(variant.SelectedOptions, SelectedOption{Name: name, Value: value})
	}
	return variant, true
}

func toOptions(options []*rawOption) []ProductOption {
	out := []ProductOption{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		name := cleanString(opt.Name)
		if name == "" {
			continue
		}
		values := []string{}
		for _, v := range opt.Values {
			if s := cleanString(v); s != "" {
				values = append(values, s)
			}
		}
		out = append(out, ProductOption{Name: name, Values: values})
	}
	return out
}

var handleWord = regexp.MustCompile(`\b\w`)

// TitleFromHandle humanizes a collection handle: "trail-running" becomes
// "Trail Running".
func TitleFromHandle(handle string) string {
	spaced := strings.ReplaceAll(handle, "-", " ")
	return handleWord.ReplaceAllStringFunc(spaced, strings.ToUpper)
}

var listSeparator = regexp.MustCompile(`[\n,]`)

// parseList reads a list metafield stored either as a JSON array of strings
// or as a comma or newline separated string.
func parseList(value *string) []string {
	cleaned := cleanString(value)
	if cleaned == "" {
		return []string{}
	}

	var parsed []interface{}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil {
		out := []string{}
		for _, item := range parsed {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	}

	out := []string{}
	for _, item := range listSeparator.Split(cleaned, -1) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func cleanString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func isBlank(value *string) bool {
	return value == nil || *value == ""
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:n]), unicode.IsSpace)
}
