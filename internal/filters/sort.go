package filters

import "strings"

type ViewMode string

const (
	ViewLarge  ViewMode = "large"
	ViewMedium ViewMode = "medium"
	ViewSmall  ViewMode = "small"

	DefaultViewMode = ViewMedium
)

var ViewModeValues = []ViewMode{ViewLarge, ViewMedium, ViewSmall}

// Columns is the grid density a view mode renders with.
func (m ViewMode) Columns() int {
	switch m {
	case ViewLarge:
		return 2
	case ViewSmall:
		return 4
	default:
		return 3
	}
}

func (m ViewMode) Label() string {
	switch m {
	case ViewLarge:
		return "Large Grid"
	case ViewSmall:
		return "Compact Grid"
	default:
		return "Standard Grid"
	}
}

// ParseViewMode is case-insensitive; empty and unknown values fall back to
// the default mode.
func ParseViewMode(value string) ViewMode {
	if value == "" {
		return DefaultViewMode
	}
	normalized := ViewMode(strings.ToLower(value))
	for _, m := range ViewModeValues {
		if m == normalized {
			return m
		}
	}
	return DefaultViewMode
}

type SortParam string

const (
	SortCollectionDefault SortParam = "collection-default"
	SortBestSelling       SortParam = "best-selling"
	SortPriceAsc          SortParam = "price-asc"
	SortPriceDesc         SortParam = "price-desc"
	SortCreatedDesc       SortParam = "created-desc"
	SortCreatedAsc        SortParam = "created-asc"
	SortTitleAsc          SortParam = "title-asc"
	SortTitleDesc         SortParam = "title-desc"

	DefaultSortParam = SortCollectionDefault
)

// SortParamValues lists the sort choices in menu order.
var SortParamValues = []SortParam{
	SortCollectionDefault,
	SortBestSelling,
	SortPriceAsc,
	SortPriceDesc,
	SortCreatedDesc,
	SortCreatedAsc,
	SortTitleAsc,
	SortTitleDesc,
}

// Storefront API ProductCollectionSortKeys values.
const (
	SortKeyCollectionDefault = "COLLECTION_DEFAULT"
	SortKeyBestSelling       = "BEST_SELLING"
	SortKeyPrice             = "PRICE"
	SortKeyCreated           = "CREATED"
	SortKeyTitle             = "TITLE"
)

type sortMapping struct {
	sortKey string
	reverse bool
	label   string
}

var sortParamMap = map[SortParam]sortMapping{
	SortCollectionDefault: {SortKeyCollectionDefault, false, "Featured"},
	SortBestSelling:       {SortKeyBestSelling, false, "Best Selling"},
	SortPriceAsc:          {SortKeyPrice, false, "Price: Low to High"},
	SortPriceDesc:         {SortKeyPrice, true, "Price: High to Low"},
	SortCreatedDesc:       {SortKeyCreated, true, "Newest First"},
	SortCreatedAsc:        {SortKeyCreated, false, "Oldest First"},
	SortTitleAsc:          {SortKeyTitle, false, "Alphabetical (A–Z)"},
	SortTitleDesc:         {SortKeyTitle, true, "Alphabetical (Z–A)"},
}

func (p SortParam) Label() string {
	return sortParamMap[p].label
}

// SortState is the resolved sort for a request. RawParam is the value as it
// arrived, nil when the parameter was absent.
type SortState struct {
	Param    SortParam `json:"param"`
	RawParam *string   `json:"rawParam"`
	SortKey  string    `json:"sortKey"`
	Reverse  bool      `json:"reverse"`
}

// ParseSort maps a sort parameter to the Storefront sort key and direction.
// Unknown values resolve to the default sort but keep the raw value.
func ParseSort(value string) SortState {
	if value == "" {
		return newSortState(DefaultSortParam, nil)
	}
	raw := value
	normalized := SortParam(strings.ToLower(value))
	if _, ok := sortParamMap[normalized]; ok {
		return newSortState(normalized, &raw)
	}
	return newSortState(DefaultSortParam, &raw)
}

func newSortState(param SortParam, raw *string) SortState {
	m := sortParamMap[param]
	return SortState{
		Param:    param,
		RawParam: raw,
		SortKey:  m.sortKey,
		Reverse:  m.reverse,
	}
}
