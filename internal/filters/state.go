package filters

import (
	"net/url"
	"strconv"
)

// State is the collection state carried by a request's query string.
type State struct {
	// FilterInputs are the distinct raw filter parameters, as received.
	FilterInputs []string
	// Filters are the inputs that decoded, in input order.
	Filters []Filter
	Sort    SortState
	View    ViewMode
	Cursor  string
	Page    int

	params url.Values
}

// Parse reads filter, sort, view and pagination state from params.
func Parse(params url.Values) State {
	inputs, decoded := ParseFilterParams(params)

	page := 1
	if p, err := strconv.Atoi(params.Get(ParamPage)); err == nil && p > 1 {
		page = p
	}

	return State{
		FilterInputs: inputs,
		Filters:      decoded,
		Sort:         ParseSort(params.Get(ParamSort)),
		View:         ParseViewMode(params.Get(ParamView)),
		Cursor:       params.Get(ParamCursor),
		Page:         page,
		params:       cloneValues(params),
	}
}

// ActiveInputs is the set of normalized filter inputs currently applied.
func (s State) ActiveInputs() map[string]struct{} {
	active := make(map[string]struct{}, len(s.Filters))
	for _, f := range s.Filters {
		active[EncodeFilter(f)] = struct{}{}
	}
	return active
}

// IsActive reports whether a facet value input (as returned by the
// Storefront API) is among the applied filters.
func (s State) IsActive(input string) bool {
	_, ok := s.ActiveInputs()[NormalizeFilterInput(input)]
	return ok
}

// Canonical returns the query with filters normalized and de-duplicated,
// undecodable filters dropped, and default sort and view omitted. Other
// parameters are carried over untouched.
func (s State) Canonical() url.Values {
	next := cloneValues(s.params)

	next.Del(ParamFilter)
	for _, f := range s.Filters {
		encoded := EncodeFilter(f)
		if !contains(next[ParamFilter], encoded) {
			next.Add(ParamFilter, encoded)
		}
	}

	if s.Sort.Param == DefaultSortParam {
		next.Del(ParamSort)
	} else {
		next.Set(ParamSort, string(s.Sort.Param))
	}

	if s.View == DefaultViewMode {
		next.Del(ParamView)
	} else {
		next.Set(ParamView, string(s.View))
	}

	if s.Page <= 1 {
		next.Del(ParamPage)
	}
	return next
}

// NextPage returns the canonical query advanced to the page starting after
// endCursor.
func (s State) NextPage(endCursor string) url.Values {
	next := s.Canonical()
	next.Set(ParamCursor, endCursor)
	next.Set(ParamPage, strconv.Itoa(s.Page+1))
	return next
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
