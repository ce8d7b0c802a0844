// Package filters encodes collection filter, sort and view-mode state to and
// from URL query parameters.
//
// Filters are carried as repeated "filter" parameters, each one the JSON form
// of a Storefront API ProductFilter object. Encoding is stable: object keys
// are sorted at every depth so two equal filters always produce the same
// parameter value, which is what makes de-duplication and toggling work.
package filters

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
)

// Query parameter names.
const (
	ParamFilter = "filter"
	ParamSort   = "sort"
	ParamView   = "view"
	ParamCursor = "cursor"
	ParamPage   = "page"
)

// Filter is a Storefront API ProductFilter, e.g.
// {"productVendor":"Stride"} or {"price":{"min":50,"max":150}}.
type Filter map[string]any

// EncodeFilter serializes a filter into its stable parameter form. A nil
// filter encodes as the empty object.
func EncodeFilter(filter Filter) string {
	if filter == nil {
		return "{}"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// encoding/json sorts map keys, nested maps included.
	if err := enc.Encode(map[string]any(filter)); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// DecodeFilter parses a parameter value. Empty values, invalid JSON and JSON
// that is not an object are rejected.
func DecodeFilter(value string) (Filter, bool) {
	if value == "" {
		return nil, false
	}
	var parsed any
	if err := json.Unmarshal([]byte(value), &parsed); err != nil {
		return nil, false
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, false
	}
	return Filter(obj), true
}

// ParseFilterParams returns the distinct non-empty "filter" inputs in first
// occurrence order together with the ones that decode to filters.
func ParseFilterParams(params url.Values) ([]string, []Filter) {
	inputs := uniqueNonEmpty(params[ParamFilter])
	filters := make([]Filter, 0, len(inputs))
	for _, raw := range inputs {
		if f, ok := DecodeFilter(raw); ok {
			filters = append(filters, f)
		}
	}
	return inputs, filters
}

// NormalizeFilterInput re-encodes a decodable input in stable form and
// returns anything else untouched.
func NormalizeFilterInput(input string) string {
	if f, ok := DecodeFilter(input); ok {
		return EncodeFilter(f)
	}
	return input
}

// NormalizeFilterInputs normalizes every input and drops duplicates that
// appear after normalization, keeping the first occurrence.
func NormalizeFilterInputs(inputs []string) []string {
	seen := make(map[string]struct{}, len(inputs))
	result := make([]string, 0, len(inputs))
	for _, input := range inputs {
		normalized := NormalizeFilterInput(input)
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}

// ToggleFilterParam adds the filter when absent and removes every occurrence
// of it when present. Pagination is reset.
func ToggleFilterParam(params url.Values, filter Filter) url.Values {
	next := cloneValues(params)
	serialized := EncodeFilter(filter)
	existing := next[ParamFilter]

	updated := make([]string, 0, len(existing)+1)
	found := false
	for _, v := range existing {
		if v == serialized {
			found = true
			continue
		}
		updated = append(updated, v)
	}
	if !found {
		updated = append(updated, serialized)
	}

	next.Del(ParamFilter)
	for _, v := range updated {
		next.Add(ParamFilter, v)
	}
	resetPagination(next)
	return next
}

// ClearFilterParams drops every filter. Pagination is reset.
func ClearFilterParams(params url.Values) url.Values {
	next := cloneValues(params)
	next.Del(ParamFilter)
	resetPagination(next)
	return next
}

// SetSortParam sets the sort parameter, omitting it for the default sort.
// Pagination is reset.
func SetSortParam(params url.Values, sort SortParam) url.Values {
	next := cloneValues(params)
	if sort == DefaultSortParam {
		next.Del(ParamSort)
	} else {
		next.Set(ParamSort, string(sort))
	}
	resetPagination(next)
	return next
}

// SetViewModeParam sets the view parameter, omitting it for the default
// mode. Pagination is kept: the same results are shown, only denser.
func SetViewModeParam(params url.Values, mode ViewMode) url.Values {
	next := cloneValues(params)
	if mode == DefaultViewMode {
		next.Del(ParamView)
	} else {
		next.Set(ParamView, string(mode))
	}
	return next
}

func resetPagination(params url.Values) {
	params.Del(ParamCursor)
	params.Del(ParamPage)
}

func cloneValues(params url.Values) url.Values {
	next := make(url.Values, len(params))
	for k, vs := range params {
		next[k] = append([]string(nil), vs...)
	}
	return next
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
