package storefront

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrNotFound is returned when a product, cart or customer does not exist.
var ErrNotFound = errors.New("storefront: not found")

// HTTPError is a non-200 response from the Storefront API.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("API request failed: %d - %s", e.StatusCode, e.Body)
}

type GraphQLError struct {
	Message    string        `json:"message"`
	Path       []interface{} `json:"path,omitempty"`
	Extensions struct {
		Code string `json:"code,omitempty"`
	} `json:"extensions"`
}

// GraphQLErrors is the top-level "errors" array of a response.
type GraphQLErrors []GraphQLError

func (e GraphQLErrors) Error() string {
	messages := make([]string, len(e))
	for i, err := range e {
		messages[i] = err.Message
	}
	return "graphQL errors: " + strings.Join(messages, "; ")
}

// UserErrors are validation failures reported by a mutation.
type UserErrors []UserError

func (e UserErrors) Error() string {
	if len(e) == 0 {
		return "user errors"
	}
	return e[0].Message
}

// IsAccessDenied reports whether err is the Storefront API refusing access,
// which happens for carts created with another token or expired customers.
func IsAccessDenied(err error) bool {
	var gqlErrs GraphQLErrors
	if errors.As(err, &gqlErrs) {
		for _, e := range gqlErrs {
			if e.Extensions.Code == "ACCESS_DENIED" {
				return true
			}
		}
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == 403 {
			return true
		}
		for _, code := range gjson.Get(httpErr.Body, "errors.#.extensions.code").Array() {
			if code.String() == "ACCESS_DENIED" {
				return true
			}
		}
	}
	return false
}

// userErrorsAt extracts "<root>.userErrors" and "<root>.customerUserErrors"
// from a mutation payload.
func userErrorsAt(data []byte, root string) UserErrors {
	var out UserErrors
	for _, field := range []string{"userErrors", "customerUserErrors"} {
		gjson.GetBytes(data, root+"."+field).ForEach(func(_, v gjson.Result) bool {
			ue := UserError{
				Code:    v.Get("code").String(),
				Message: v.Get("message").String(),
			}
			for _, f := range v.Get("field").Array() {
				ue.Field = append(ue.Field, f.String())
			}
			out = append(out, ue)
			return true
		})
	}
	return out
}
