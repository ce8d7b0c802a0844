package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"stride/internal/services/storefront"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondUserErrors reports mutation validation failures with their friendly
// messages.
func respondUserErrors(c *gin.Context, err error) bool {
	var userErrs storefront.UserErrors
	if !errors.As(err, &userErrs) || len(userErrs) == 0 {
		return false
	}
	messages := userErrs.Messages()
	c.JSON(http.StatusBadRequest, gin.H{
		"error":  messages[0],
		"errors": messages,
	})
	return true
}

// pageURL joins a path and query, omitting the "?" for an empty query.
func pageURL(path string, query url.Values) string {
	if encoded := query.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}
