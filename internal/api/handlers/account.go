package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"stride/internal/logger"
	"stride/internal/models"
	"stride/internal/services/storefront"
	"stride/internal/session"
)

// tokens expiring within this window are renewed on account loads
const tokenRenewWindow = 24 * time.Hour

type AccountHandler struct {
	customers Customers
	sessions  Sessions
	logger    *logger.Logger
	now       func() time.Time
}

func NewAccountHandler(customers Customers, sessions Sessions, logger *logger.Logger) *AccountHandler {
	return &AccountHandler{
		customers: customers,
		sessions:  sessions,
		logger:    logger,
		now:       time.Now,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type RecoverRequest struct {
	Email string `json:"email"`
}

type UpdateAccountRequest struct {
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if msg := validateCredentials(req.Email, req.Password); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	if !h.login(c, req.Email, req.Password) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"isLoggedIn": true}})
}

// login exchanges credentials for an access token and stores it in the
// session. It writes the error response itself and reports success.
func (h *AccountHandler) login(c *gin.Context, email, password string) bool {
	token, err := h.customers.CreateAccessToken(c.Request.Context(), email, password)
	if err != nil {
		if !respondUserErrors(c, err) {
			h.logger.Error("Failed to log in customer: %v", err)
			respondError(c, http.StatusBadGateway, "Failed to log in")
		}
		return false
	}

	s := session.From(c)
	s.SetCustomer(token.AccessToken, token.ExpiresAtTime())
	if err := h.sessions.Save(c, s); err != nil {
		h.logger.Error("Failed to save session: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to log in")
		return false
	}
	return true
}

// Register creates an account and logs the new customer in.
func (h *AccountHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if msg := validateCredentials(req.Email, req.Password); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	customer, err := h.customers.CreateCustomer(c.Request.Context(), storefront.CustomerInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	})
	if err != nil {
		if !respondUserErrors(c, err) {
			h.logger.Error("Failed to create customer: %v", err)
			respondError(c, http.StatusBadGateway, "Failed to create account")
		}
		return
	}

	if !h.login(c, req.Email, req.Password) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"isLoggedIn": true, "customer": customer}})
}

// Recover sends a password reset email. The response does not reveal
// whether an account exists.
func (h *AccountHandler) Recover(c *gin.Context) {
	var req RecoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if msg := validateEmail(req.Email); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	if err := h.customers.RecoverCustomer(c.Request.Context(), req.Email); err != nil {
		var userErrs storefront.UserErrors
		if !errors.As(err, &userErrs) {
			h.logger.Error("Failed to request password reset: %v", err)
			respondError(c, http.StatusBadGateway, "Failed to request password reset")
			return
		}
		h.logger.Debug("Password reset rejected: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"resetRequested": true}})
}

func (h *AccountHandler) Logout(c *gin.Context) {
	s := session.From(c)
	if s.CustomerAccessToken != nil {
		if err := h.customers.DeleteAccessToken(c.Request.Context(), *s.CustomerAccessToken); err != nil {
			h.logger.Warn("Failed to delete customer token: %v", err)
		}
	}

	if s.CartID != nil {
		s.ClearCustomer()
		if err := h.sessions.Save(c, s); err != nil {
			h.logger.Error("Failed to save session: %v", err)
			respondError(c, http.StatusInternalServerError, "Failed to log out")
			return
		}
	} else if err := h.sessions.Destroy(c, s); err != nil {
		h.logger.Error("Failed to destroy session: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to log out")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"isLoggedIn": false}})
}

// Get returns the logged in customer with their recent orders.
func (h *AccountHandler) Get(c *gin.Context) {
	s := session.From(c)
	token, ok := h.accessToken(c, s)
	if !ok {
		return
	}

	customer, err := h.customers.Customer(c.Request.Context(), token)
	if err != nil {
		h.customerError(c, s, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customer})
}

func (h *AccountHandler) Update(c *gin.Context) {
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var input storefront.CustomerInput
	if req.Email != nil {
		input.Email = strings.TrimSpace(*req.Email)
		if msg := validateEmail(input.Email); msg != "" {
			respondError(c, http.StatusBadRequest, msg)
			return
		}
	}
	if req.Password != nil {
		if msg := validatePassword(*req.Password); msg != "" {
			respondError(c, http.StatusBadRequest, msg)
			return
		}
		input.Password = *req.Password
	}
	if req.FirstName != nil {
		input.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		input.LastName = strings.TrimSpace(*req.LastName)
	}

	s := session.From(c)
	token, ok := h.accessToken(c, s)
	if !ok {
		return
	}

	customer, err := h.customers.UpdateCustomer(c.Request.Context(), token, input)
	if err != nil {
		if respondUserErrors(c, err) {
			return
		}
		h.customerError(c, s, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customer})
}

// accessToken returns the session's customer token, renewing it when it is
// close to expiry. It answers 401 when nobody is logged in.
func (h *AccountHandler) accessToken(c *gin.Context, s *models.Session) (string, bool) {
	if !s.IsLoggedIn() {
		respondError(c, http.StatusUnauthorized, "Not logged in")
		return "", false
	}

	token := *s.CustomerAccessToken
	if !s.TokenExpiresWithin(h.now(), tokenRenewWindow) {
		return token, true
	}

	renewed, err := h.customers.RenewAccessToken(c.Request.Context(), token)
	if err != nil {
		h.logger.Warn("Failed to renew customer token: %v", err)
		return token, true
	}
	s.SetCustomer(renewed.AccessToken, renewed.ExpiresAtTime())
	if err := h.sessions.Save(c, s); err != nil {
		h.logger.Warn("Failed to save renewed token: %v", err)
	}
	return renewed.AccessToken, true
}

// customerError handles a failed customer read or update. An unknown or
// revoked token logs the visitor out.
func (h *AccountHandler) customerError(c *gin.Context, s *models.Session, err error) {
	if errors.Is(err, storefront.ErrNotFound) || storefront.IsAccessDenied(err) {
		s.ClearCustomer()
		if err := h.sessions.Save(c, s); err != nil {
			h.logger.Warn("Failed to clear customer token: %v", err)
		}
		respondError(c, http.StatusUnauthorized, "Session expired, please log in again")
		return
	}
	h.logger.Error("Failed to load customer: %v", err)
	respondError(c, http.StatusBadGateway, "Failed to fetch account")
}
