package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"stride/internal/logger"
	"stride/internal/models"
)

const (
	CookieName = "stride_session"
	issuer     = "stride"
	contextKey = "stride.session"
)

var ErrInvalidToken = errors.New("invalid session token")

type Manager struct {
	db     *gorm.DB
	secret []byte
	maxAge time.Duration
	secure bool
	logger *logger.Logger
	now    func() time.Time
}

func NewManager(db *gorm.DB, secret string, maxAge time.Duration, secure bool, logger *logger.Logger) *Manager {
	return &Manager{
		db:     db,
		secret: []byte(secret),
		maxAge: maxAge,
		secure: secure,
		logger: logger,
		now:    time.Now,
	}
}

// Sign issues the cookie value for a session id.
func (m *Manager) Sign(sessionID string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify returns the session id carried by a cookie value.
func (m *Manager) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Middleware loads the request's session into the gin context. A missing,
// forged or expired cookie, or one naming a deleted session, starts a fresh
// unsaved session.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKey, m.load(c))
		c.Next()
	}
}

func (m *Manager) load(c *gin.Context) *models.Session {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie == "" {
		return &models.Session{}
	}

	id, err := m.Verify(cookie)
	if err != nil {
		m.logger.Debug("Discarding session cookie: %v", err)
		return &models.Session{}
	}

	var s models.Session
	err = m.db.WithContext(c.Request.Context()).First(&s, "id = ?", id).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			m.logger.Error("Failed to load session %s: %v", id, err)
		}
		return &models.Session{}
	}
	return &s
}

// From returns the session loaded by Middleware.
func From(c *gin.Context) *models.Session {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*models.Session); ok {
			return s
		}
	}
	return &models.Session{}
}

// Save persists the session and refreshes the cookie.
func (m *Manager) Save(c *gin.Context, s *models.Session) error {
	if err := m.db.WithContext(c.Request.Context()).Save(s).Error; err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	value, err := m.Sign(s.ID)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}
	m.setCookie(c, value, int(m.maxAge.Seconds()))
	c.Set(contextKey, s)
	return nil
}

// Destroy deletes the session and expires the cookie.
func (m *Manager) Destroy(c *gin.Context, s *models.Session) error {
	if s.ID != "" {
		if err := m.db.WithContext(c.Request.Context()).Delete(&models.Session{}, "id = ?", s.ID).Error; err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
	}
	m.setCookie(c, "", -1)
	c.Set(contextKey, &models.Session{})
	return nil
}

func (m *Manager) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, value, maxAge, "/", "", m.secure, true)
}

// PurgeExpired deletes sessions untouched for longer than the cookie lifetime.
// Their cookies can no longer verify, so nothing will load them again.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := m.now().Add(-m.maxAge)
	result := m.db.WithContext(ctx).Where("updated_at < ?", cutoff).Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// RunPurge purges expired sessions now and then every interval until ctx is
// cancelled.
func (m *Manager) RunPurge(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if n, err := m.PurgeExpired(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Error("Session purge failed: %v", err)
		} else if n > 0 {
			m.logger.Info("Purged %d expired sessions", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
