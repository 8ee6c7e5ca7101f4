package server

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"keepers-ledger/internal/db"
)

// sessionStore persists cookie sessions in the sessions table so identity
// survives restarts. The in-memory map is the nil-db fallback used by
// tests that run without a database.
type sessionStore struct {
	db         *gorm.DB
	cookieName string
	mu         sync.Mutex
	local      map[string]sessionData
}

type sessionData struct {
	Email string
	Name  string
}

func newSessionStore(conn *gorm.DB, cookieName string) *sessionStore {
	if cookieName == "" {
		cookieName = "kl_session"
	}
	return &sessionStore{
		db:         conn,
		cookieName: cookieName,
		local:      make(map[string]sessionData),
	}
}

// SetIdentity binds the verified principal to the caller's session cookie.
func (s *sessionStore) SetIdentity(c *gin.Context, email, name string) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return
	}
	id := s.ensureSessionID(c)
	if s.db == nil {
		s.mu.Lock()
		s.local[id] = sessionData{Email: email, Name: name}
		s.mu.Unlock()
		return
	}
	record := db.Session{ID: id, Email: email, Name: name}
	_ = s.db.Save(&record).Error
}

// Identity returns the email and name bound to the caller's session, or
// empty strings when the session is anonymous.
func (s *sessionStore) Identity(c *gin.Context) (string, string) {
	cookie, err := c.Request.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return "", ""
	}
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		data := s.local[cookie.Value]
		return data.Email, data.Name
	}
	var record db.Session
	if err := s.db.Where("id = ?", cookie.Value).First(&record).Error; err != nil {
		return "", ""
	}
	return record.Email, record.Name
}

// Clear drops the caller's session row and expires the cookie.
func (s *sessionStore) Clear(c *gin.Context) {
	cookie, err := c.Request.Cookie(s.cookieName)
	if err == nil && cookie.Value != "" {
		if s.db == nil {
			s.mu.Lock()
			delete(s.local, cookie.Value)
			s.mu.Unlock()
		} else {
			_ = s.db.Delete(&db.Session{}, "id = ?", cookie.Value).Error
		}
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *sessionStore) ensureSessionID(c *gin.Context) string {
	cookie, err := c.Request.Cookie(s.cookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.NewString()
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
