package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"keepers-ledger/internal/cache"
	"keepers-ledger/internal/config"
	"keepers-ledger/internal/db"
	"keepers-ledger/internal/logger"
	"keepers-ledger/internal/services"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	cfg := config.Config{
		JWTSecret:              testSecret,
		SessionCookieName:      "kl_session",
		CatalogCacheTTL:        time.Minute,
		DefaultCatalogPageSize: 25,
		MaxCatalogPageSize:     100,
	}
	log := logger.NewNop()
	mem := cache.NewMemory()
	identity := services.NewIdentityService(conn, log)
	srv := New(conn, cfg, log, Services{
		Identity:   identity,
		Campaigns:  services.NewCampaignService(conn, log, identity),
		Characters: services.NewCharacterService(conn, log),
		Weapons:    services.NewWeaponCatalog(conn, log, mem, cfg.CatalogCacheTTL),
		Spells:     services.NewSpellCatalog(conn, log, mem, cfg.CatalogCacheTTL),
		Skills:     services.NewSkillCatalog(conn, log, mem, cfg.CatalogCacheTTL),
		Creatures:  services.NewCreatureCatalog(conn, log, mem, cfg.CatalogCacheTTL),
		Items:      services.NewItemCatalog(conn, log, mem, cfg.CatalogCacheTTL),
	})
	return srv.Router(), conn
}

func bearerToken(t *testing.T, email, name string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"name":  name,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doJSONWithCookies(t *testing.T, router *gin.Engine, method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(""))
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func promoteToAdmin(t *testing.T, conn *gorm.DB, email string) {
	t.Helper()
	// The user row may not exist yet; resolve it first through a request
	// path in the caller, or create it here directly.
	var user db.User
	err := conn.Where("email = ?", email).First(&user).Error
	if err != nil {
		user = db.User{Email: email, Name: email, Role: db.RoleAdmin}
		if err := conn.Create(&user).Error; err != nil {
			t.Fatalf("create admin: %v", err)
		}
		return
	}
	if err := conn.Model(&user).Update("role", db.RoleAdmin).Error; err != nil {
		t.Fatalf("promote admin: %v", err)
	}
}
