package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"keepers-ledger/internal/config"
	"keepers-ledger/internal/db"
	"keepers-ledger/internal/logger"
	"keepers-ledger/internal/services"
)

type Server struct {
	cfg        config.Config
	log        *logger.Logger
	sessions   *sessionStore
	identity   *services.IdentityService
	campaigns  *services.CampaignService
	characters *services.CharacterService
	weapons    *services.Catalog[db.Weapon]
	spells     *services.Catalog[db.Spell]
	skills     *services.Catalog[db.Skill]
	creatures  *services.Catalog[db.Creature]
	items      *services.Catalog[db.Item]
}

type Services struct {
	Identity   *services.IdentityService
	Campaigns  *services.CampaignService
	Characters *services.CharacterService
	Weapons    *services.Catalog[db.Weapon]
	Spells     *services.Catalog[db.Spell]
	Skills     *services.Catalog[db.Skill]
	Creatures  *services.Catalog[db.Creature]
	Items      *services.Catalog[db.Item]
}

func New(conn *gorm.DB, cfg config.Config, log *logger.Logger, svcs Services) *Server {
	return &Server{
		cfg:        cfg,
		log:        log.With("component", "server"),
		sessions:   newSessionStore(conn, cfg.SessionCookieName),
		identity:   svcs.Identity,
		campaigns:  svcs.Campaigns,
		characters: svcs.Characters,
		weapons:    svcs.Weapons,
		spells:     svcs.Spells,
		skills:     svcs.Skills,
		creatures:  svcs.Creatures,
		items:      svcs.Items,
	}
}

func (s *Server) Handler() http.Handler {
	return s.Router()
}

func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")

	// Logout stays outside requireAuth so a stale session cookie can
	// still be cleared.
	api.POST("/logout", s.handleLogout)

	// Reads are open; the catalogs double as a public rules reference.
	api.GET("/campaigns/open", s.handleListOpenCampaigns)
	registerCatalogRoutes(api, s, "weapons", s.weapons)
	registerCatalogRoutes(api, s, "spells", s.spells)
	registerCatalogRoutes(api, s, "skills", s.skills)
	registerCatalogRoutes(api, s, "creatures", s.creatures)
	registerCatalogRoutes(api, s, "items", s.items)

	authed := api.Group("")
	authed.Use(s.requireAuth())
	authed.GET("/me", s.handleMe)
	authed.GET("/campaigns", s.handleListUserCampaigns)
	authed.POST("/campaigns", s.handleCreateCampaign)
	authed.GET("/campaigns/:id", s.handleGetCampaign)
	authed.POST("/campaigns/:id/join", s.handleJoinCampaign)
	authed.GET("/campaigns/:id/membership", s.handleGetMembership)
	authed.GET("/campaigns/:id/characters", s.handleListCharacters)
	authed.POST("/campaigns/:id/characters", s.handleCreateCharacter)
	authed.POST("/characters/:id/activate", s.handleActivateCharacter)
	authed.POST("/characters/:id/retire", s.handleRetireCharacter)
	authed.POST("/characters/:id/death", s.handleCharacterDeath)

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
		)
	}
}
