package server

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"

	"keepers-ledger/internal/db"
	"keepers-ledger/internal/services"
)

// catalogHandlers wires one reference-data kind to the shared route shape.
// Reads are public; writes sit behind the catalog-admin policy.
type catalogHandlers[T db.CatalogRow] struct {
	server *Server
	svc    *services.Catalog[T]
}

func registerCatalogRoutes[T db.CatalogRow](group *gin.RouterGroup, s *Server, kind string, svc *services.Catalog[T]) {
	h := catalogHandlers[T]{server: s, svc: svc}
	group.GET("/"+kind, h.list)
	group.GET("/"+kind+"/:id", h.get)

	admin := group.Group("", s.requireAuth(), s.requireCatalogAdmin())
	admin.POST("/"+kind, h.create)
	admin.PUT("/"+kind+"/:id", h.update)
	admin.DELETE("/"+kind+"/:id", h.remove)
}

func (h catalogHandlers[T]) list(c *gin.Context) {
	page, perPage := parsePagination(c, h.server.cfg.DefaultCatalogPageSize, h.server.cfg.MaxCatalogPageSize)
	filter := services.CatalogFilter{
		Query:    strings.TrimSpace(c.Query("q")),
		Category: strings.TrimSpace(c.Query("category")),
		Page:     page,
		PerPage:  perPage,
	}
	rows, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.server.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":    rows,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (h catalogHandlers[T]) get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	row, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.server.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h catalogHandlers[T]) create(c *gin.Context) {
	var row T
	if err := c.ShouldBindJSON(&row); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	setRowID(&row, 0)
	if err := h.svc.Create(c.Request.Context(), &row); err != nil {
		h.server.respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (h catalogHandlers[T]) update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var row T
	if err := c.ShouldBindJSON(&row); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	setRowID(&row, id)
	if err := h.svc.Update(c.Request.Context(), &row); err != nil {
		h.server.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h catalogHandlers[T]) remove(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.server.respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// setRowID forces the path id into the model so a body cannot redirect a
// write to another row.
func setRowID[T db.CatalogRow](row *T, id uint) {
	reflect.ValueOf(row).Elem().FieldByName("ID").SetUint(uint64(id))
}
