package list

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/strmhub-io/catalog/models"
	"github.com/strmhub-io/catalog/services/catalog"
)

type Handler struct {
	pager     *catalog.Pager
	refresher *catalog.Refresher
}

func RegisterHandler(r *gin.Engine, pager *catalog.Pager, refresher *catalog.Refresher) {
	h := &Handler{
		pager:     pager,
		refresher: refresher,
	}
	r.GET("/api/lists/:kind/:name", h.get)
	r.GET("/api/items/:kind/:ref", h.item)
	r.GET("/api/related/:kind/:slug", h.related)
	r.GET("/api/collections/:id", h.collection)
}

func (s *Handler) get(c *gin.Context) {
	kind, err := catalog.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	cursor := 0
	if raw := c.Query("cursor"); raw != "" {
		cursor, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cursor must be an integer"})
			return
		}
	}
	page, err := s.pager.Load(c.Request.Context(), kind, c.Param("name"), cursor)
	if err != nil {
		log.WithError(err).Errorf("failed to load %v list %v", kind, c.Param("name"))
		c.JSON(http.StatusBadGateway, gin.H{"error": "list unavailable"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Handler) item(c *gin.Context) {
	kind, err := catalog.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	ref, err := models.ParseItemRef(c.Param("ref"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	detail, err := s.pager.Item(c.Request.Context(), kind, ref)
	if errors.Is(err, catalog.ErrItemNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	if err != nil {
		log.WithError(err).Errorf("failed to load %v item %v", kind, c.Param("ref"))
		c.JSON(http.StatusBadGateway, gin.H{"error": "item unavailable"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Handler) related(c *gin.Context) {
	kind, err := catalog.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
	}
	items, err := s.refresher.Related(c.Request.Context(), kind, c.Param("slug"), limit)
	if err != nil {
		log.WithError(err).Errorf("failed to load related %v for %v", kind, c.Param("slug"))
		c.JSON(http.StatusBadGateway, gin.H{"error": "related items unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Handler) collection(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return
	}
	view, err := s.refresher.Collection(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).Errorf("failed to load collection %v", id)
		c.JSON(http.StatusBadGateway, gin.H{"error": "collection unavailable"})
		return
	}
	c.JSON(http.StatusOK, view)
}
