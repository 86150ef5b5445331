package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aluiziolira/go-manga-series/service"
)

// Handler serves series lookups over HTTP.
type Handler struct {
	Service *service.Service
	// WrapField renders field responses as {"<field>": value} instead of the bare value.
	WrapField bool
}

// HandleSeries serves GET /series/:mangaId.
func (h *Handler) HandleSeries(c *gin.Context) {
	mangaID := c.Param("mangaId")

	rec, err := h.Service.SeriesInfo(c.Request.Context(), mangaID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// HandleField serves GET /series/:mangaId/field/:field.
func (h *Handler) HandleField(c *gin.Context) {
	mangaID := c.Param("mangaId")
	field := c.Param("field")

	v, err := h.Service.FieldInfo(c.Request.Context(), mangaID, field)
	if err != nil {
		writeError(c, err)
		return
	}

	if h.WrapField {
		c.JSON(http.StatusOK, gin.H{field: v})
		return
	}
	c.JSON(http.StatusOK, v)
}

// HandleHealth serves GET /healthz.
func HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, service.ErrFieldNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Field not found"})
	case errors.Is(err, service.ErrFetchUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
