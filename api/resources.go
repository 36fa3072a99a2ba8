package api

import (
	"errors"
	"io"
	"net/http"

	"learnhub/models"
	"learnhub/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// kindSegments ordnet die URL-Segmente den Ressourcenarten zu.
var kindSegments = []struct {
	segment string
	kind    models.Kind
}{
	{"videos", models.KindVideo},
	{"academic-papers", models.KindAcademicPaper},
	{"ebooks", models.KindEBook},
	{"repositories", models.KindRepository},
}

type addVideoRequest struct {
	VideoURL string `json:"video_url" binding:"required,notblank"`
}

type ingestRequest struct {
	Keywords []string `json:"keywords"`
}

type interactionRequest struct {
	Rating    *float64 `json:"rating"`
	Relevance *bool    `json:"relevance"`
}

func (h *Handler) setupResourceRoutes(rg *gin.RouterGroup) {
	for _, ks := range kindSegments {
		group := rg.Group("/" + ks.segment)
		kind := ks.kind

		group.GET("/project/:id", h.listResources(kind))
		group.GET("/:id", h.getResource(kind))
		group.DELETE("/:id", h.deleteResource(kind))
		group.PATCH("/:id/interaction", h.recordInteraction(kind))

		switch kind {
		case models.KindVideo:
			group.POST("/:id", h.addVideo)
			group.POST("/:id/ingest", h.ingestResources(kind))
		case models.KindAcademicPaper, models.KindEBook:
			group.POST("/:id", h.ingestResources(kind))
			group.GET("/:id/citation", h.citation(kind))
		default:
			group.POST("/:id", h.ingestResources(kind))
		}
	}
}

func (h *Handler) addVideo(c *gin.Context) {
	projectID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req addVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	video, err := h.Ingest.AddVideo(c.Request.Context(), currentUser(c).ID, projectID, req.VideoURL)
	if err != nil {
		respondError(c, h.Logger, "add video", err)
		return
	}
	c.JSON(http.StatusCreated, video)
}

// ingestResources sucht für ein Projekt neue Ressourcen. Ohne Keywords im Body gelten die des Projekts.
func (h *Handler) ingestResources(kind models.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := paramUUID(c, "id")
		if !ok {
			return
		}
		var req ingestRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		ctx := c.Request.Context()
		userID := currentUser(c).ID
		var (
			items any
			count int
			err   error
		)
		switch kind {
		case models.KindVideo:
			var v []*models.Video
			v, err = h.Ingest.IngestVideos(ctx, userID, projectID, req.Keywords)
			items, count = v, len(v)
		case models.KindAcademicPaper:
			var v []*models.AcademicPaper
			v, err = h.Ingest.IngestPapers(ctx, userID, projectID, req.Keywords)
			items, count = v, len(v)
		case models.KindEBook:
			var v []*models.EBook
			v, err = h.Ingest.IngestEBooks(ctx, userID, projectID, req.Keywords)
			items, count = v, len(v)
		case models.KindRepository:
			var v []*models.Repository
			v, err = h.Ingest.IngestRepositories(ctx, userID, projectID, req.Keywords)
			items, count = v, len(v)
		}
		if err != nil {
			respondError(c, h.Logger, "ingest "+string(kind), err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "total": count})
	}
}

func (h *Handler) listResources(kind models.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := paramUUID(c, "id")
		if !ok {
			return
		}
		items, err := h.Resources.List(c.Request.Context(), currentUser(c).ID, projectID, kind)
		if err != nil {
			respondError(c, h.Logger, "list "+string(kind), err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func (h *Handler) getResource(kind models.Kind) gin.HandlerFunc {
	return withResourceID(func(c *gin.Context, id uuid.UUID) {
		res, err := h.Resources.Get(c.Request.Context(), currentUser(c).ID, kind, id)
		if err != nil {
			respondError(c, h.Logger, "get "+string(kind), err)
			return
		}
		c.JSON(http.StatusOK, res)
	})
}

func (h *Handler) deleteResource(kind models.Kind) gin.HandlerFunc {
	return withResourceID(func(c *gin.Context, id uuid.UUID) {
		if err := h.Resources.Delete(c.Request.Context(), currentUser(c).ID, kind, id); err != nil {
			respondError(c, h.Logger, "delete "+string(kind), err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Resource deleted"})
	})
}

// recordInteraction speichert ein Rating. Ein leerer Body zählt als Klick.
func (h *Handler) recordInteraction(kind models.Kind) gin.HandlerFunc {
	return withResourceID(func(c *gin.Context, id uuid.UUID) {
		var req interactionRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
		res, err := h.Resources.RecordInteraction(c.Request.Context(), currentUser(c).ID, kind, id, services.InteractionInput{
			Rating:    req.Rating,
			Relevance: req.Relevance,
		})
		if err != nil {
			respondError(c, h.Logger, "record interaction", err)
			return
		}
		c.JSON(http.StatusOK, res)
	})
}

func (h *Handler) citation(kind models.Kind) gin.HandlerFunc {
	return withResourceID(func(c *gin.Context, id uuid.UUID) {
		citation, err := h.Resources.Citation(c.Request.Context(), currentUser(c).ID, kind, id)
		if err != nil {
			respondError(c, h.Logger, "citation", err)
			return
		}
		c.JSON(http.StatusOK, citation)
	})
}

func withResourceID(fn func(*gin.Context, uuid.UUID)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramUUID(c, "id")
		if !ok {
			return
		}
		fn(c, id)
	}
}
