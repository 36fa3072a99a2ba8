package api

import (
	"context"
	"net/http"

	"learnhub/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type createProjectRequest struct {
	Title       string   `json:"title" binding:"required,notblank"`
	Keywords    []string `json:"keywords"`
	FetchVideos *bool    `json:"fetch_videos"`
}

type updateProjectRequest struct {
	Title    *string  `json:"title"`
	Keywords []string `json:"keywords"`
}

func (h *Handler) setupProjectRoutes(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	projects.POST("", h.createProject)
	projects.GET("", h.listProjects)
	projects.GET("/:id", h.getProject)
	projects.PATCH("/:id", h.updateProject)
	projects.DELETE("/:id", h.deleteProject)
	projects.POST("/:id/refresh", h.refreshProject)
	projects.POST("/:id/export", h.exportProject)
	projects.GET("/:id/bibliography", h.projectBibliography)
}

func (h *Handler) createProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	user := currentUser(c)
	result, err := h.Ingest.CreateProject(c.Request.Context(), user.ID, services.CreateProjectInput{
		Title:       req.Title,
		Keywords:    req.Keywords,
		FetchVideos: req.FetchVideos,
	})
	if err != nil {
		respondError(c, h.Logger, "create project", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) listProjects(c *gin.Context) {
	projects, err := h.Projects.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.Logger, "list projects", err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *Handler) getProject(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	detail, err := h.Projects.Get(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		respondError(c, h.Logger, "get project", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) updateProject(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	project, err := h.Projects.Update(c.Request.Context(), currentUser(c).ID, id, services.UpdateProjectInput{
		Title:    req.Title,
		Keywords: req.Keywords,
	})
	if err != nil {
		respondError(c, h.Logger, "update project", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) deleteProject(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.Projects.Delete(c.Request.Context(), currentUser(c).ID, id); err != nil {
		respondError(c, h.Logger, "delete project", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

// refreshProject prüft den Besitz synchron und startet den Abgleich im Hintergrund.
func (h *Handler) refreshProject(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	project, err := h.Projects.Find(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		respondError(c, h.Logger, "refresh project", err)
		return
	}

	h.background.Add(1)
	go func() {
		defer h.background.Done()
		reports := h.Ingest.RefreshProject(context.Background(), project)
		h.Logger.Info("Projekt-Refresh abgeschlossen",
			zap.String("project", project.ID.String()),
			zap.Any("reports", reports))
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "Refresh started", "project_id": project.ID})
}

func (h *Handler) exportProject(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.Exports.ExportProject(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		respondError(c, h.Logger, "export project", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// projectBibliography liefert JSON oder mit ?format=text eine Klartextliste.
func (h *Handler) projectBibliography(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	bib, err := h.Resources.Bibliography(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		respondError(c, h.Logger, "bibliography", err)
		return
	}
	if c.Query("format") == "text" {
		c.String(http.StatusOK, bib.Text())
		return
	}
	c.JSON(http.StatusOK, bib)
}
