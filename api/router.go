package api

import (
	"net/http"
	"strings"
	"sync"

	"learnhub/auth"
	"learnhub/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler hält die Services, die von den HTTP-Routen benutzt werden.
type Handler struct {
	Users     *services.UserService
	Tokens    *auth.TokenIssuer
	Projects  *services.ProjectService
	Ingest    *services.IngestService
	Resources *services.ResourceService
	Exports   *services.ExportService
	Logger    *zap.Logger

	background sync.WaitGroup
}

// Wait blockiert, bis alle im Hintergrund laufenden Refreshes beendet sind.
func (h *Handler) Wait() {
	h.background.Wait()
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	}
}

// NewRouter baut die gin-Engine mit allen Routen.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	authGroup := api.Group("/auth")
	authGroup.POST("/signup", h.signup)
	authGroup.POST("/login", h.login)

	protected := api.Group("")
	protected.Use(AuthMiddleware(h.Tokens, h.Users))
	h.setupProjectRoutes(protected)
	h.setupResourceRoutes(protected)

	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("Request mit Serverfehler",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Int("status", c.Writer.Status()))
		}
	}
}
