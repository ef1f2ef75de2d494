package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/forzencookie/sie-server/internal/models"
	"github.com/forzencookie/sie-server/internal/service"
)

// Handler holds the API handlers
type Handler struct {
	service service.Service
	log     zerolog.Logger
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service, log zerolog.Logger) *Handler {
	return &Handler{service: svc, log: log}
}

// SetupRoutes registers all API routes on the router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/signup", h.SignUp)
		auth.POST("/login", h.Login)
	}

	api := router.Group("/api")
	api.Use(AuthMiddleware())
	{
		api.POST("/sie/import", h.ImportSIE)
		api.GET("/reports/monthly", h.MonthlySummaries)
		api.POST("/reports/monthly/close", h.CloseMonth)
	}
}

func (h *Handler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ImportSIE handles POST /api/sie/import. The SIE file arrives as the
// multipart form field "file".
func (h *Handler) ImportSIE(c *gin.Context) {
	userID := c.GetString("userId")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to open uploaded SIE file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse SIE file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read uploaded SIE file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse SIE file"})
		return
	}

	resp, err := h.service.ImportSIE(c.Request.Context(), userID, string(content))
	if err != nil {
		h.log.Error().Err(err).Msg("SIE import failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse SIE file"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// MonthlySummaries handles GET /api/reports/monthly?year=YYYY.
// The year defaults to the current one when absent.
func (h *Handler) MonthlySummaries(c *gin.Context) {
	userID := c.GetString("userId")

	year := time.Now().UTC().Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
			return
		}
		year = parsed
	}

	resp, err := h.service.MonthlySummaries(c.Request.Context(), userID, year)
	if err != nil {
		h.log.Error().Err(err).Int("year", year).Msg("failed to compute monthly summaries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CloseMonth handles POST /api/reports/monthly/close with body
// {year, month, action} where action is "close" or "reopen".
func (h *Handler) CloseMonth(c *gin.Context) {
	userID := c.GetString("userId")

	var req models.CloseMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	var (
		resp *models.CloseMonthResponse
		err  error
	)
	if req.Action == "close" {
		resp, err = h.service.CloseMonth(c.Request.Context(), userID, req.Year, req.Month)
	} else {
		resp, err = h.service.ReopenMonth(c.Request.Context(), userID, req.Year, req.Month)
	}
	if err != nil {
		h.log.Error().Err(err).Str("action", req.Action).Msg("failed to update month lock")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
