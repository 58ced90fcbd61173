package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/shortyhq/shorty/internal/config"
	apperrors "github.com/shortyhq/shorty/internal/errors"
	"github.com/shortyhq/shorty/internal/models"
	"github.com/shortyhq/shorty/internal/services"
)

// ClickEventsChannel receives one event per successful resolution. The
// redirect handler sends without blocking; the workers package drains it.
var ClickEventsChannel chan models.ClickEvent

// SetupRoutes configures all routes and injects the dependencies.
func SetupRoutes(router *gin.Engine, linkService *services.LinkService, cfg *config.Config) {
	if ClickEventsChannel == nil {
		ClickEventsChannel = make(chan models.ClickEvent, cfg.Analytics.BufferSize)
	}

	router.Use(IdentityMiddleware(cfg.Auth.JWTSecret))

	router.GET("/health", HealthCheckHandler)
	router.GET("/", HomeHandler(cfg))

	api := router.Group("/api")
	{
		api.POST("/shorten", ShortenHandler(linkService, cfg))
		api.GET("/links/:code/stats", LinkStatsHandler(linkService))
		api.GET("/qr/:code", QRCodeHandler(linkService))
	}

	// Redirection lives at root level, e.g. localhost:8080/abc123.
	router.GET("/:code", RedirectHandler(linkService))
}

// HealthCheckHandler answers liveness probes.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HomeHandler describes the service. The browser UI is served elsewhere;
// this endpoint only points API callers at the right routes.
func HomeHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "shorty",
			"baseUrl": resolveBaseURL(c, cfg),
			"endpoints": gin.H{
				"shorten":  "POST /api/shorten",
				"redirect": "GET /:code",
				"stats":    "GET /api/links/:code/stats",
				"qr":       "GET /api/qr/:code",
			},
		})
	}
}

// ShortenRequest is the body of POST /api/shorten. LongURLs allows batching
// several destinations in one call; aliases only apply to single requests.
type ShortenRequest struct {
	LongURL     string   `json:"longUrl"`
	CustomAlias string   `json:"customAlias"`
	LongURLs    []string `json:"longUrls"`
}

// ShortenResult is one entry of a batch response.
type ShortenResult struct {
	Code     string `json:"code,omitempty"`
	LongURL  string `json:"longUrl"`
	ShortURL string `json:"shortUrl,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// ShortenHandler creates one or several short links.
func ShortenHandler(linkService *services.LinkService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ShortenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		if req.LongURL == "" && len(req.LongURLs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Either 'longUrl' or 'longUrls' must be provided"})
			return
		}

		base := resolveBaseURL(c, cfg)
		owner := OwnerID(c)

		if len(req.LongURLs) > 0 {
			handleBatch(c, linkService, req.LongURLs, owner, base)
			return
		}

		link, err := linkService.CreateLink(c.Request.Context(), req.LongURL, req.CustomAlias, owner, base)
		if err != nil {
			status, msg := shortenErrorResponse(err)
			c.JSON(status, gin.H{"error": msg})
			return
		}
		c.JSON(http.StatusOK, link)
	}
}

// handleBatch shortens every URL independently so one bad destination
// doesn't fail the whole request.
func handleBatch(c *gin.Context, linkService *services.LinkService, urls []string, owner, base string) {
	results := make([]ShortenResult, 0, len(urls))
	successful := 0

	for _, longURL := range urls {
		result := ShortenResult{LongURL: longURL}
		link, err := linkService.CreateLink(c.Request.Context(), longURL, "", owner, base)
		if err != nil {
			_, result.Error = shortenErrorResponse(err)
		} else {
			result.Success = true
			result.Code = link.Code
			result.ShortURL = link.ShortURL
			successful++
		}
		results = append(results, result)
	}

	status := http.StatusOK
	if successful == 0 {
		status = http.StatusBadRequest
	} else if successful < len(urls) {
		status = http.StatusMultiStatus
	}

	c.JSON(status, gin.H{
		"results": results,
		"summary": gin.H{
			"total":      len(urls),
			"successful": successful,
			"failed":     len(urls) - successful,
		},
	})
}

func shortenErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidURL):
		return http.StatusBadRequest, "Invalid URL supplied"
	case errors.Is(err, apperrors.ErrAliasConflict):
		return http.StatusConflict, "Alias already in use"
	case errors.Is(err, apperrors.ErrShortCodeGenerationFailed):
		return http.StatusServiceUnavailable, "Unable to generate unique short code. Please try again later."
	default:
		log.Printf("Error creating link: %v", err)
		return http.StatusInternalServerError, "Failed to create short link"
	}
}

// RedirectHandler resolves a code and issues the 302. A click event is
// queued without blocking; when the buffer is full the event is dropped
// rather than delaying the user.
func RedirectHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")

		link, err := linkService.Resolve(c.Request.Context(), code)
		if err != nil {
			if errors.Is(err, apperrors.ErrShortCodeNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Short link not found"})
				return
			}
			log.Printf("Error resolving '%s': %v", code, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		event := models.ClickEvent{
			Code:      code,
			Timestamp: time.Now(),
			Referrer:  c.GetHeader("Referer"),
			UserAgent: c.GetHeader("User-Agent"),
		}
		select {
		case ClickEventsChannel <- event:
		default:
			log.Printf("WARNING: click events channel is full, dropping event for '%s'", code)
		}

		c.Redirect(http.StatusFound, link.LongURL)
	}
}

// LinkStatsHandler returns the metadata and click count for a code.
func LinkStatsHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")

		link, err := linkService.GetLinkByCode(c.Request.Context(), code)
		if err != nil {
			if errors.Is(err, apperrors.ErrShortCodeNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Short link not found"})
				return
			}
			log.Printf("Error retrieving stats for '%s': %v", code, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		stats := gin.H{
			"code":      link.Code,
			"longUrl":   link.LongURL,
			"shortUrl":  link.ShortURL,
			"clicks":    link.Clicks,
			"createdAt": link.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if events, ok := linkService.CountRecordedClicks(c.Request.Context(), code); ok {
			stats["recordedEvents"] = events
		}
		c.JSON(http.StatusOK, stats)
	}
}

// QRCodeHandler encodes the short URL of an existing code as a PNG. The
// encoder is a pure collaborator: it only ever sees the final short URL
// string.
func QRCodeHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")

		link, err := linkService.GetLinkByCode(c.Request.Context(), code)
		if err != nil {
			if errors.Is(err, apperrors.ErrShortCodeNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Short link not found"})
				return
			}
			log.Printf("Error retrieving link for QR '%s': %v", code, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		png, err := qrcode.Encode(link.ShortURL, qrcode.Medium, 256)
		if err != nil {
			log.Printf("Error encoding QR for '%s': %v", code, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode QR code"})
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	}
}

// resolveBaseURL prefers the configured base URL and falls back to the
// scheme and host of the incoming request.
func resolveBaseURL(c *gin.Context, cfg *config.Config) string {
	if cfg.Server.BaseURL != "" {
		return cfg.Server.BaseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
