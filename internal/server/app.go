package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"membervoice/backend/internal/config"
)

type App struct {
	cfg      config.Config
	db       *pgxpool.Pool
	agent    *agentClient
	memory   *zepClient
	images   *unsplashClient
	voiceTok *voiceTokenClient
}

func New(cfg config.Config, db *pgxpool.Pool) *App {
	timeout := time.Duration(cfg.AgentTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	return &App{
		cfg:      cfg,
		db:       db,
		agent:    newAgentClient(cfg.AgentCLMURL, cfg.AgentModel, httpClient),
		memory:   newZepClient(cfg.ZepBaseURL, cfg.ZepAPIKey, httpClient),
		images:   newUnsplashClient(cfg.UnsplashBaseURL, cfg.UnsplashAccessKey, httpClient),
		voiceTok: newVoiceTokenClient(cfg.HumeTokenURL, cfg.HumeAPIKey, cfg.HumeSecretKey, httpClient),
	}
}

func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", a.health)

	api := router.Group(a.cfg.APIPrefix)

	// The voice platform and the public site call these anonymously.
	api.POST("/chat/completions", a.chatCompletions)
	api.GET("/voice/token", a.voiceToken)
	api.POST("/voice/token", a.voiceToken)

	protected := api.Group("")
	protected.Use(a.authMiddleware())
	protected.GET("/memory/context", a.memoryContext)
	protected.GET("/images/search", a.searchImages)
	protected.POST("/quotes/estimate", a.quoteEstimate)
	protected.POST("/quotes/lead", a.quoteLead)

	return router
}

func (a *App) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "membervoice-api",
	})
}

// authMiddleware gates site-internal endpoints with a shared-secret bearer
// token. An empty BRIDGE_JWT_SECRET disables the check entirely: the marketing
// site calls these routes anonymously by default.
func (a *App) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := strings.TrimSpace(a.cfg.BridgeJWTSecret)
		if secret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}
		tokenString := strings.TrimSpace(authHeader[len("Bearer "):])
		if tokenString == "" {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if token.Method == nil || token.Method.Alg() != a.cfg.BridgeJWTAlgorithm {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			writeError(c, http.StatusUnauthorized, "Invalid bearer token")
			return
		}
		c.Next()
	}
}

func writeError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func mustJSON(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func truncateForLog(value string, limit int) string {
	trimmed := strings.TrimSpace(value)
	if limit <= 0 || len(trimmed) <= limit {
		return trimmed
	}
	return trimmed[:limit] + "...(truncated)"
}
