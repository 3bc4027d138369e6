package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/sightline/internal/api/handlers"
	"github.com/your-org/sightline/internal/api/ws"
	"github.com/your-org/sightline/internal/auth"
	"github.com/your-org/sightline/internal/llm"
	"github.com/your-org/sightline/internal/queue"
	"github.com/your-org/sightline/internal/storage"
	"github.com/your-org/sightline/internal/vision"
)

type RouterConfig struct {
	Store  *storage.Store
	Issuer *auth.Issuer
	Vision *vision.Service
	LLM    *llm.Service

	BcryptCost          int
	ConfidenceThreshold float64
	DetectTimeout       time.Duration
	AskTimeout          time.Duration

	// Optional integrations; may be nil.
	Snapshots *storage.SnapshotStore
	Producer  *queue.Producer
	Hub       *ws.Hub
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.Store, cfg.Snapshots, cfg.Producer)
	r.GET("/", systemH.Root)
	r.GET("/health", systemH.Health)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authH := handlers.NewAuthHandler(cfg.Store, cfg.Issuer, cfg.BcryptCost)
	r.POST("/api/signup", authH.Signup)
	r.POST("/api/login", authH.Login)

	// Protected routes
	detectH := handlers.NewDetectHandler(cfg.Vision, cfg.ConfidenceThreshold, cfg.DetectTimeout).
		WithSnapshots(cfg.Snapshots).
		WithProducer(cfg.Producer).
		WithHub(cfg.Hub)
	askH := handlers.NewAskHandler(cfg.LLM, cfg.AskTimeout)

	protected := r.Group("/api")
	protected.Use(auth.Middleware(cfg.Issuer, cfg.Store))
	protected.GET("/me", authH.Me)
	protected.POST("/detect", detectH.Detect)
	protected.POST("/ask", askH.Ask)
	if cfg.Hub != nil {
		protected.GET("/ws", cfg.Hub.HandleWS)
	}

	return r
}
