package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"negotiation-gateway/internal/classifier"
	"negotiation-gateway/internal/common/observability"
	"negotiation-gateway/internal/common/validation"
	"negotiation-gateway/internal/models"
	extractbid "negotiation-gateway/internal/workers/negotiation/extract-bid"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var chatMessageSchema = validation.MustValidator(validation.ChatMessageSchema)

// BidExtractor is satisfied by the extract-bid handler.
type BidExtractor interface {
	Execute(ctx context.Context, input *extractbid.Input) (*extractbid.Output, error)
}

// ReadyCheck reports whether a dependency can serve traffic.
type ReadyCheck func(ctx context.Context) error

type ServerConfig struct {
	Addr          string
	InputPath     string
	WebSocketPath string
	StaticDir     string
	AllowOrigins  []string
	RoundTimeout  time.Duration
}

// Server is the browser-facing API: chat ingress, round lifecycle,
// bid extraction and the websocket feed.
type Server struct {
	cfg       ServerConfig
	engine    *gin.Engine
	hub       *Hub
	forwarder *Forwarder
	rounds    *RoundStarter
	totals    *TotalsReporter
	extractor BidExtractor
	ready     map[string]ReadyCheck
	obs       *observability.Observability
	logger    Logger
}

type ServerDeps struct {
	Hub       *Hub
	Forwarder *Forwarder
	Rounds    *RoundStarter
	Totals    *TotalsReporter
	Extractor BidExtractor
	Ready     map[string]ReadyCheck
	Obs       *observability.Observability
	Logger    Logger
}

func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	if cfg.RoundTimeout == 0 {
		cfg.RoundTimeout = 30 * time.Second
	}
	s := &Server{
		cfg:       cfg,
		engine:    gin.New(),
		hub:       deps.Hub,
		forwarder: deps.Forwarder,
		rounds:    deps.Rounds,
		totals:    deps.Totals,
		extractor: deps.Extractor,
		ready:     deps.Ready,
		obs:       deps.Obs,
		logger:    deps.Logger,
	}

	s.hub.OnMessage(s.handleBrowserMessage)

	s.engine.Use(gin.Recovery(), requestLogger(s.logger), cors(cfg.AllowOrigins))
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.POST(s.cfg.InputPath, s.receiveMessage)
	s.engine.POST("/receiveRoundTotals", s.receiveRoundTotals)
	s.engine.POST("/receiveRejection", acknowledge)
	s.engine.POST("/startRound", acknowledge)
	s.engine.POST("/endRound", acknowledge)
	s.engine.POST("/extractBid", s.extractBid)

	s.engine.GET("/health", s.health)
	s.engine.GET("/ready", s.readiness)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.engine.GET(s.cfg.WebSocketPath, func(c *gin.Context) {
		s.hub.ServeWS(c.Writer, c.Request)
	})

	if s.cfg.StaticDir != "" {
		s.engine.Static("/static", s.cfg.StaticDir)
		s.engine.GET("/", func(c *gin.Context) {
			c.File(filepath.Join(s.cfg.StaticDir, "index.html"))
		})
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	return serve(ctx, s.cfg.Addr, s.engine, s.logger)
}

// handleBrowserMessage reacts to one websocket frame from the chat page.
func (s *Server) handleBrowserMessage(ctx context.Context, data []byte) {
	text := string(data)
	if text == models.StartRoundSignal {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.RoundTimeout)
		defer cancel()
		r, err := s.rounds.Start(ctx)
		if err != nil {
			s.logger.Error("new round failed", map[string]interface{}{"error": err})
			return
		}
		s.forwarder.SetEnvironment(r.EnvironmentUUID)
		return
	}
	if err := s.forwarder.SubmitUtterance(ctx, text); err != nil {
		s.logger.Warn("utterance not delivered", map[string]interface{}{"error": err})
	}
}

// receiveMessage shows an agent's message in the chat. Human lines are
// already on screen and are only acknowledged.
func (s *Server) receiveMessage(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := chatMessageSchema.ValidateBytes(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body is not JSON"})
		return
	}
	if !report.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": report.Error()})
		return
	}

	var head struct {
		Speaker string `json:"speaker"`
	}
	_ = json.Unmarshal(raw, &head)

	if head.Speaker != models.SpeakerHuman {
		if err := s.hub.Broadcast(json.RawMessage(raw)); err != nil {
			s.logger.Warn("chat message not broadcast", map[string]interface{}{"error": err})
		}
		s.obs.RecordBroadcast(c.Request.Context(), "chat")
	}
	c.JSON(http.StatusOK, models.NewTranscriptAck())
}

func (s *Server) receiveRoundTotals(c *gin.Context) {
	var totals models.RoundTotals
	if err := c.ShouldBindJSON(&totals); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.logger.Info("received round totals", map[string]interface{}{"participants": len(totals.RoundTotals)})

	s.totals.Report(c.Request.Context(), totals)
	s.obs.RecordBroadcast(c.Request.Context(), "round_totals")
	c.JSON(http.StatusOK, gin.H{"Status": "OK"})
}

func (s *Server) extractBid(c *gin.Context) {
	var input extractbid.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := s.extractor.Execute(c.Request.Context(), &input)
	switch {
	case errors.Is(err, extractbid.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, classifier.ErrClassifierTimeout), errors.Is(err, classifier.ErrClassificationFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !out.Recognized {
		c.Header("X-Interpretation-Outcome", out.Outcome)
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, out.Bid)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"clients": s.hub.Clients(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, check := range s.ready {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "failed": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func acknowledge(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "Acknowledged"})
}

func cors(allowed []string) gin.HandlerFunc {
	allowAll := len(allowed) == 0
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		set[o] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		switch {
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case set[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLogger(log Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request", map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}

func serve(ctx context.Context, addr string, handler http.Handler, log Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", map[string]interface{}{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
