package leaderboard

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/hyperstack/internal/storage"
)

// ServerOptions configures a leaderboard Server.
type ServerOptions struct {
	Repo       storage.Repository
	CORSOrigin string // Access-Control-Allow-Origin, "*" when empty
	Release    bool   // gin release mode
	Logger     *log.Logger
}

// Server serves the leaderboard JSON API.
type Server struct {
	router  *gin.Engine
	repo    storage.Repository
	metrics *Metrics
	logger  *log.Logger
	origin  string
}

type loginRequest struct {
	Username string `json:"username"`
}

type saveRequest struct {
	Username string   `json:"username"`
	Score    *float64 `json:"score"`
	Game     string   `json:"game"`
}

// NewServer builds the router and its routes.
func NewServer(opts ServerOptions) *Server {
	if opts.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "hyperstack-api",
		})
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:  router,
		repo:    opts.Repo,
		metrics: NewMetrics("hyperstack"),
		logger:  opts.Logger,
		origin:  opts.CORSOrigin,
	}

	router.Use(s.requestLogger(), s.metrics.Handler(), s.cors())
	s.metrics.RegisterEndpoint(router)
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", s.handleLogin)
		auth.GET("/check/:username", s.handleCheck)
	}

	board := api.Group("/leaderboard")
	{
		board.POST("/save", s.handleSave)
		board.GET("/top", s.handleTop)
		board.GET("/top/:limit", s.handleTop)
		board.GET("/global", s.handleGlobal)
		board.GET("/global/:limit", s.handleGlobal)
		board.GET("/user/:username", s.handleUser)
		board.GET("/rank/:username", s.handleRank)
	}

	s.router.GET("/health", s.handleHealth)
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting leaderboard API", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", s.origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	username, errs := ValidateUsername(req.Username)
	if len(errs) > 0 {
		badRequest(c, errs...)
		return
	}

	user, err := s.repo.Login(c.Request.Context(), username)
	if err != nil {
		s.serverError(c, "login failed", err)
		return
	}
	s.metrics.recordLogin()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": Player{
			Username:  user.Username,
			CreatedAt: user.CreatedAt,
		},
	})
}

func (s *Server) handleCheck(c *gin.Context) {
	username, errs := ValidateUsername(c.Param("username"))
	if len(errs) > 0 {
		c.JSON(http.StatusOK, gin.H{"exists": false})
		return
	}

	exists, err := s.repo.UserExists(c.Request.Context(), username)
	if err != nil {
		s.serverError(c, "check failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

func (s *Server) handleSave(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	// Scores accept any non-empty name; the login rules apply only to /login.
	var errs []string
	username := strings.TrimSpace(req.Username)
	if username == "" {
		errs = append(errs, "username is required")
	}
	score, scoreErrs := ValidateScore(req.Score)
	errs = append(errs, scoreErrs...)
	if len(errs) > 0 {
		badRequest(c, errs...)
		return
	}

	entry, err := s.repo.SaveScore(c.Request.Context(), username, gameParam(c, req.Game), score)
	if err != nil {
		s.serverError(c, "failed to save score", err)
		return
	}
	s.metrics.recordScore(entry.GameID, entry.Score)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Score saved successfully",
		"score":   toEntry(entry),
	})
}

func (s *Server) handleTop(c *gin.Context) {
	entries, err := s.repo.TopScores(c.Request.Context(), gameParam(c, ""), limitParam(c.Param("limit")))
	if err != nil {
		s.serverError(c, "failed to load leaderboard", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "leaderboard": toEntries(entries)})
}

func (s *Server) handleGlobal(c *gin.Context) {
	entries, err := s.repo.GlobalLeaderboard(c.Request.Context(), gameParam(c, ""), limitParam(c.Param("limit")))
	if err != nil {
		s.serverError(c, "failed to load leaderboard", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "leaderboard": toEntries(entries)})
}

func (s *Server) handleUser(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")
	gameID := gameParam(c, "")

	entries, err := s.repo.UserScores(ctx, username, gameID, limitParam(c.Query("limit")))
	if err != nil {
		s.serverError(c, "failed to load scores", err)
		return
	}

	best := 0
	if b, err := s.repo.BestScore(ctx, username, gameID); err == nil {
		best = b
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.serverError(c, "failed to load scores", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"scores":    toEntries(entries),
		"bestScore": best,
	})
}

func (s *Server) handleRank(c *gin.Context) {
	rank, best, err := storage.Rank(c.Request.Context(), s.repo, c.Param("username"), gameParam(c, ""))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"rank":    nil,
			"message": "No scores found for this user",
		})
		return
	}
	if err != nil {
		s.serverError(c, "failed to compute rank", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"rank":      rank,
		"bestScore": best,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

func (s *Server) serverError(c *gin.Context, message string, err error) {
	s.logger.Error(message, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": message,
	})
}

func badRequest(c *gin.Context, errs ...string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"errors":  errs,
	})
}

// gameParam picks the game from the body, then the ?game= query.
func gameParam(c *gin.Context, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	if g := c.Query("game"); g != "" {
		return g
	}
	return storage.DefaultGameID
}

// limitParam parses a limit; storage applies the default and the cap.
func limitParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func toEntry(e storage.ScoreEntry) Entry {
	return Entry{
		ID:        e.ID,
		Username:  e.Username,
		Score:     e.Score,
		CreatedAt: e.CreatedAt,
	}
}

func toEntries(es []storage.ScoreEntry) []Entry {
	out := make([]Entry, 0, len(es))
	for _, e := range es {
		out = append(out, toEntry(e))
	}
	return out
}
