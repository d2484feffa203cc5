package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kovalyov-valentin/trendoai/internal/ai"
	"github.com/kovalyov-valentin/trendoai/internal/model"
	"github.com/kovalyov-valentin/trendoai/internal/publisher"
	"github.com/kovalyov-valentin/trendoai/internal/storage"
)

const (
	service = "TrendoAI"
	Version = "2.0.0"

	cronSecretHeader = "X-Cron-Secret"
	upcomingSlots    = 5
	maxPostsPerPage  = 50
)

type Runner interface {
	Trigger(topic, category string) bool
	Status() publisher.Status
}

type Schedule interface {
	Upcoming(t time.Time, n int) []time.Time
}

type Ladder interface {
	Current() (int, ai.Step)
}

type ArticleProvider interface {
	Recent(ctx context.Context, limit int) ([]model.Article, error)
	Stats(ctx context.Context) (storage.Stats, error)
}

type Server struct {
	echo *echo.Echo

	runner     Runner
	schedule   Schedule
	ladder     Ladder
	articles   ArticleProvider
	categories []string
	siteURL    string
}

func New(
	runner Runner,
	schedule Schedule,
	ladder Ladder,
	articles ArticleProvider,
	cronSecret string,
	categories []string,
	siteURL string,
) *Server {
	s := &Server{
		echo:       echo.New(),
		runner:     runner,
		schedule:   schedule,
		ladder:     ladder,
		articles:   articles,
		categories: categories,
		siteURL:    siteURL,
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())

	api := s.echo.Group("/api")
	api.GET("/health", s.health)
	api.GET("/stats", s.stats)
	api.GET("/posts", s.posts)

	cron := api.Group("/cron", CronSecret(cronSecret))
	cron.GET("/generate-post", s.generatePost)
	cron.POST("/generate-post", s.generatePost)
	cron.GET("/status", s.cronStatus)

	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start слушает addr, пока не закончится контекст, потом мягко гасит сервер
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return err
		}

		return ctx.Err()
	}
}

// CronSecret пропускает запрос с секретом в заголовке X-Cron-Secret или в параметре secret.
// Пустой секрет в конфиге закрывает эндпоинты совсем
func CronSecret(secret string) echo.MiddlewareFunc {
	secretBytes := []byte(secret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			provided := c.Request().Header.Get(cronSecretHeader)
			if provided == "" {
				provided = c.QueryParam("secret")
			}

			if len(secretBytes) == 0 || subtle.ConstantTimeCompare([]byte(provided), secretBytes) != 1 {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":   "Unauthorized",
					"message": "Invalid or missing CRON_SECRET",
				})
			}

			return next(c)
		}
	}
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   service,
		"version":   Version,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Цикл идет в фоне, ответ сразу
func (s *Server) generatePost(c echo.Context) error {
	status := "started"
	if !s.runner.Trigger(c.QueryParam("topic"), c.QueryParam("category")) {
		status = "already_running"
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

type cronStatusResponse struct {
	Status    string           `json:"status"`
	Upcoming  []time.Time      `json:"upcoming"`
	Tier      string           `json:"tier"`
	Model     string           `json:"model"`
	LastCycle publisher.Status `json:"last_cycle"`
	Timestamp time.Time        `json:"timestamp"`
}

func (s *Server) cronStatus(c echo.Context) error {
	now := time.Now()
	_, step := s.ladder.Current()

	return c.JSON(http.StatusOK, cronStatusResponse{
		Status:    "ok",
		Upcoming:  s.schedule.Upcoming(now, upcomingSlots),
		Tier:      step.Tier.String(),
		Model:     step.Profile.Model,
		LastCycle: s.runner.Status(),
		Timestamp: now,
	})
}

type statsResponse struct {
	storage.Stats
	Categories []string `json:"categories"`
}

func (s *Server) stats(c echo.Context) error {
	stats, err := s.articles.Stats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, statsResponse{Stats: stats, Categories: s.categories})
}

type postResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Category    string    `json:"category"`
	Keywords    string    `json:"keywords"`
	ImageURL    string    `json:"image_url"`
	ReadingTime int       `json:"reading_time"`
	Views       int64     `json:"views"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Server) posts(c echo.Context) error {
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive number")
		}
		limit = min(n, maxPostsPerPage)
	}

	articles, err := s.articles.Recent(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]postResponse, 0, len(articles))
	for _, a := range articles {
		resp = append(resp, postResponse{
			ID:          a.ID,
			Title:       a.Title,
			Slug:        a.Slug,
			Category:    a.Category,
			Keywords:    a.Keywords,
			ImageURL:    a.ImageURL,
			ReadingTime: a.ReadingTime,
			Views:       a.Views,
			URL:         publisher.PostURL(s.siteURL, a.ID),
			CreatedAt:   a.CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{"posts": resp})
}
