package server

import (
	"time"

	"backend-runaway/internal/autopause"
	"backend-runaway/internal/config"
	"backend-runaway/internal/metrics"
	"backend-runaway/internal/recording"
	"backend-runaway/internal/route"
	"backend-runaway/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Recorder *recording.Recorder
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	hub := stream.NewHub(redisClient)

	var store recording.Store
	var activities *recording.ActivityStore
	if db != nil {
		activities = recording.NewActivityStore(db)
		store = activities
	}

	recorder := recording.NewRecorder(
		recording.Options{
			Route: route.Options{
				MaxAccuracyM: cfg.MaxAccuracyM,
				MaxSpeedMps:  cfg.MaxSpeedMps,
				SpeedWindow:  cfg.SpeedWindow,
			},
			Autopause: autopause.Options{
				PauseBelowMps:  cfg.AutopausePauseMps,
				ResumeAboveMps: cfg.AutopauseResumeMps,
				Debounce:       cfg.AutopauseDebounce(),
			},
		},
		time.Now,
		recording.PushProvider{},
		store,
		hub,
		metrics.NewCache[recording.Snapshot](redisClient, 24*time.Hour),
		metrics.NewCache[string](redisClient, 24*time.Hour),
	)

	s := &Server{
		App:      app,
		Cfg:      cfg,
		DB:       db,
		Redis:    redisClient,
		Stream:   hub,
		Recorder: recorder,
	}

	registerRoutes(s, activities)
	return s
}

func registerRoutes(s *Server, activities *recording.ActivityStore) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	recording.RegisterRoutes(s.App.Group("/recording"), s.Recorder, activities)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
