// cmd/server/main.go
package main

import (
	"context"
	"crypto/subtle"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"newsdesk/internal/config"
	"newsdesk/internal/database"
	"newsdesk/internal/models"
	"newsdesk/internal/pipeline/funds"
	"newsdesk/internal/pipeline/queue"
	"newsdesk/internal/pipeline/runlog"
	"newsdesk/internal/repository"
	apperrors "newsdesk/pkg/errors"
	appLogger "newsdesk/pkg/logger"
)

// formatValidationErrors turns validator field errors into one
// human-readable string for ErrorResponse.Details.
func formatValidationErrors(err error) string {
	var messages []string
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := strings.ToLower(e.Field())
			switch e.Tag() {
			case "required":
				messages = append(messages, field+" is required")
			case "dive":
				messages = append(messages, field+" has an invalid entry")
			default:
				messages = append(messages, field+" is invalid")
			}
		}
	}
	return strings.Join(messages, ", ")
}

func main() {
	logger := appLogger.NewLogger()
	logger.Info("starting newsdesk API server")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err.Error())
	}

	for _, warning := range cfg.ValidateAPIKeys() {
		logger.Warn(warning)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err.Error())
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", "error", err.Error())
	}

	rdb := database.ConnectRedis(cfg.RedisURL)
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", "error", err.Error())
	}
	defer rdb.Close()

	articles := repository.NewArticleRepository(db)
	runs := runlog.NewStore(db)
	q := queue.New(rdb)
	validate := validator.New()

	app := fiber.New(fiber.Config{
		AppName:       "newsdesk API",
		ServerHeader:  "newsdesk",
		StrictRouting: true,
		CaseSensitive: true,
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   60 * time.Second,
		BodyLimit:     4 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err.Error())

			if appErr, ok := apperrors.IsAppError(err); ok {
				return c.Status(appErr.Code).JSON(models.ErrorResponse{Error: true, Message: appErr.Message, Details: appErr.Details})
			}

			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(models.ErrorResponse{Error: true, Message: err.Error()})
		},
	})

	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(fiberLogger.New(fiberLogger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   cfg.Timezone,
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string { return c.IP() },
	}))
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDevelopment()}))

	adminOnly := func(c *fiber.Ctx) error {
		if cfg.AdminToken == "" {
			return fiber.NewError(fiber.StatusServiceUnavailable, "admin token not configured")
		}
		header := c.Get("Authorization")
		if subtle.ConstantTimeCompare([]byte(header), []byte("Bearer "+cfg.AdminToken)) != 1 {
			return apperrors.NewUnauthorizedError("invalid or missing admin token")
		}
		return c.Next()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/articles", func(c *fiber.Ctx) error {
		source := c.Query("source")
		category := c.Query("category")
		limit := c.QueryInt("limit", 20)
		offset := c.QueryInt("offset", 0)
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		list, err := articles.List(c.Context(), source, category, limit, offset)
		if err != nil {
			return apperrors.NewInternalServerError("failed to list articles", err)
		}
		return c.JSON(models.SuccessResponse{Success: true, Data: list})
	})

	app.Get("/funds/insights", func(c *fiber.Ctx) error {
		fundsArticles, err := articles.FundsArticles(c.Context())
		if err != nil {
			return apperrors.NewInternalServerError("failed to load funds articles", err)
		}
		return c.JSON(models.SuccessResponse{Success: true, Data: funds.Insight(fundsArticles)})
	})

	app.Get("/logs/recent", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 20)
		if limit <= 0 || limit > 200 {
			limit = 20
		}
		logs, err := runs.Recent(c.Context(), limit)
		if err != nil {
			return apperrors.NewInternalServerError("failed to load recent runs", err)
		}
		if source := c.Query("source"); source != "" {
			filtered := logs[:0]
			for _, l := range logs {
				if l.Source == source {
					filtered = append(filtered, l)
				}
			}
			logs = filtered
		}
		return c.JSON(models.SuccessResponse{Success: true, Data: logs})
	})

	app.Post("/scrape/run", adminOnly, func(c *fiber.Ctx) error {
		var req models.ScrapeRunRequest
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewBadRequestError("invalid request body", err)
		}
		if err := validate.Struct(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: true, Message: "validation failed", Details: formatValidationErrors(err),
			})
		}

		sources := req.Sources
		if req.Source != "" {
			sources = append(sources, req.Source)
		}
		if len(sources) == 0 {
			return apperrors.NewBadRequestError("source or sources is required", nil)
		}

		jobs := make([]models.ScrapeJob, 0, len(sources))
		for _, source := range sources {
			runID := uuid.New().String()
			if err := q.PublishScrape(c.Context(), queue.ScrapeMessage{Source: source, TaskID: runID}); err != nil {
				return apperrors.NewInternalServerError("failed to enqueue scrape task", err)
			}
			jobs = append(jobs, models.ScrapeJob{Source: source, TaskID: runID})
		}

		return c.JSON(models.ScrapeRunResponse{Queued: true, Jobs: jobs})
	})

	app.Post("/ml/analyze", adminOnly, func(c *fiber.Ctx) error {
		var req models.MLAnalyzeRequest
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewBadRequestError("invalid request body", err)
		}
		if err := validate.Struct(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: true, Message: "validation failed", Details: formatValidationErrors(err),
			})
		}

		articleIDs := req.ArticleIDs
		if len(articleIDs) == 0 && req.Since != "" {
			since, err := time.Parse(time.RFC3339, req.Since)
			if err != nil {
				return apperrors.NewBadRequestError("since must be ISO-8601", err)
			}
			sinceArticles, err := articles.ListSince(c.Context(), since, 1000)
			if err != nil {
				return apperrors.NewInternalServerError("failed to list articles since", err)
			}
			for _, a := range sinceArticles {
				articleIDs = append(articleIDs, a.ID)
			}
		}
		if len(articleIDs) == 0 {
			return apperrors.NewBadRequestError("article_ids or since is required", nil)
		}

		taskID := uuid.New().String()
		if err := q.PublishAnalyze(c.Context(), queue.AnalyzeMessage{ArticleIDs: articleIDs, TaskID: taskID}); err != nil {
			return apperrors.NewInternalServerError("failed to enqueue analysis task", err)
		}

		return c.JSON(models.MLAnalyzeResponse{Queued: true, TaskID: taskID, ArticleCount: len(articleIDs)})
	})

	app.Get("/scrape/status/:task_id", func(c *fiber.Ctx) error {
		run, err := runs.GetByRunID(c.Context(), c.Params("task_id"))
		if err != nil {
			if err == runlog.ErrRunNotFound {
				return c.Status(fiber.StatusNotFound).JSON(models.TaskStatusResponse{Status: "pending"})
			}
			return apperrors.NewInternalServerError("failed to load run status", err)
		}

		status := "pending"
		switch run.Status {
		case models.RunStatusSuccess:
			status = "completed"
		case models.RunStatusError:
			status = "failed"
		}

		resp := models.TaskStatusResponse{Status: status, Result: run}
		if run.ErrorMessage != nil {
			resp.Error = *run.ErrorMessage
		}
		return c.JSON(resp)
	})

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-shutdown
		logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(ctx); err != nil {
			logger.Error("server forced to shutdown", "error", err.Error())
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("listening", "address", addr, "environment", cfg.Environment)
	if err := app.Listen(addr); err != nil {
		logger.Fatal("server failed to start", "error", err.Error())
	}
}

