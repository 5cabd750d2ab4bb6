//go:build !cli
// +build !cli

package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"partstrack/api"
	"partstrack/config"
	"partstrack/core/auth"
	"partstrack/service/inventory"
	"partstrack/service/notify"
	"partstrack/service/purchaseorder"

	_ "partstrack/api/dashboard"
	_ "partstrack/api/machines"
	_ "partstrack/api/parts"
	_ "partstrack/api/purchaseorders"
	_ "partstrack/api/realtime"
	_ "partstrack/api/suppliers"
	_ "partstrack/api/transactions"
	_ "partstrack/graphqlserver"
)

func main() {
	config.LoadEnv()
	config.LoadAppConfig()

	config.InitRedis()
	redisStatus := "Redis not configured, pub/sub and caching run in-process."
	if config.RedisClient != nil {
		if err := config.RedisClient.Ping(config.RedisCtx()).Err(); err == nil {
			redisStatus = "Redis connection successful."
		} else {
			config.RedisClient = nil
			redisStatus = "Redis configured but not reachable, falling back to in-process."
		}
	}
	log.Println(redisStatus)

	db, err := config.NewDB()
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	sqldb, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get DB instance: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	log.Println("Database connection successful.")

	hub := notify.NewHub()
	notifier := notify.Fanout{hub}
	if config.RedisClient != nil {
		notifier = append(notifier, notify.NewRedisPublisher(config.RedisClient, os.Getenv("EVENTS_CHANNEL")))
	}

	adjuster := inventory.NewAdjuster(db, notifier)
	deps := &api.Deps{
		DB:        db,
		Notifier:  notifier,
		Hub:       hub,
		Inventory: adjuster,
		Orders:    purchaseorder.NewService(db, adjuster, notifier),
	}

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	// Gzip buffers responses, which would stall the SSE stream.
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api/realtime/events")
		},
	}))
	e.Use(middleware.Decompress())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start).Milliseconds()
			c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
			return err
		}
	})

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	apiGroup := e.Group("/api")
	apiGroup.Use(auth.Middleware())
	api.ApplyModules(apiGroup, deps)
	api.ApplyRoutes(e, deps)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on :%s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
