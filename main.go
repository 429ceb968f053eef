package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Sam1808/Fish-shop-bot/bot"
	"github.com/Sam1808/Fish-shop-bot/commerce"
	"github.com/Sam1808/Fish-shop-bot/routes"
	"github.com/Sam1808/Fish-shop-bot/session"
)

// sessionStore is what main needs from a store backend: the engine contract
// plus a health ping.
type sessionStore interface {
	session.Store
	routes.Pinger
}

func main() {
	log.Println("✅ Starting fish shop bot...")

	// Load environment variables
	_ = godotenv.Load()

	store := initSessionStore()

	client := commerce.New(
		getenvDefault("API_BASE_URL", "https://api.moltin.com"),
		mustGetenv("CLIENT_ID"),
		mustGetenv("CLIENT_SECRET"),
	)

	engine := bot.NewEngine(store, client)

	telegram, err := bot.NewTelegram(mustGetenv("TELEGRAM_TOKEN"), engine)
	if err != nil {
		log.Fatalf("❌ Telegram connection failed: %v", err)
	}

	// Probe endpoints next to the poller
	r := gin.Default()
	routes.SetupRoutes(r, store)
	port := getenvDefault("PORT", "8080")
	go func() {
		log.Printf("🚀 Health server running on port %s...", port)
		if err := r.Run(":" + port); err != nil {
			log.Fatalf("❌ Failed to start health server: %v", err)
		}
	}()

	log.Println("🚀 Bot is polling...")
	telegram.Start()
}

// initSessionStore picks the session backend from the environment:
// redis (default), postgres, or memory for local runs.
func initSessionStore() sessionStore {
	switch backend := getenvDefault("SESSION_BACKEND", "redis"); backend {
	case "redis":
		db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
		store, err := session.NewRedisStore(
			context.Background(),
			getenvDefault("REDIS_ADDR", "localhost:6379"),
			os.Getenv("REDIS_PASSWORD"),
			db,
		)
		if err != nil {
			log.Fatalf("❌ Redis connection failed: %v", err)
		}
		return store

	case "postgres":
		store, err := session.NewPostgresStore(postgresDSN())
		if err != nil {
			log.Fatalf("❌ DB connection failed: %v", err)
		}
		return store

	case "memory":
		log.Println("⚠️ Using in-memory sessions; state is lost on restart")
		return session.NewMemoryStore()

	default:
		log.Fatalf("❌ Unknown SESSION_BACKEND %q", backend)
		return nil
	}
}

// postgresDSN builds the connection string from DATABASE_URL or the DB_*
// variables.
func postgresDSN() string {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		return databaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
}

func mustGetenv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("❌ %s is required", key)
	}
	return value
}

func getenvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
