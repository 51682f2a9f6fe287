package main

import (
	"log"
	"os"
	"time"

	"go-pos-local/internal/ai"
	"go-pos-local/internal/auth"
	"go-pos-local/internal/checkout"
	"go-pos-local/internal/config"
	"go-pos-local/internal/database"
	"go-pos-local/internal/handlers"
	"go-pos-local/internal/repository"
	"go-pos-local/internal/session"
	"go-pos-local/internal/store"
	"go-pos-local/internal/terminal"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}

	cfg := config.Load()
	auth.Configure(cfg.JWTSecret)

	// --- Storage: one key-value table, or process memory ---
	var backend store.Backend
	if cfg.DBDriver == "memory" {
		backend = store.NewMemoryBackend()
		log.Println("⚠️ WARNING: Using in-memory storage. Data is lost on restart!")
	} else {
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatal("Failed to open database: ", err)
		}
		backend = database.NewKV(db)
	}

	s := repository.NewStore(backend)
	verifier := session.NewVerifier(cfg.PasswordScheme)
	repos := repository.New(s, repository.WithHasher(verifier))
	if err := repos.Vouchers.Seed(); err != nil {
		log.Println("⚠️ Failed to seed vouchers:", err)
	}

	sess := session.New(s, repos.Employees, verifier)
	if user, ok := sess.Restore(); ok {
		log.Printf("🔑 Restored session for %s", user.Email)
	}
	term := terminal.New(repos, sess, checkout.WithDelay(cfg.PaymentDelay))

	var agent *ai.Agent
	if cfg.GeminiAPIKey != "" {
		agent = ai.NewAgent(cfg.GeminiAPIKey, ai.NewTools(repos))
	} else {
		log.Println("🔒 GEMINI_API_KEY not set, assistant route is DISABLED.")
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal("Failed to create upload directory: ", err)
	}
	r.Static("/uploads", cfg.UploadDir)

	handlers.New(term, cfg, agent).Routes(r)

	log.Println("🚀 Server starting on " + cfg.BaseURL)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
