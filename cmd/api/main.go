package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	telegram "github.com/go-telegram/bot"
	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"

	"reviso/internal/db"
	"reviso/internal/handler"
	"reviso/internal/job"
	"reviso/internal/middleware"
	"reviso/internal/notify"
	"reviso/internal/service"
	"reviso/internal/srs"
)

type Config struct {
	Host             string      `yaml:"host"`
	Port             int         `yaml:"port"`
	DBPath           string      `yaml:"db_path" validate:"required"`
	TelegramBotToken string      `yaml:"telegram_bot_token" validate:"required"`
	JWTSecretKey     string      `yaml:"jwt_secret_key" validate:"required"`
	Scheduling       *srs.Policy `yaml:"scheduling"`
}

func ReadConfig(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &cfg, nil
}

func ValidateConfig(cfg *Config) error {
	validate := validator.New()
	return validate.Struct(cfg)
}

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func main() {
	configFilePath := "config.yml"
	configFilePathEnv := os.Getenv("CONFIG_FILE_PATH")
	if configFilePathEnv != "" {
		configFilePath = configFilePathEnv
	}

	cfg, err := ReadConfig(configFilePath)
	if err != nil {
		log.Fatalf("error reading configuration: %v", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	policy := srs.DefaultPolicy()
	if cfg.Scheduling != nil {
		policy = *cfg.Scheduling
		if err := policy.Validate(); err != nil {
			log.Fatalf("invalid scheduling policy: %v", err)
		}
	}

	dbStorage, err := db.ConnectDB(cfg.DBPath, policy)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := dbStorage.UpdateSchema(); err != nil {
		log.Fatalf("Failed to update schema: %v", err)
	}

	bot, err := telegram.New(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal(err)
	}

	logr := slog.New(slog.NewTextHandler(os.Stdout, nil))

	clock := srs.SystemClock{}
	calc := srs.NewCalculator(policy)

	outbox := notify.NewOutbox(dbStorage, logr)
	sender := notify.NewSender(dbStorage, bot, clock, logr)

	reviews := service.NewReviewService(dbStorage, dbStorage, outbox, calc, clock, logr)
	overdue := service.NewOverdueService(dbStorage, outbox, calc, clock, logr)
	retention := service.NewRetentionService(dbStorage, calc, clock, logr)

	h := handler.New(bot, dbStorage, reviews, overdue, retention, policy, clock, cfg.JWTSecretKey, cfg.TelegramBotToken)

	e := echo.New()

	middleware.Setup(e, logr)

	e.Validator = &CustomValidator{validator: validator.New()}

	// Start overdue notification job
	notifier := job.NewOverdueNotifier(overdue, sender)
	go notifier.Start()
	log.Println("Overdue notification job started")

	h.RegisterRoutes(e)

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		port := cfg.Port
		if port == 0 {
			port = 8080
		}
		log.Printf("Starting server on port %d", port)
		if err := e.Start(fmt.Sprintf(":%d", port)); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Wait for shutdown signal
	<-quit
	log.Println("Shutting down server...")

	notifier.Stop()

	// Shutdown Echo server with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}

	log.Println("Server gracefully stopped")
}
