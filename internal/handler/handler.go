package handler

import (
	"net/http"

	telegram "github.com/go-telegram/bot"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"reviso/internal/contract"
	"reviso/internal/db"
	"reviso/internal/middleware"
	"reviso/internal/service"
	"reviso/internal/srs"
)

type Handler struct {
	bot       *telegram.Bot
	db        *db.Storage
	reviews   *service.ReviewService
	overdue   *service.OverdueService
	retention *service.RetentionService
	policy    srs.Policy
	clock     srs.Clock
	jwtSecret string
	botToken  string
}

func New(
	bot *telegram.Bot,
	db *db.Storage,
	reviews *service.ReviewService,
	overdue *service.OverdueService,
	retention *service.RetentionService,
	policy srs.Policy,
	clock srs.Clock,
	jwtSecret string,
	botToken string,
) *Handler {
	return &Handler{
		bot:       bot,
		db:        db,
		reviews:   reviews,
		overdue:   overdue,
		retention: retention,
		policy:    policy,
		clock:     clock,
		jwtSecret: jwtSecret,
		botToken:  botToken,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/telegram", h.TelegramAuth)

	v1 := e.Group("/v1")

	v1.Use(echojwt.WithConfig(middleware.GetUserAuthConfig(h.jwtSecret)))

	v1.POST("/reviews", h.SubmitReview)
	v1.GET("/reviews/due", h.GetDueSchedules)
	v1.GET("/reviews/overdue", h.GetOverdueQueue)
	v1.GET("/retention", h.GetRetentionReport)
	v1.GET("/schedules/:id", h.GetSchedule)
	v1.GET("/stats", h.GetStats)
}

func GetUserIDFromToken(c echo.Context) (string, error) {
	user, ok := c.Get("user").(*jwt.Token)
	if !ok || user == nil {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	claims, ok := user.Claims.(*contract.JWTClaims)
	if !ok || claims == nil {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	return claims.UID, nil
}
