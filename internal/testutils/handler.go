package testutils

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"reviso/internal/contract"
	"reviso/internal/db"
	"reviso/internal/handler"
	"reviso/internal/middleware"
	"reviso/internal/notify"
	"reviso/internal/service"
	"reviso/internal/srs"
)

// CustomValidator implements the echo.Validator interface
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

const (
	TestBotToken       = "test-bot-token"
	TelegramTestUserID = 927635965
	TestDBPath         = ":memory:" // Use in-memory SQLite for tests
	TestJWTSecret      = "hello-world"
)

// Clock is a settable clock shared by every component under test.
type Clock struct {
	Current time.Time
}

func (c *Clock) Now() time.Time { return c.Current }

func (c *Clock) Advance(d time.Duration) { c.Current = c.Current.Add(d) }

// Deps bundles everything a handler test may want to reach into.
type Deps struct {
	Echo    *echo.Echo
	Storage *db.Storage
	Clock   *Clock
	Policy  srs.Policy
}

// SetupHandlerDependencies builds a full handler stack on an in-memory
// database. The Telegram bot is nil: the outbox still queues notifications,
// delivery is simply skipped.
func SetupHandlerDependencies(t *testing.T) *Deps {
	t.Helper()

	policy := srs.DefaultPolicy()

	storage, err := db.ConnectDB(TestDBPath, policy)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := storage.UpdateSchema(); err != nil {
		t.Fatalf("Failed to update schema: %v", err)
	}
	t.Cleanup(func() {
		if err := storage.Close(); err != nil {
			fmt.Printf("Warning: Failed to close test database: %v\n", err)
		}
	})

	logr := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	clock := &Clock{Current: time.Now().UTC()}
	calc := srs.NewCalculator(policy)

	outbox := notify.NewOutbox(storage, logr)
	reviews := service.NewReviewService(storage, storage, outbox, calc, clock, logr)
	overdue := service.NewOverdueService(storage, outbox, calc, clock, logr)
	retention := service.NewRetentionService(storage, calc, clock, logr)

	h := handler.New(nil, storage, reviews, overdue, retention, policy, clock, TestJWTSecret, TestBotToken)

	e := echo.New()
	middleware.Setup(e, logr)
	e.Validator = &CustomValidator{validator: validator.New()}
	h.RegisterRoutes(e)

	return &Deps{Echo: e, Storage: storage, Clock: clock, Policy: policy}
}

func PerformRequest(t *testing.T, e *echo.Echo, method, path, body, token string, expectedStatus int) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != expectedStatus {
		t.Errorf("Expected status %d, got %d, body: %s", expectedStatus, rec.Code, rec.Body.String())
	}
	return rec
}

func ParseResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var result T
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	return result
}

func AuthHelper(t *testing.T, e *echo.Echo, telegramID int64, username, firstName string) (contract.AuthTelegramResponse, error) {
	userJSON := fmt.Sprintf(
		`{"id":%d,"first_name":"%s","last_name":"","username":"%s","language_code":"en","allows_write_to_pm":true}`,
		telegramID, firstName, username,
	)

	initData := map[string]string{
		"query_id":  "AAH9mUo3AAAAAP2ZSjdVL00J",
		"user":      userJSON,
		"auth_date": fmt.Sprintf("%d", time.Now().Unix()),
	}

	sign := initdata.Sign(initData, TestBotToken, time.Now())
	initData["hash"] = sign

	var query string
	for k, v := range initData {
		query += fmt.Sprintf("%s=%s&", k, v)
	}

	reqBody := contract.AuthTelegramRequest{
		Query: query,
	}

	body, _ := json.Marshal(reqBody)

	rec := PerformRequest(t, e, http.MethodPost, "/auth/telegram", string(body), "", http.StatusOK)

	resp := ParseResponse[contract.AuthTelegramResponse](t, rec)

	return resp, nil
}
