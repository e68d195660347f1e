package middleware

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	gormlogger "gorm.io/gorm/logger"

	"onlinecourse/backend/config"
	"onlinecourse/backend/models"
	"onlinecourse/backend/store"
	"onlinecourse/backend/utils"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	app := fiber.New()
	app.Use(LoggingMiddleware(zap.New(core).Sugar()))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/missing", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) })

	req := httptest.NewRequest("GET", "/ok", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-1", resp.Header.Get(HeaderRequestID))

	resp, err = app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.EqualValues(t, fiber.StatusNotFound, entries[1].ContextMap()["status"])
}

func TestAuthAndAdminMiddleware(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := store.Open(sqlite.Open(dsn), gormlogger.Silent)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, store.Migrate(db))
	s := store.New(db, nil)

	ctx := context.Background()
	admin := &models.User{Username: "admin", Email: "admin@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	user := &models.User{Username: "student", Email: "student@example.com", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(ctx, admin))
	require.NoError(t, s.CreateUser(ctx, user))

	cfg := &config.Config{JWTSecret: "testsecret"}
	app := fiber.New()
	app.Get("/me", AuthMiddleware(cfg), func(c *fiber.Ctx) error {
		userID, ok := UserID(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"user_id": userID})
	})
	app.Get("/admin", AuthMiddleware(cfg), AdminMiddleware(s), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	get := func(path string, userID uint) int {
		req := httptest.NewRequest("GET", path, nil)
		if userID != 0 {
			token, err := utils.GenerateJWTToken(userID, cfg)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusUnauthorized, get("/me", 0))
	assert.Equal(t, fiber.StatusOK, get("/me", user.ID))
	assert.Equal(t, fiber.StatusForbidden, get("/admin", user.ID))
	assert.Equal(t, fiber.StatusOK, get("/admin", admin.ID))
	// пользователь удален, токен еще действителен
	assert.Equal(t, fiber.StatusUnauthorized, get("/admin", 9999))
}
