package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"lottery-publish-system/channels"
	"lottery-publish-system/models"
	"lottery-publish-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testApp wires the full route table the way main.go does, against an
// in-memory store, so the middleware chain per route can be exercised
// end to end.
func testApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Game{}, &models.GameItem{},
		&models.Draw{}, &models.DrawTemplate{}, &models.DrawPause{}, &models.DrawStats{},
		&models.Ticket{}, &models.TicketDetail{}, &models.TripleBet{},
		&models.GameChannel{}, &models.ChannelInstance{}, &models.DrawPublication{},
		&models.User{}, &models.AuditLog{},
	))

	events := services.NewEventService(db, nil)
	templates := services.NewDrawTemplateService(db)
	pauses := services.NewDrawPauseService(db)
	stats := services.NewDrawStatsService(db)
	generator := services.NewDrawGeneratorService(db, templates, pauses, events)
	publisher := services.NewPublicationService(db, channels.NewRegistry(db), services.NewMessageTemplateService(), events)

	app := fiber.New()
	SetupGameRoutes(app, services.NewGameService(db))
	SetupDrawRoutes(app, services.NewDrawService(db, events), generator, publisher, stats, templates, pauses)
	SetupWagerRoutes(app, services.NewTicketService(db, events), services.NewTripletaService(db, events))
	return app
}

func TestPublicReadsNeedNoUserContext(t *testing.T) {
	app := testApp(t)

	for _, path := range []string{"/games", "/draws"} {
		req := httptest.NewRequest("GET", path, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}
}

func TestPlayerRoutesNeedNoAdminRole(t *testing.T) {
	app := testApp(t)

	// Empty wager body: rejected by validation, never by the role gate.
	req := httptest.NewRequest("POST", "/tickets", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "player-1")
	req.Header.Set("X-User-Roles", "player")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest("GET", "/users/player-1/tickets", nil)
	req.Header.Set("X-User-ID", "player-1")
	req.Header.Set("X-User-Roles", "player")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWagerRoutesRequireUserContext(t *testing.T) {
	app := testApp(t)

	req := httptest.NewRequest("POST", "/tickets", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	app := testApp(t)

	cases := []struct {
		method string
		path   string
	}{
		{"POST", "/games"},
		{"PATCH", "/draws/d1/preselect"},
		{"POST", "/draws/generate"},
		{"POST", "/instances"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "player-1")
		req.Header.Set("X-User-Roles", "player")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func TestAdminRoutePassesWithAdminRole(t *testing.T) {
	app := testApp(t)

	// The role gate lets the admin through; the handler answers for the
	// missing draw.
	req := httptest.NewRequest("PATCH", "/draws/missing/preselect", strings.NewReader(`{"item_id":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "admin-1")
	req.Header.Set("X-User-Roles", "admin")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
