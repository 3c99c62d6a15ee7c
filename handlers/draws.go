package handlers

import (
	"lottery-publish-system/middleware"
	"lottery-publish-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupDrawRoutes(app *fiber.App,
	drawService *services.DrawService,
	generator *services.DrawGeneratorService,
	publisher *services.PublicationService,
	stats *services.DrawStatsService,
	templates *services.DrawTemplateService,
	pauses *services.DrawPauseService) {

	userCtx := middleware.UserContextMiddleware()
	adminOnly := middleware.RequireRole("admin")

	// Public reads — behind gateway auth only.
	app.Get("/draws", drawService.GetDraws)
	app.Get("/draws/:id", drawService.GetDrawByID)

	// Operator override of the upcoming outcome.
	app.Patch("/draws/:id/preselect", userCtx, adminOnly, drawService.SetPreselection)

	app.Get("/draws/:id/stats", userCtx, adminOnly, stats.GetDrawStats)
	app.Get("/draws/:id/publications", userCtx, adminOnly, publisher.GetDrawPublications)
	app.Post("/draws/:id/publish", userCtx, adminOnly, publisher.TriggerPublish)
	app.Post("/draws/:id/publications/:channel/retry", userCtx, adminOnly, publisher.RepublishDraw)

	// Manual trigger for the daily generation job.
	app.Post("/draws/generate", userCtx, adminOnly, generator.TriggerGeneration)

	// Scheduling configuration
	app.Get("/templates", userCtx, adminOnly, templates.ListTemplates)
	app.Post("/templates", userCtx, adminOnly, templates.CreateTemplate)
	app.Patch("/templates/:id", userCtx, adminOnly, templates.UpdateTemplate)

	app.Get("/pauses", userCtx, adminOnly, pauses.ListPauses)
	app.Post("/pauses", userCtx, adminOnly, pauses.CreatePause)
	app.Delete("/pauses/:id", userCtx, adminOnly, pauses.DeactivatePause)
}
