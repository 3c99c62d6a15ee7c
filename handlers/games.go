package handlers

import (
	"lottery-publish-system/middleware"
	"lottery-publish-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGameRoutes(app *fiber.App, gameService *services.GameService) {
	// Attached per route: a Group("/") would register these globally and
	// swallow the public reads below.
	userCtx := middleware.UserContextMiddleware()
	adminOnly := middleware.RequireRole("admin")

	// Public catalog reads — still behind gateway auth.
	app.Get("/games", gameService.GetAllGames)
	app.Get("/games/:id", gameService.GetGameByID)
	app.Get("/games/:id/items", gameService.GetGameItems)

	app.Post("/games", userCtx, adminOnly, gameService.CreateGame)
	app.Put("/games/:id", userCtx, adminOnly, gameService.UpdateGame)
	app.Patch("/games/:id", userCtx, adminOnly, gameService.UpdateGame)

	app.Post("/games/:id/items", userCtx, adminOnly, gameService.CreateGameItem)
	app.Patch("/games/:id/items/:item_id", userCtx, adminOnly, gameService.UpdateGameItem)

	// Channel configuration
	app.Get("/games/:id/channels", userCtx, adminOnly, gameService.GetGameChannels)
	app.Post("/games/:id/channels", userCtx, adminOnly, gameService.CreateGameChannel)
	app.Patch("/games/:id/channels/:channel_id", userCtx, adminOnly, gameService.UpdateGameChannel)

	app.Get("/instances", userCtx, adminOnly, gameService.GetChannelInstances)
	app.Post("/instances", userCtx, adminOnly, gameService.CreateChannelInstance)
	app.Post("/instances/:instance_id/:action", userCtx, adminOnly, gameService.SetInstanceStatus)
}
