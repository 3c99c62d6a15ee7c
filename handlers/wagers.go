package handlers

import (
	"lottery-publish-system/middleware"
	"lottery-publish-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupWagerRoutes(app *fiber.App,
	ticketService *services.TicketService,
	tripletaService *services.TripletaService) {

	// Player routes: any authenticated user, no role requirement.
	userCtx := middleware.UserContextMiddleware()

	app.Post("/tickets", userCtx, ticketService.CreateTicket)
	app.Get("/draws/:id/tickets", userCtx, ticketService.GetDrawTickets)
	app.Get("/users/:id/tickets", userCtx, ticketService.GetUserTickets)

	app.Post("/tripletas", userCtx, tripletaService.CreateTripleta)
	app.Get("/users/:id/tripletas", userCtx, tripletaService.GetUserTripletas)
}
