package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/homebooking/internal/app"
	"github.com/polkiloo/homebooking/internal/server/http/handlers"
)

// Module exposes the booking facade to handlers and builds the gin engine.
var Module = fx.Provide(
	func(f *app.BookingFacade) handlers.BookingFacade { return f },
	Setup,
)
