package order

import "go.uber.org/fx"

// Module provides the order handler and mounts its routes on the shared Echo instance.
var Module = fx.Module("transport_http_order",
	fx.Provide(NewHandler),
	fx.Invoke(Register),
)
