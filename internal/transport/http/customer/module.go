package customer

import "go.uber.org/fx"

// Module provides the customer handler and mounts its routes on the shared Echo instance.
var Module = fx.Module("transport_http_customer",
	fx.Provide(NewHandler),
	fx.Invoke(Register),
)
