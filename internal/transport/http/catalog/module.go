package catalog

import "go.uber.org/fx"

// Module provides the catalog handler and mounts its routes on the shared Echo instance.
var Module = fx.Module("transport_http_catalog",
	fx.Provide(NewHandler),
	fx.Invoke(Register),
)
