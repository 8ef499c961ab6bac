package customer

import "go.uber.org/fx"

// Module scopes the bun-backed customer storage under a named Fx module.
var Module = fx.Module("repository_customer", fx.Provide(NewRepository))
