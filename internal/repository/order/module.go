package order

import "go.uber.org/fx"

// Module scopes the bun-backed order storage under a named Fx module.
var Module = fx.Module("repository_order", fx.Provide(NewRepository))
