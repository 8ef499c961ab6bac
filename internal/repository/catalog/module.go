package catalog

import "go.uber.org/fx"

// Module scopes the bun-backed catalog storage under a named Fx module.
var Module = fx.Module("repository_catalog", fx.Provide(NewRepository))
