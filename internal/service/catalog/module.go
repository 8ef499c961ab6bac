package catalog

import "go.uber.org/fx"

// Module scopes the catalog use cases under a named Fx module.
var Module = fx.Module("service_catalog", fx.Provide(NewService))
