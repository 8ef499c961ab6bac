package order

import "go.uber.org/fx"

// Module scopes the order use cases under a named Fx module.
var Module = fx.Module("service_order", fx.Provide(NewService))
