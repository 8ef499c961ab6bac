package customer

import "go.uber.org/fx"

// Module scopes the customer use cases under a named Fx module.
var Module = fx.Module("service_customer", fx.Provide(NewService))
