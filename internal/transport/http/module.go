package http

import (
	"go.uber.org/fx"

	catalogtransport "github.com/Additional-Code/orderdesk/internal/transport/http/catalog"
	customertransport "github.com/Additional-Code/orderdesk/internal/transport/http/customer"
	ordertransport "github.com/Additional-Code/orderdesk/internal/transport/http/order"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	customertransport.Module,
	ordertransport.Module,
	catalogtransport.Module,
)
