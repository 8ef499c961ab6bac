package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/orderdesk/internal/cache"
	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/logger"
	"github.com/Additional-Code/orderdesk/internal/messaging"
	"github.com/Additional-Code/orderdesk/internal/migration"
	"github.com/Additional-Code/orderdesk/internal/observability"
	repositorycatalog "github.com/Additional-Code/orderdesk/internal/repository/catalog"
	repositorycustomer "github.com/Additional-Code/orderdesk/internal/repository/customer"
	repositoryorder "github.com/Additional-Code/orderdesk/internal/repository/order"
	grpcserver "github.com/Additional-Code/orderdesk/internal/server/grpc"
	httpserver "github.com/Additional-Code/orderdesk/internal/server/http"
	servicecatalog "github.com/Additional-Code/orderdesk/internal/service/catalog"
	servicecustomer "github.com/Additional-Code/orderdesk/internal/service/customer"
	serviceorder "github.com/Additional-Code/orderdesk/internal/service/order"
	transporthttp "github.com/Additional-Code/orderdesk/internal/transport/http"
	"github.com/Additional-Code/orderdesk/internal/worker"
	workerorder "github.com/Additional-Code/orderdesk/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	repositorycustomer.Module,
	repositoryorder.Module,
	repositorycatalog.Module,
	servicecustomer.Module,
	serviceorder.Module,
	servicecatalog.Module,
)

// HTTP wires the HTTP transport on top of the core modules. Pending
// migrations run before the listener starts when DB_AUTO_MIGRATE is set.
var HTTP = fx.Options(
	Core,
	migration.AutoMigrate,
	httpserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring: HTTP API plus the gRPC health endpoint.
var Module = fx.Options(
	HTTP,
	grpcserver.Module,
)
