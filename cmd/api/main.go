// Command api runs the order desk HTTP API and gRPC health server without
// the CLI wrapper. Migrations run on start only when DB_AUTO_MIGRATE is set.
package main

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/orderdesk/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
