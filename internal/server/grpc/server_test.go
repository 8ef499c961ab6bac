package grpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

func TestHealthServing(t *testing.T) {
	server := NewServer(zaptest.NewLogger(t))
	hs := NewHealth()
	lc := fxtest.NewLifecycle(t)
	Register(lc, server, hs)
	lc.RequireStart()
	t.Cleanup(lc.RequireStop)

	ln := bufconn.Listen(1 << 20)
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return ln.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	client := healthpb.NewHealthClient(conn)
	for _, service := range []string{"", OrdersService} {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	}

	_, err = client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "unknown"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestToStatus(t *testing.T) {
	err := toStatus(errorbank.Dependency("Order 1 has associated data in shipment table and cannot be deleted"))
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.FailedPrecondition, st.Code())
	assert.Equal(t, "Order 1 has associated data in shipment table and cannot be deleted", st.Message())

	assert.Equal(t, codes.Internal, status.Code(toStatus(errors.New("boom"))))

	original := status.Error(codes.Unavailable, "down")
	assert.Equal(t, original, toStatus(original))
}
