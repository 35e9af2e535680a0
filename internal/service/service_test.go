package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/rpc"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

// testUserHeader names the caller in tests that skip real tokens.
const testUserHeader = "X-Test-User"

// testAuthInterceptor returns a Connect interceptor that trusts the test
// user header instead of validating a token.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if user := req.Header().Get(testUserHeader); user != "" {
				ctx = middleware.WithUser(ctx, user, user+"@example.com")
			}
			return next(ctx, req)
		}
	}
}

type testClients struct {
	ledger   *rpc.LedgerServiceClient
	receipts *rpc.ReceiptServiceClient
	auth     *rpc.AuthServiceClient
	metrics  *metrics.Metrics
}

// setupTestServer serves every service over httptest, backed by a fresh
// SQLite file. With jwtManager nil the test auth interceptor is used.
func setupTestServer(t *testing.T, jwtManager *auth.JWTManager) *testClients {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	m := metrics.New()
	interceptor := testAuthInterceptor()
	if jwtManager != nil {
		interceptor = middleware.RequireAuth(jwtManager,
			rpc.AuthServiceRegisterProcedure,
			rpc.AuthServiceLoginProcedure,
		)
	} else {
		jwtManager = auth.NewJWTManager("test-secret", time.Hour)
	}
	opts := connect.WithInterceptors(interceptor, middleware.MetricsInterceptor(m))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authSvc := NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store, logger)

	mux := http.NewServeMux()
	mux.Handle(rpc.NewLedgerServiceHandler(NewLedgerService(store, m), opts))
	mux.Handle(rpc.NewReceiptServiceHandler(NewReceiptService(store, m), opts))
	mux.Handle(rpc.NewAuthServiceHandler(authSvc, opts))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testClients{
		ledger:   rpc.NewLedgerServiceClient(server.Client(), server.URL),
		receipts: rpc.NewReceiptServiceClient(server.Client(), server.URL),
		auth:     rpc.NewAuthServiceClient(server.Client(), server.URL),
		metrics:  m,
	}
}

// as builds a request made by user.
func as[T any](user string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if user != "" {
		req.Header().Set(testUserHeader, user)
	}
	return req
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", code)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %T: %v", err, err)
	}
	if connectErr.Code() != code {
		t.Fatalf("expected code %v, got %v (%v)", code, connectErr.Code(), err)
	}
}

// createTrip makes a group owned by alice with guests Bob and Carol.
// Members come back in order: alice, Bob, Carol.
func createTrip(t *testing.T, c *testClients) *rpc.Group {
	t.Helper()
	resp, err := c.ledger.CreateGroup(context.Background(), as("alice", &rpc.CreateGroupRequest{
		Name:    "Trip",
		Members: []rpc.NewMember{{Name: "Bob"}, {Name: "Carol"}},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if len(resp.Msg.Group.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(resp.Msg.Group.Members))
	}
	return resp.Msg.Group
}
