package service

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/rpc"
)

func withToken[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthFlow(t *testing.T) {
	c := setupTestServer(t, auth.NewJWTManager("test-secret", time.Hour))
	ctx := context.Background()

	reg, err := c.auth.Register(ctx, connect.NewRequest(&rpc.RegisterRequest{
		Email: "Alice@Example.com", DisplayName: "Alice", Password: "correct-horse",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Msg.Token == "" {
		t.Fatal("expected a token from Register")
	}
	if reg.Msg.User.Email != "alice@example.com" {
		t.Errorf("expected normalized email, got %q", reg.Msg.User.Email)
	}

	_, err = c.auth.Register(ctx, connect.NewRequest(&rpc.RegisterRequest{
		Email: "alice@example.com", DisplayName: "Alice", Password: "correct-horse",
	}))
	wantCode(t, err, connect.CodeAlreadyExists)

	_, err = c.auth.Register(ctx, connect.NewRequest(&rpc.RegisterRequest{
		Email: "bob@example.com", DisplayName: "Bob", Password: "short",
	}))
	wantCode(t, err, connect.CodeInvalidArgument)

	_, err = c.auth.Login(ctx, connect.NewRequest(&rpc.LoginRequest{
		Email: "alice@example.com", Password: "wrong-password",
	}))
	wantCode(t, err, connect.CodeUnauthenticated)

	login, err := c.auth.Login(ctx, connect.NewRequest(&rpc.LoginRequest{
		Email: "alice@example.com", Password: "correct-horse",
	}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	token := login.Msg.Token

	me, err := c.auth.GetCurrentUser(ctx, withToken(token, &rpc.GetCurrentUserRequest{}))
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if me.Msg.User.ID != reg.Msg.User.ID || me.Msg.User.DisplayName != "Alice" {
		t.Errorf("unexpected current user %+v", me.Msg.User)
	}

	_, err = c.auth.GetCurrentUser(ctx, connect.NewRequest(&rpc.GetCurrentUserRequest{}))
	wantCode(t, err, connect.CodeUnauthenticated)

	_, err = c.auth.GetCurrentUser(ctx, withToken("not-a-jwt", &rpc.GetCurrentUserRequest{}))
	wantCode(t, err, connect.CodeUnauthenticated)

	// The token opens the ledger, and the new group is linked to the user.
	group, err := c.ledger.CreateGroup(ctx, withToken(token, &rpc.CreateGroupRequest{Name: "Flat"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if m := group.Msg.Group.Members; len(m) != 1 || m[0].UserID != reg.Msg.User.ID {
		t.Errorf("expected the registered user as sole member, got %+v", m)
	}

	_, err = c.ledger.ListGroups(ctx, connect.NewRequest(&rpc.ListGroupsRequest{}))
	wantCode(t, err, connect.CodeUnauthenticated)
}
