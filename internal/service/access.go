package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	errNotMember     = errors.New("caller is not a member of this group")
	errAlreadyMember = errors.New("user is already a member of this group")
)

// storeError maps a storage error to a Connect error.
func storeError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// validAmount reports whether v is a finite, non-negative amount.
func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// groupForCaller loads a group and checks that the authenticated caller is
// linked to one of its members. It returns the group and the caller's member.
func groupForCaller(ctx context.Context, store storage.Store, groupID string) (*models.Group, models.Member, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, models.Member{}, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	if groupID == "" {
		return nil, models.Member{}, invalidArgument("group_id is required")
	}

	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		slog.Warn("Failed to load group", "group_id", groupID, "error", err)
		return nil, models.Member{}, storeError(err)
	}

	member, ok := group.MemberForUser(userID)
	if !ok {
		slog.Warn("Access denied", "group_id", groupID, "user_id", userID)
		return nil, models.Member{}, connect.NewError(connect.CodePermissionDenied, errNotMember)
	}
	return group, member, nil
}
