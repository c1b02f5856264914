package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

var (
	errNoCaller  = errors.New("caller identity required")
	errNotMember = errors.New("caller is not a member of the group")
	errNoGroupID = errors.New("group_id required")
)

// callerID returns the authenticated member making the request.
func callerID(ctx context.Context) (int64, error) {
	id := middleware.GetUserID(ctx)
	if id <= 0 {
		return 0, connect.NewError(connect.CodeUnauthenticated, errNoCaller)
	}
	return id, nil
}

// groupForCaller loads a group and checks that caller belongs to it.
func groupForCaller(ctx context.Context, store storage.Store, groupID string, caller int64) (*models.Group, error) {
	if groupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errNoGroupID)
	}

	group, err := store.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("group not found: %s", groupID))
	}
	if err != nil {
		slog.Error("Failed to load group", "group_id", groupID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	if !group.HasMember(caller) {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotMember)
	}
	return group, nil
}

// invalidRequest converts a *calculator.ValidationError into an
// invalid_argument error carrying the failure kind and its details.
// Sum mismatches are reported in the same units the caller sent: percent
// for PERCENT, major units of currency for CUSTOM.
func invalidRequest(m *metrics.Metrics, err error, currency string) error {
	var verr *calculator.ValidationError
	if !errors.As(err, &verr) {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}

	kind := verr.Kind()
	m.ValidationRejections.WithLabelValues(kind).Inc()

	fields := map[string]any{}
	if verr.UserID != 0 {
		fields["userId"] = verr.UserID
	}
	switch {
	case errors.Is(verr, calculator.ErrPercentSumMismatch):
		fields["actual"] = verr.Actual.String()
		fields["expected"] = verr.Expected.String()
	case errors.Is(verr, calculator.ErrCustomSumMismatch):
		exp := money.Exponent(currency)
		fields["actual"] = verr.Actual.Shift(-exp).String()
		fields["expected"] = verr.Expected.Shift(-exp).StringFixed(exp)
	}
	return apiconnect.NewInvalidArgument(verr, kind, fields)
}

// internalError logs err and hides it behind an internal error.
func internalError(op string, err error, attrs ...any) error {
	slog.Error(op+" failed", append(attrs, "error", err)...)
	return connect.NewError(connect.CodeInternal, fmt.Errorf("%s failed", op))
}
