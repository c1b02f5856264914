package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
)

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.Generate(&models.Member{ID: 11, Email: "ravi@example.com"})
	require.NoError(t, err)

	var gotUser int64
	var gotEmail string
	next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		gotUser = GetUserID(ctx)
		gotEmail = GetEmail(ctx)
		return nil, nil
	}
	handler := RequireAuth(jwtManager)(next)

	tests := []struct {
		name     string
		header   string
		wantCode connect.Code
	}{
		{name: "valid bearer", header: "Bearer " + token},
		{name: "lowercase scheme", header: "bearer " + token},
		{name: "missing header", wantCode: connect.CodeUnauthenticated},
		{name: "wrong scheme", header: "Basic " + token, wantCode: connect.CodeUnauthenticated},
		{name: "no token", header: "Bearer ", wantCode: connect.CodeUnauthenticated},
		{name: "bad token", header: "Bearer nope", wantCode: connect.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser, gotEmail = 0, ""
			req := connect.NewRequest(&struct{}{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}

			_, err := handler(context.Background(), req)
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, connect.CodeOf(err))
				assert.Zero(t, gotUser, "next must not run")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(11), gotUser)
			assert.Equal(t, "ravi@example.com", gotEmail)
		})
	}
}

func TestGetUserID(t *testing.T) {
	assert.Zero(t, GetUserID(context.Background()))
	assert.Equal(t, int64(5), GetUserID(WithUserID(context.Background(), 5)))

	// A value of the wrong type is ignored.
	ctx := context.WithValue(context.Background(), UserIDKey, "5")
	assert.Zero(t, GetUserID(ctx))
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	wantErr := connect.NewError(connect.CodeInvalidArgument, errors.New("bad"))
	handler := LoggingInterceptor()(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, wantErr
	})

	_, err := handler(context.Background(), connect.NewRequest(&struct{}{}))
	assert.Same(t, wantErr, err)
}

func TestIsClientError(t *testing.T) {
	assert.True(t, isClientError(connect.CodeInvalidArgument))
	assert.True(t, isClientError(connect.CodePermissionDenied))
	assert.False(t, isClientError(connect.CodeInternal))
	assert.False(t, isClientError(connect.CodeUnavailable))
}
