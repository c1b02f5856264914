package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
	"github.com/mmynk/splitledger/pkg/logging"
)

// testUserHeader names the caller in tests in place of a bearer token.
const testUserHeader = "X-Test-User"

// Members of the seeded group, plus one outsider with a group of their own.
const (
	asha     int64 = 1
	ravi     int64 = 2
	meera    int64 = 3
	outsider int64 = 4
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event *events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) failWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *recordingPublisher) published() []*events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*events.Event(nil), p.events...)
}

type testEnv struct {
	ledger    apiconnect.LedgerServiceClient
	groups    apiconnect.GroupServiceClient
	store     *sqlite.SQLiteStore
	publisher *recordingPublisher
	metrics   *metrics.Metrics
	url       string

	group      *models.Group // asha, ravi, meera; INR
	otherGroup *models.Group // outsider only
}

// testAuthInterceptor trusts testUserHeader as the caller identity.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if raw := req.Header().Get(testUserHeader); raw != "" {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("bad test user"))
				}
				ctx = middleware.WithUserID(ctx, id)
			}
			return next(ctx, req)
		}
	}
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	for _, m := range []*models.Member{
		{ID: asha, Name: "Asha", Email: "asha@example.com"},
		{ID: ravi, Name: "Ravi", Email: "ravi@example.com"},
		{ID: meera, Name: "Meera"},
		{ID: outsider, Name: "Kabir"},
	} {
		require.NoError(t, store.UpsertMember(ctx, m))
	}
	group := &models.Group{Name: "Goa Trip", Currency: "INR", MemberIDs: []int64{asha, ravi, meera}}
	require.NoError(t, store.CreateGroup(ctx, group))
	other := &models.Group{Name: "Solo", Currency: "USD", MemberIDs: []int64{outsider}}
	require.NoError(t, store.CreateGroup(ctx, other))

	publisher := &recordingPublisher{}
	m := metrics.New(prometheus.NewRegistry())
	interceptors := connect.WithInterceptors(testAuthInterceptor())

	mux := http.NewServeMux()
	ledgerPath, ledgerHandler := apiconnect.NewLedgerServiceHandler(NewLedgerService(store, publisher, m), interceptors)
	mux.Handle(ledgerPath, ledgerHandler)
	groupPath, groupHandler := apiconnect.NewGroupServiceHandler(NewGroupService(store), interceptors)
	mux.Handle(groupPath, groupHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		ledger:     apiconnect.NewLedgerServiceClient(server.Client(), server.URL),
		groups:     apiconnect.NewGroupServiceClient(server.Client(), server.URL),
		store:      store,
		publisher:  publisher,
		metrics:    m,
		url:        server.URL,
		group:      group,
		otherGroup: other,
	}
}

// as builds a request made by the given member. A zero user sends no identity.
func as[T any](user int64, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if user != 0 {
		req.Header().Set(testUserHeader, strconv.FormatInt(user, 10))
	}
	return req
}

// logBuffer collects JSON log records written by the server goroutines.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// find returns the first record with the given message, or nil.
func (b *logBuffer) find(msg string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, line := range bytes.Split(b.buf.Bytes(), []byte("\n")) {
		var record map[string]any
		if json.Unmarshal(line, &record) == nil && record["msg"] == msg {
			return record
		}
	}
	return nil
}

// captureLogs routes the default logger into a buffer for the rest of the test.
func captureLogs(t *testing.T) *logBuffer {
	t.Helper()
	logs := &logBuffer{}
	prev := slog.Default()
	slog.SetDefault(logging.New(logs, logs, slog.LevelDebug, "json"))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return logs
}
