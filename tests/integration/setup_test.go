package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	adaptershttp "github.com/osolis/billingcore/internal/adapter/http"
	"github.com/osolis/billingcore/internal/adapter/http/handler"
	"github.com/osolis/billingcore/internal/adapter/http/middleware"
	"github.com/osolis/billingcore/internal/adapter/repository/postgres"
	redisrepo "github.com/osolis/billingcore/internal/adapter/repository/redis"
	"github.com/osolis/billingcore/internal/domain"
	infraredis "github.com/osolis/billingcore/internal/infrastructure/redis"
	"github.com/osolis/billingcore/internal/usecase"
	"github.com/osolis/billingcore/tests/testutil"
)

// testEnv wires the full HTTP stack against real Postgres and Redis.
type testEnv struct {
	db          *testutil.TestDB
	redisClient *goredis.Client
	router      http.Handler

	chargeRepo  *postgres.ChargeRepository
	paymentRepo *postgres.PaymentRepository

	paymentUC *usecase.AllocationUseCase
	rebuildUC *usecase.RebuildUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)
	testDB.TruncateAll(ctx)

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { _ = redisClient.Close() })
	if err := redisClient.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	chargeRepo := postgres.NewChargeRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	retrier := postgres.NewRetrier()
	idGen := postgres.NewULIDGenerator()
	cache := redisrepo.NewCache(redisClient)
	locker := usecase.NewAccountLocker()

	chargeUC := usecase.NewChargeUseCase(chargeRepo, paymentRepo, accountRepo, idGen, cache, locker)
	paymentUC := usecase.NewAllocationUseCase(txManager, chargeRepo, paymentRepo, accountRepo, idGen, cache, locker, nil)
	balanceUC := usecase.NewBalanceUseCase(accountRepo, clientRepo, chargeRepo, paymentRepo, cache, 0, nil)
	statementUC := usecase.NewStatementUseCase(accountRepo, chargeRepo, paymentRepo)
	rebuildUC := usecase.NewRebuildUseCase(accountRepo, chargeRepo, paymentRepo, retrier, cache, locker, usecase.RebuildConfig{}, nil)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		BalanceHandler:   handler.NewBalanceHandler(balanceUC),
		StatementHandler: handler.NewStatementHandler(statementUC),
		ChargeHandler:    handler.NewChargeHandler(chargeUC),
		PaymentHandler:   handler.NewPaymentHandler(paymentUC),
		RebuildHandler:   handler.NewRebuildHandler(rebuildUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: redisrepo.NewIdempotencyStore(redisClient),
	})

	return &testEnv{
		db:          testDB,
		redisClient: redisClient,
		router:      router,
		chargeRepo:  chargeRepo,
		paymentRepo: paymentRepo,
		paymentUC:   paymentUC,
		rebuildUC:   rebuildUC,
	}
}

// do performs an HTTP request against the router and decodes the JSON
// response body into out when it is non-nil.
func (e *testEnv) do(t *testing.T, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(method, path, reader)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)

	if out != nil && w.Code < 300 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w
}

// doWithKey posts a JSON body with an Idempotency-Key header.
func (e *testEnv) doWithKey(t *testing.T, path string, body any, key string) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set(middleware.IdempotencyKeyHeader, key)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func listAccountPayments(accountNumber string) usecase.PaymentFilter {
	return usecase.PaymentFilter{ParentID: accountNumber, ParentType: domain.ParentAccount}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}
