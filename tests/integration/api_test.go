package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpHandler "wallet-ledger/internal/adapter/http/handler"
	redisStorage "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/service"
	"wallet-ledger/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds the full application stack over in-memory storage and
// miniredis. The real HTTP layer, middleware, handlers, services, and Redis
// stores run end-to-end; only the postgres pool is replaced.

type testApp struct {
	server  *httptest.Server
	redis   *miniredis.Miniredis
	store   *inMemoryStore
	logRepo *inMemoryWalletLogRepo
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	store := newInMemoryStore()
	store.seedAsset(domain.Asset{
		AssetID: "BTC", Name: "Bitcoin", DefaultPrec: 8, Enabled: true,
		MinDeposit: decimal.RequireFromString("0.0001"), MinWithdrawal: decimal.RequireFromString("0.001"),
	})
	store.seedAsset(domain.Asset{
		AssetID: "ETH", Name: "Ethereum", DefaultPrec: 18, Enabled: true,
		MinDeposit: decimal.RequireFromString("0.01"), MinWithdrawal: decimal.RequireFromString("0.01"),
	})
	store.seedAsset(domain.Asset{
		AssetID: "XRP", Name: "Ripple", DefaultPrec: 6, Enabled: false,
		MinDeposit: decimal.RequireFromString("1"), MinWithdrawal: decimal.RequireFromString("1"),
	})

	balanceRepo := &inMemoryBalanceRepo{store: store}
	lockRepo := &inMemoryLockRepo{store: store}
	walletLogRepo := &inMemoryWalletLogRepo{store: store}
	assetRepo := &inMemoryAssetRepo{store: store}
	transactor := &inMemoryTransactor{}

	assetCache := redisStorage.NewAssetCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	log := logger.New("debug", false)
	assetSvc := service.NewAssetService(assetRepo, assetCache, 5*time.Minute, log)
	ledgerSvc := service.NewLedgerService(balanceRepo, lockRepo, walletLogRepo, assetSvc, transactor, log)
	reportingSvc := service.NewReportingService(balanceRepo, assetSvc)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		LedgerSvc:      ledgerSvc,
		AssetSvc:       assetSvc,
		ReportingSvc:   reportingSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{redisStorage.NewHealthCheck(rdb)},
		Logger:         log,
	})

	server := httptest.NewServer(router)

	return &testApp{
		server:  server,
		redis:   mr,
		store:   store,
		logRepo: walletLogRepo,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
}

type envelope struct {
	Data      map[string]interface{} `json:"data"`
	ErrorCode string                 `json:"error_code"`
	Message   string                 `json:"message"`
}

func (a *testApp) post(t *testing.T, path, body string) (int, envelope) {
	t.Helper()
	resp, err := http.Post(a.server.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (a *testApp) get(t *testing.T, path string) (int, envelope) {
	t.Helper()
	resp, err := http.Get(a.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (a *testApp) credit(t *testing.T, uid int64, assetID, amount string) {
	t.Helper()
	code, env := a.post(t, "/api/v1/wallet/credit",
		fmt.Sprintf(`{"uid":%d,"assetid":"%s","amount":"%s","reason":"test deposit"}`, uid, assetID, amount))
	require.Equal(t, 200, code, "credit failed: %+v", env)
}

func (a *testApp) balance(t *testing.T, uid int64, assetID string) (total, locked, available string) {
	t.Helper()
	code, env := a.get(t, fmt.Sprintf("/api/v1/balances?uid=%d&assets=%s", uid, assetID))
	require.Equal(t, 200, code)
	balances := env.Data["balances"].([]interface{})
	require.Len(t, balances, 1)
	row := balances[0].(map[string]interface{})
	return row["total"].(string), row["locked"].(string), row["avbl"].(string)
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_CreditAndQueryBalance(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.credit(t, 1, "BTC", "100")

	total, locked, avbl := app.balance(t, 1, "BTC")
	assert.Equal(t, "100", total)
	assert.Equal(t, "0", locked)
	assert.Equal(t, "100", avbl)
}

func TestIntegration_CreditUnknownAsset(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	code, env := app.post(t, "/api/v1/wallet/credit",
		`{"uid":1,"assetid":"DOGE","amount":"100","reason":"test deposit"}`)
	assert.Equal(t, 404, code)
	assert.Equal(t, "NOT_FOUND", env.ErrorCode)
}

func TestIntegration_CreditDisabledAsset(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	code, env := app.post(t, "/api/v1/wallet/credit",
		`{"uid":1,"assetid":"XRP","amount":"100","reason":"test deposit"}`)
	assert.Equal(t, 400, code)
	assert.Equal(t, "VALIDATION_ERROR", env.ErrorCode)
}

// A zero amount is well-formed for the decoder but malformed input for the
// engine: credit, debit and lock all reject it as a validation failure, not
// an out-of-range one.
func TestIntegration_ZeroAmountRejected(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.credit(t, 1, "BTC", "100")

	for _, path := range []string{"/api/v1/wallet/credit", "/api/v1/wallet/debit", "/api/v1/wallet/lock"} {
		code, env := app.post(t, path,
			`{"uid":1,"assetid":"BTC","amount":"0","reason":"noop"}`)
		assert.Equal(t, 400, code, path)
		assert.Equal(t, "VALIDATION_ERROR", env.ErrorCode, path)
	}

	total, locked, _ := app.balance(t, 1, "BTC")
	assert.Equal(t, "100", total)
	assert.Equal(t, "0", locked)
}

func TestIntegration_DebitInsufficient(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.credit(t, 1, "BTC", "10")

	code, env := app.post(t, "/api/v1/wallet/debit",
		`{"uid":1,"assetid":"BTC","amount":"10.00000001","reason":"test withdrawal"}`)
	assert.Equal(t, 402, code)
	assert.Equal(t, "INSUF_BALANCE", env.ErrorCode)

	total, _, _ := app.balance(t, 1, "BTC")
	assert.Equal(t, "10", total)
}

// Lock 40 out of 100, debit 30 from the remaining available, then commit the
// lock in full. Locked funds survive the debit untouched.
func TestIntegration_LockSurvivesDebit(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.credit(t, 1, "BTC", "100")

	code, env := app.post(t, "/api/v1/wallet/lock",
		`{"uid":1,"assetid":"BTC","amount":"40","reason":"order hold"}`)
	require.Equal(t, 201, code)
	lockID := int64(env.Data["lockid"].(float64))
	assert.Equal(t, "SIMPLE", env.Data["type"])

	code, _ = app.post(t, "/api/v1/wallet/debit",
		`{"uid":1,"assetid":"BTC","amount":"30","reason":"withdrawal"}`)
	require.Equal(t, 200, code)

	total, locked, avbl := app.balance(t, 1, "BTC")
	assert.Equal(t, "70", total)
	assert.Equal(t, "40", locked)
	assert.Equal(t, "30", avbl)

	code, env = app.post(t, "/api/v1/wallet/commit",
		fmt.Sprintf(`{"lockid":%d,"reason":"order settled"}`, lockID))
	require.Equal(t, 200, code)
	assert.Equal(t, "40", env.Data["debited"])
	assert.Equal(t, "0", env.Data["released"])

	total, locked, _ = app.balance(t, 1, "BTC")
	assert.Equal(t, "30", total)
	assert.Equal(t, "0", locked)
}

func TestIntegration_ReleaseRestoresAvailable(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.credit(t, 2, "ETH", "50")

	code, env := app.post(t, "/api/v1/wallet/lock",
		`{"uid":2,"assetid":"ETH","amount":"20","reason":"order hold"}`)
	require.Equal(t, 201, code)
	lockID := int64(env.Data["lockid"].(float64))

	code, env = app.post(t, "/api/v1/wallet/release",
		fmt.Sprintf(`{"lockid":%d,"reason":"order cancelled"}`, lockID))
	require.Equal(t, 200, code)
	assert.Equal(t, "20", env.Data["amount"])

	total, locked, avbl := app.balance(t, 2, "ETH")
	assert.Equal(t, "50", total)
	assert.Equal(t, "0", locked)
	assert.Equal(t, "50", avbl)

	// The lock is gone; a second release is rejected.
	code, env = app.post(t, "/api/v1/wallet/release",
		fmt.Sprintf(`{"lockid":%d,"reason":"order cancelled"}`, lockID))
	assert.Equal(t, 404, code)
	assert.Equal(t, "NOT_FOUND", env.ErrorCode)
}

func TestIntegration_DelayedLockPartialCommit(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.credit(t, 3, "BTC", "100")

	// No amount => delayed lock over everything available.
	code, env := app.post(t, "/api/v1/wallet/lock",
		`{"uid":3,"assetid":"BTC","reason":"delayed settle"}`)
	require.Equal(t, 201, code)
	lockID := int64(env.Data["lockid"].(float64))
	assert.Equal(t, "DELAYED", env.Data["type"])
	assert.Equal(t, "100", env.Data["amount"])

	_, locked, avbl := app.balance(t, 3, "BTC")
	assert.Equal(t, "100", locked)
	assert.Equal(t, "0", avbl)

	// Partial commit: 60 consumed, 40 back to available.
	code, env = app.post(t, "/api/v1/wallet/commit",
		fmt.Sprintf(`{"lockid":%d,"amount":"60","reason":"settle"}`, lockID))
	require.Equal(t, 200, code)
	assert.Equal(t, "60", env.Data["debited"])
	assert.Equal(t, "40", env.Data["released"])

	total, locked, avbl := app.balance(t, 3, "BTC")
	assert.Equal(t, "40", total)
	assert.Equal(t, "0", locked)
	assert.Equal(t, "40", avbl)

	// A fresh delayed lock requires an explicit commit amount.
	code, env = app.post(t, "/api/v1/wallet/lock",
		`{"uid":3,"assetid":"BTC","reason":"delayed settle"}`)
	require.Equal(t, 201, code)
	lockID = int64(env.Data["lockid"].(float64))

	code, env = app.post(t, "/api/v1/wallet/commit",
		fmt.Sprintf(`{"lockid":%d,"reason":"settle"}`, lockID))
	assert.Equal(t, 400, code)
	assert.Equal(t, "MISSING_DATA", env.ErrorCode)
}

func TestIntegration_CommitOverLockAmount(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.credit(t, 4, "BTC", "100")

	code, env := app.post(t, "/api/v1/wallet/lock",
		`{"uid":4,"assetid":"BTC","amount":"40","reason":"order hold"}`)
	require.Equal(t, 201, code)
	lockID := int64(env.Data["lockid"].(float64))

	code, env = app.post(t, "/api/v1/wallet/commit",
		fmt.Sprintf(`{"lockid":%d,"amount":"41","reason":"settle"}`, lockID))
	assert.Equal(t, 422, code)
	assert.Equal(t, "OUT_OF_RANGE", env.ErrorCode)

	// Failed commit leaves the balances untouched.
	total, locked, _ := app.balance(t, 4, "BTC")
	assert.Equal(t, "100", total)
	assert.Equal(t, "40", locked)
}

func TestIntegration_RelockGrowAndShrink(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.credit(t, 5, "BTC", "100")

	code, env := app.post(t, "/api/v1/wallet/lock",
		`{"uid":5,"assetid":"BTC","amount":"40","reason":"order hold"}`)
	require.Equal(t, 201, code)
	lockID := int64(env.Data["lockid"].(float64))

	// Grow to 60 via absolute amount.
	code, env = app.post(t, "/api/v1/wallet/relock",
		fmt.Sprintf(`{"lockid":%d,"amount":"60","reason":"order resized"}`, lockID))
	require.Equal(t, 200, code)
	assert.Equal(t, "40", env.Data["old_amount"])
	assert.Equal(t, "60", env.Data["new_amount"])

	// Shrink by 15 via signed delta.
	code, env = app.post(t, "/api/v1/wallet/relock",
		fmt.Sprintf(`{"lockid":%d,"delta":"-15","reason":"order shrunk"}`, lockID))
	require.Equal(t, 200, code)
	assert.Equal(t, "45", env.Data["new_amount"])

	_, locked, avbl := app.balance(t, 5, "BTC")
	assert.Equal(t, "45", locked)
	assert.Equal(t, "55", avbl)

	// Growing past available is rejected.
	code, env = app.post(t, "/api/v1/wallet/relock",
		fmt.Sprintf(`{"lockid":%d,"amount":"101","reason":"order resized"}`, lockID))
	assert.Equal(t, 402, code)
	assert.Equal(t, "INSUF_BALANCE", env.ErrorCode)
}

func TestIntegration_RelockRequiresExactlyOneAmount(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.credit(t, 6, "BTC", "100")

	code, env := app.post(t, "/api/v1/wallet/lock",
		`{"uid":6,"assetid":"BTC","amount":"40","reason":"order hold"}`)
	require.Equal(t, 201, code)
	lockID := int64(env.Data["lockid"].(float64))

	code, env = app.post(t, "/api/v1/wallet/relock",
		fmt.Sprintf(`{"lockid":%d,"amount":"60","delta":"5","reason":"order resized"}`, lockID))
	assert.Equal(t, 400, code)
	assert.Equal(t, "VALIDATION_ERROR", env.ErrorCode)

	code, env = app.post(t, "/api/v1/wallet/relock",
		fmt.Sprintf(`{"lockid":%d,"reason":"order resized"}`, lockID))
	assert.Equal(t, 400, code)
	assert.Equal(t, "VALIDATION_ERROR", env.ErrorCode)
}

func TestIntegration_BalancesIncludeUntouchedAssets(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.credit(t, 7, "BTC", "1.5")

	code, env := app.get(t, "/api/v1/balances?uid=7&assets=BTC,ETH")
	require.Equal(t, 200, code)
	balances := env.Data["balances"].([]interface{})
	require.Len(t, balances, 2)

	btc := balances[0].(map[string]interface{})
	assert.Equal(t, "BTC", btc["assetid"])
	assert.Equal(t, "1.5", btc["total"])

	eth := balances[1].(map[string]interface{})
	assert.Equal(t, "ETH", eth["assetid"])
	assert.Equal(t, "0", eth["total"])
	assert.Equal(t, "0", eth["avbl"])
}

func TestIntegration_BalancesDefaultToEnabledAssets(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.credit(t, 8, "BTC", "3")

	code, env := app.get(t, "/api/v1/balances?uid=8")
	require.Equal(t, 200, code)
	balances := env.Data["balances"].([]interface{})

	// XRP is disabled and must not appear.
	ids := make([]string, 0, len(balances))
	for _, b := range balances {
		ids = append(ids, b.(map[string]interface{})["assetid"].(string))
	}
	assert.ElementsMatch(t, []string{"BTC", "ETH"}, ids)
}

func TestIntegration_AssetListing(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	code, env := app.get(t, "/api/v1/assets")
	require.Equal(t, 200, code)
	assets := env.Data["assets"].([]interface{})
	assert.Len(t, assets, 3)

	code, env = app.get(t, "/api/v1/assets?enabled=true")
	require.Equal(t, 200, code)
	assert.Len(t, env.Data["assets"].([]interface{}), 2)

	code, env = app.get(t, "/api/v1/assets?q=bit")
	require.Equal(t, 200, code)
	assets = env.Data["assets"].([]interface{})
	require.Len(t, assets, 1)
	assert.Equal(t, "BTC", assets[0].(map[string]interface{})["assetid"])

	code, env = app.get(t, "/api/v1/assets?limit=2")
	require.Equal(t, 200, code)
	assert.Len(t, env.Data["assets"].([]interface{}), 2)
	assert.Equal(t, true, env.Data["more"])
}

func TestIntegration_WalletLogRecordsLifecycle(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.credit(t, 9, "BTC", "100")

	code, env := app.post(t, "/api/v1/wallet/lock",
		`{"uid":9,"assetid":"BTC","amount":"40","reason":"order hold"}`)
	require.Equal(t, 201, code)
	lockID := int64(env.Data["lockid"].(float64))

	code, _ = app.post(t, "/api/v1/wallet/commit",
		fmt.Sprintf(`{"lockid":%d,"amount":"30","reason":"order settled"}`, lockID))
	require.Equal(t, 200, code)

	entries := app.logRepo.entries()
	require.Len(t, entries, 3)
	assert.Equal(t, domain.LogOpCredit, entries[0].Operation)
	assert.Equal(t, domain.LogOpLock, entries[1].Operation)
	require.NotNil(t, entries[1].LockID)
	assert.Equal(t, lockID, *entries[1].LockID)
	assert.Equal(t, domain.LogOpCommit, entries[2].Operation)
	assert.True(t, entries[2].Amount.Equal(decimal.RequireFromString("30")))
}

func TestIntegration_RateLimitHeaders(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/api/v1/assets")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "120", resp.Header.Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Remaining"))
}
