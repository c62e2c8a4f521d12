package integration

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// inMemoryStore backs all in-memory repos with one shared mutex. Each repo
// method runs atomically under the mutex, mirroring the per-statement
// atomicity of the conditional UPDATEs in the postgres adapter. Cross-call
// atomicity comes from the same guard predicates the SQL uses, so the
// concurrency tests exercise the real invariants without a database.

type balanceKey struct {
	uid     int64
	assetID string
}

type balanceRow struct {
	total  decimal.Decimal
	locked decimal.Decimal
}

type inMemoryStore struct {
	mu         sync.Mutex
	balances   map[balanceKey]*balanceRow
	locks      map[int64]*domain.Lock
	nextLockID int64
	log        []domain.LogEntry
	assets     map[string]domain.Asset
}

func newInMemoryStore() *inMemoryStore {
	return &inMemoryStore{
		balances: make(map[balanceKey]*balanceRow),
		locks:    make(map[int64]*domain.Lock),
		assets:   make(map[string]domain.Asset),
	}
}

func (s *inMemoryStore) seedAsset(a domain.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[a.AssetID] = a
}

// --- In-Memory Balance Repo ---

type inMemoryBalanceRepo struct {
	store *inMemoryStore
}

// Credit mirrors the insert-on-conflict upsert: create on first credit,
// increment otherwise, never an error for a concurrent first credit.
func (r *inMemoryBalanceRepo) Credit(ctx context.Context, tx pgx.Tx, uid int64, assetID string, amount decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := balanceKey{uid, assetID}
	row, ok := r.store.balances[key]
	if !ok {
		r.store.balances[key] = &balanceRow{total: amount, locked: decimal.Zero}
		return nil
	}
	row.total = row.total.Add(amount)
	return nil
}

func (r *inMemoryBalanceRepo) Debit(ctx context.Context, tx pgx.Tx, uid int64, assetID string, amount decimal.Decimal) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	row, ok := r.store.balances[balanceKey{uid, assetID}]
	if !ok || row.total.Sub(row.locked).LessThan(amount) {
		return false, nil
	}
	row.total = row.total.Sub(amount)
	return true, nil
}

func (r *inMemoryBalanceRepo) AddLocked(ctx context.Context, tx pgx.Tx, uid int64, assetID string, amount decimal.Decimal) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	row, ok := r.store.balances[balanceKey{uid, assetID}]
	if !ok || row.total.Sub(row.locked).LessThan(amount) {
		return false, nil
	}
	row.locked = row.locked.Add(amount)
	return true, nil
}

func (r *inMemoryBalanceRepo) LockAvailable(ctx context.Context, tx pgx.Tx, uid int64, assetID string) (decimal.Decimal, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	row, ok := r.store.balances[balanceKey{uid, assetID}]
	if !ok {
		return decimal.Zero, false, nil
	}
	available := row.total.Sub(row.locked)
	if !available.IsPositive() {
		return decimal.Zero, false, nil
	}
	row.locked = row.total
	return available, true, nil
}

func (r *inMemoryBalanceRepo) SubLocked(ctx context.Context, tx pgx.Tx, uid int64, assetID string, amount decimal.Decimal) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	row, ok := r.store.balances[balanceKey{uid, assetID}]
	if !ok || row.locked.LessThan(amount) {
		return false, nil
	}
	row.locked = row.locked.Sub(amount)
	return true, nil
}

func (r *inMemoryBalanceRepo) CommitLocked(ctx context.Context, tx pgx.Tx, uid int64, assetID string, lockAmount, debitAmount decimal.Decimal) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	row, ok := r.store.balances[balanceKey{uid, assetID}]
	if !ok || row.locked.LessThan(lockAmount) {
		return false, nil
	}
	row.locked = row.locked.Sub(lockAmount)
	row.total = row.total.Sub(debitAmount)
	return true, nil
}

func (r *inMemoryBalanceRepo) AdjustLocked(ctx context.Context, tx pgx.Tx, uid int64, assetID string, delta decimal.Decimal) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	row, ok := r.store.balances[balanceKey{uid, assetID}]
	if !ok {
		return false, nil
	}
	if delta.IsPositive() && row.total.Sub(row.locked).LessThan(delta) {
		return false, nil
	}
	row.locked = row.locked.Add(delta)
	return true, nil
}

func (r *inMemoryBalanceRepo) Get(ctx context.Context, uid int64, assetID string) (*domain.Balance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	row, ok := r.store.balances[balanceKey{uid, assetID}]
	if !ok {
		return nil, nil
	}
	return &domain.Balance{UID: uid, AssetID: assetID, Total: row.total, Locked: row.locked}, nil
}

func (r *inMemoryBalanceRepo) ListByUser(ctx context.Context, uid int64) (map[string]*domain.Balance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make(map[string]*domain.Balance)
	for key, row := range r.store.balances {
		if key.uid != uid {
			continue
		}
		result[key.assetID] = &domain.Balance{UID: uid, AssetID: key.assetID, Total: row.total, Locked: row.locked}
	}
	return result, nil
}

// --- In-Memory Lock Repo ---

type inMemoryLockRepo struct {
	store *inMemoryStore
}

func (r *inMemoryLockRepo) Insert(ctx context.Context, tx pgx.Tx, lock *domain.Lock) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextLockID++
	stored := *lock
	stored.LockID = r.store.nextLockID
	r.store.locks[stored.LockID] = &stored
	return stored.LockID, nil
}

func (r *inMemoryLockRepo) DeleteReturning(ctx context.Context, tx pgx.Tx, lockID int64) (*domain.Lock, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	lock, ok := r.store.locks[lockID]
	if !ok {
		return nil, nil
	}
	delete(r.store.locks, lockID)
	copied := *lock
	return &copied, nil
}

func (r *inMemoryLockRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, lockID int64) (*domain.Lock, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	lock, ok := r.store.locks[lockID]
	if !ok {
		return nil, nil
	}
	copied := *lock
	return &copied, nil
}

func (r *inMemoryLockRepo) UpdateAmount(ctx context.Context, tx pgx.Tx, lockID int64, amount decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	lock, ok := r.store.locks[lockID]
	if !ok {
		return fmt.Errorf("lock not found: %d", lockID)
	}
	lock.Amount = amount
	return nil
}

// --- In-Memory Wallet Log Repo ---

type inMemoryWalletLogRepo struct {
	store *inMemoryStore
}

func (r *inMemoryWalletLogRepo) Append(ctx context.Context, tx pgx.Tx, entry *domain.LogEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored := *entry
	stored.LogID = int64(len(r.store.log) + 1)
	r.store.log = append(r.store.log, stored)
	return nil
}

func (r *inMemoryWalletLogRepo) entries() []domain.LogEntry {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]domain.LogEntry, len(r.store.log))
	copy(out, r.store.log)
	return out
}

// --- In-Memory Asset Repo ---

type inMemoryAssetRepo struct {
	store *inMemoryStore
}

func (r *inMemoryAssetRepo) Get(ctx context.Context, assetID string) (*domain.Asset, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.assets[assetID]
	if !ok {
		return nil, nil
	}
	copied := a
	return &copied, nil
}

func (r *inMemoryAssetRepo) List(ctx context.Context, params ports.AssetListParams) ([]domain.Asset, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var all []domain.Asset
	query := strings.ToUpper(params.Query)
	for _, a := range r.store.assets {
		if params.EnabledOnly && !a.Enabled {
			continue
		}
		if query != "" && !strings.Contains(a.AssetID, query) && !strings.Contains(strings.ToUpper(a.Name), query) {
			continue
		}
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].AssetID < all[j].AssetID })

	if params.Offset >= len(all) {
		return []domain.Asset{}, false, nil
	}
	all = all[params.Offset:]
	if params.Limit > 0 && len(all) > params.Limit {
		return all[:params.Limit], true, nil
	}
	return all, false, nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
