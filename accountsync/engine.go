// Package accountsync reconciles a single account's on-chain state
// (addresses, outputs, pending transactions) against the ledger
// (spec.md §4.5). One Engine tracks one account, mirroring the way the
// teacher's SPVSyncer is scoped to one wallet.
package accountsync

import (
	"context"
	"sync"
	"time"

	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/slog"

	"github.com/iotaledger/iota-client-go/account"
	"github.com/iotaledger/iota-client-go/build"
	"github.com/iotaledger/iota-client-go/nodeapi"
)

var log = build.NewSubLogger("ASYN", nil)

// UseLogger sets the package-level logger for the accountsync package.
func UseLogger(logger slog.Logger) {
	log = logger
}

// DefaultMinSyncInterval is the default lower bound between effective
// syncs of the same account.
const DefaultMinSyncInterval = 2 * time.Second

// SyncOptions parameterizes a single SyncAccount call.
type SyncOptions struct {
	// ForceSyncing bypasses the MinSyncInterval cache gate.
	ForceSyncing bool

	// AddressStartIndex is the lowest key index eligible to sync this
	// pass; addresses_with_balance entries below it are carried over
	// from the previous state untouched.
	AddressStartIndex uint32

	// GapLimit overrides DefaultGapLimit when nonzero.
	GapLimit uint32

	// IncludeAddresses are synced unconditionally this pass regardless
	// of gap-limit or used state.
	IncludeAddresses []account.AddressEntry
}

// NowMillis returns the current wall-clock time as epoch milliseconds.
// Exists so tests can substitute a deterministic clock.
type NowMillis func() int64

// Config bundles the injected collaborators an Engine needs.
type Config struct {
	Node         nodeapi.NodeAPI
	Store        account.Store
	Consolidator OutputConsolidator

	// SignerRequiresApproval gates the consolidation hook off: signer
	// families that require per-transaction user approval (e.g. a
	// hardware wallet) must not have consolidation transactions
	// generated on their behalf without being asked (spec.md §4.5
	// step 4).
	SignerRequiresApproval bool

	MinSyncInterval time.Duration
	Now             NowMillis
}

// Engine reconciles one account's persisted state against the ledger.
type Engine struct {
	cfg   Config
	index uint32

	// mu serializes concurrent SyncAccount calls for this account; it is
	// held for the full duration of a non-cached sync, matching the
	// single serialization point spec.md §5 describes. Distinct
	// accounts get distinct Engines and never contend with each other.
	mu sync.Mutex
}

// New returns an Engine for the account at index, backed by cfg.
func New(cfg Config, index uint32) *Engine {
	if cfg.MinSyncInterval <= 0 {
		cfg.MinSyncInterval = DefaultMinSyncInterval
	}
	if cfg.Consolidator == nil {
		cfg.Consolidator = NoopConsolidator{}
	}
	return &Engine{cfg: cfg, index: index}
}

// SyncAccount reconciles this account's state against the ledger and
// returns its resulting balance. If the previous sync completed less
// than MinSyncInterval ago and options.ForceSyncing is false, it returns
// the cached balance without touching the network (spec.md §4.5).
func (e *Engine) SyncAccount(ctx context.Context, opts SyncOptions) (account.Balance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.cfg.Store.Load(e.index)
	if err != nil {
		return account.Balance{}, err
	}

	now := e.now()
	elapsed := now - state.LastSyncedMillis
	if elapsed < e.cfg.MinSyncInterval.Milliseconds() && !opts.ForceSyncing {
		log.Debugf("account %d synced %dms ago, within MinSyncInterval; returning cached balance", e.index, elapsed)
		return balanceOf(state), nil
	}

	// Transactions first, so confirmations they reveal are visible to
	// the output pass that follows (spec.md §4.5 step 1).
	txResult, err := syncTransactions(ctx, e.cfg.Node, state)
	if err != nil {
		return account.Balance{}, err
	}

	toSync := addressesToSync(state, opts)
	log.Debugf("account %d syncing %d addresses", e.index, len(toSync))

	addressesWithBalance, outputs, err := discoverOutputs(ctx, e.cfg.Node, toSync)
	if err != nil {
		return account.Balance{}, err
	}

	if !e.cfg.SignerRequiresApproval {
		if err := e.cfg.Consolidator.ConsolidateOutputs(ctx, state); err != nil {
			return account.Balance{}, err
		}
	}

	if err := commit(state, addressesWithBalance, outputs, txResult, opts); err != nil {
		return account.Balance{}, err
	}

	if err := e.cfg.Store.Save(state); err != nil {
		return account.Balance{}, err
	}

	state.LastSyncedMillis = e.now()

	return balanceOf(state), nil
}

func (e *Engine) now() int64 {
	if e.cfg.Now != nil {
		return e.cfg.Now()
	}
	return time.Now().UnixMilli()
}

func balanceOf(state *account.State) account.Balance {
	var total dcrutil.Amount
	for _, o := range state.UnspentOutputs {
		total += o.Amount
	}
	return account.Balance{TotalAmount: total}
}
