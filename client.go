// Package iotaclient ties the library's components together behind one
// configuration: BlockBuilder, InputSelector, InclusionTracker, and
// AccountSyncEngine all driven from the same NodeAPI, PowEngine, and
// SecretManager collaborators (spec.md §2).
package iotaclient

import (
	"context"
	"time"

	"github.com/iotaledger/iota-client-go/account"
	"github.com/iotaledger/iota-client-go/accountsync"
	"github.com/iotaledger/iota-client-go/block"
	"github.com/iotaledger/iota-client-go/blockbuilder"
	"github.com/iotaledger/iota-client-go/clock"
	"github.com/iotaledger/iota-client-go/inclusion"
	"github.com/iotaledger/iota-client-go/nodeapi"
)

// Config bundles every external collaborator the library needs. Only
// Node is mandatory; Pow and SecretManager are required for any operation
// that builds or retries a transaction block, and Store is required for
// account synchronization.
type Config struct {
	Node          nodeapi.NodeAPI
	Pow           nodeapi.PowEngine
	SecretManager nodeapi.SecretManager
	Store         account.Store
	Consolidator  accountsync.OutputConsolidator

	MinPowScore            float64
	SignerRequiresApproval bool
	MinSyncInterval        time.Duration

	RetryInterval    time.Duration
	RetryMaxAttempts int

	Now       clock.Now
	NowMillis accountsync.NowMillis
}

// Client is the entry point a caller constructs once and shares across
// goroutines; its collaborators (NodeAPI chief among them) are expected
// to be internally pooled and safe for concurrent use (spec.md §5).
type Client struct {
	cfg Config
}

// New returns a Client backed by cfg.
func New(cfg Config) *Client {
	return &Client{cfg: cfg}
}

// NewBlockBuilder returns a Builder configured to assemble, sign, and
// post a transaction or tagged-data block, given a caller-supplied
// transaction-essence id function (id derivation is the binary codec's
// job and out of this library's scope; see block.NewTransactionEssence).
func (c *Client) NewBlockBuilder(essenceID func([]block.Input, []block.Output) block.TransactionID) *blockbuilder.Builder {
	return blockbuilder.New(blockbuilder.Config{
		Node:          c.cfg.Node,
		Pow:           c.cfg.Pow,
		SecretManager: c.cfg.SecretManager,
		MinPowScore:   c.cfg.MinPowScore,
	}, essenceID)
}

// InclusionTracker returns a Tracker sharing this Client's Node and Pow
// collaborators.
func (c *Client) InclusionTracker() *inclusion.Tracker {
	return inclusion.New(inclusion.Config{
		Node:        c.cfg.Node,
		Pow:         c.cfg.Pow,
		MinPowScore: c.cfg.MinPowScore,
	})
}

// AccountSyncEngine returns an Engine for the account at index, sharing
// this Client's Node, Store, and consolidation configuration.
func (c *Client) AccountSyncEngine(index uint32) *accountsync.Engine {
	return accountsync.New(accountsync.Config{
		Node:                   c.cfg.Node,
		Store:                  c.cfg.Store,
		Consolidator:           c.cfg.Consolidator,
		SignerRequiresApproval: c.cfg.SignerRequiresApproval,
		MinSyncInterval:        c.cfg.MinSyncInterval,
		Now:                    c.cfg.NowMillis,
	}, index)
}

// RetryUntilIncluded drives id to confirmation, using Config's
// RetryInterval/RetryMaxAttempts overrides in place of
// inclusion's own defaults when set.
func (c *Client) RetryUntilIncluded(ctx context.Context, id block.BlockID) ([]inclusion.Attachment, error) {
	return c.InclusionTracker().RetryUntilIncluded(ctx, id, c.retryInterval(), c.retryMaxAttempts())
}

// retryInterval and retryMaxAttempts resolve Config's overrides down to
// inclusion's own defaults, mirroring retry_until_included's optional
// interval/max_attempts parameters (spec.md §4.3).
func (c *Client) retryInterval() time.Duration {
	if c.cfg.RetryInterval > 0 {
		return c.cfg.RetryInterval
	}
	return inclusion.DefaultRetryUntilIncludedInterval
}

func (c *Client) retryMaxAttempts() int {
	if c.cfg.RetryMaxAttempts > 0 {
		return c.cfg.RetryMaxAttempts
	}
	return inclusion.DefaultRetryUntilIncludedMaxAttempts
}
