// Package nodeapi defines the narrow, external collaborator surfaces this
// library drives: the node's request/response API, the proof-of-work
// engine, and the secret manager. None of these are implemented here —
// transport, PoW computation, and key custody are all out of scope (see
// spec.md §1) — only the interfaces the rest of the module is written
// against.
package nodeapi

import (
	"context"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v3"
	"github.com/decred/dcrd/txscript/v4/stdaddr"

	"github.com/iotaledger/iota-client-go/block"
)

// ErrBlockNotIncluded is returned by GetIncludedBlock when the queried
// transaction has not (yet) been referenced by any confirmed block. It is
// not a transport failure: InclusionTracker treats it as "keep waiting,"
// never as a reason to abort (spec.md §4.3 step 3).
var ErrBlockNotIncluded = errors.New("nodeapi: transaction not yet included in any block")

// QueryFilter narrows an indexer query. Only the filters the core needs
// are modeled; a real indexer accepts others (spec.md §6).
type QueryFilter struct {
	Address                 string
	HasAddress              bool
	HasExpiration           *bool
	HasTimelock             *bool
	HasStorageDepositReturn *bool
}

// AddressFilter returns the QueryFilters (one per criterion) matching
// outputs controlled by addr that carry none of the three
// offline-signing-unsafe unlock conditions.
// This is the exact filter spec.md §4.1 requires InputSelector to use.
func AddressFilter(addr string) []QueryFilter {
	no := false
	return []QueryFilter{
		{Address: addr, HasAddress: true},
		{HasExpiration: &no},
		{HasTimelock: &no},
		{HasStorageDepositReturn: &no},
	}
}

// ProtocolParameters carries the subset of node-reported protocol
// parameters the core consults.
type ProtocolParameters struct {
	MinPowScore   float64
	TokenSupply   uint64
	InputCountMax uint16
}

// NodeInfo is the response shape of GET /info, narrowed to the fields
// this library reads.
type NodeInfo struct {
	LatestMilestoneTimestamp uint32
	Protocol                 ProtocolParameters
}

// NodeAPI is the request/response surface consumed from a tangle node.
// Implementations are expected to be safely shareable across goroutines
// and internally pooled (spec.md §5).
type NodeAPI interface {
	GetBlock(ctx context.Context, id block.BlockID) (*block.Block, error)
	GetBlockMetadata(ctx context.Context, id block.BlockID) (*block.BlockMetadata, error)
	PostBlock(ctx context.Context, b *block.Block) (block.BlockID, error)
	GetTips(ctx context.Context) ([]block.BlockID, error)
	GetOutputs(ctx context.Context, ids []block.OutputID) ([]block.OutputResponse, error)
	BasicOutputIDs(ctx context.Context, filters []QueryFilter) ([]block.OutputID, error)
	GetInfo(ctx context.Context) (*NodeInfo, error)
	// GetIncludedBlock returns the confirmed block carrying txID, or
	// ErrBlockNotIncluded if no block carrying it has been confirmed yet.
	GetIncludedBlock(ctx context.Context, txID block.TransactionID) (block.BlockID, *block.Block, error)
}

// PowEngine performs proof-of-work over a candidate block, given parent
// tips, a minimum acceptable score, and an optional payload, returning a
// fully formed block whose nonce meets the score.
type PowEngine interface {
	// DoPow returns the finished block and whether PoW ran locally. When
	// it did not run locally (remote PoW), the node may have rewritten
	// parents and nonce, so callers must refetch the posted block by its
	// returned id rather than trust the one DoPow returned.
	DoPow(ctx context.Context, tips []block.BlockID, minScore float64, payload block.Payload) (*block.Block, bool, error)
}

// SecretManager derives addresses and signs transaction essences. Key
// derivation and storage are out of scope; only the signing surface the
// core needs is modeled.
type SecretManager interface {
	SignTransactionEssence(ctx context.Context, essence *block.TransactionEssence) ([]block.Unlock, error)
	Sign(ctx context.Context, pubKey *secp256k1.PublicKey, msg []byte) ([]byte, error)
}

// AddressGenerator is the narrow slice of SecretManager-driven address
// derivation the account-sync address-selection step needs.
type AddressGenerator interface {
	DeriveAddress(ctx context.Context, keyIndex uint32, internal bool) (stdaddr.Address, error)
}
