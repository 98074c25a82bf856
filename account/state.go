// Package account defines the persisted per-account structure the sync
// engine reconciles against the ledger, and the store interface that
// holds it (spec.md §3).
package account

import (
	"errors"
	"fmt"
	"sort"

	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/txscript/v4/stdaddr"

	"github.com/iotaledger/iota-client-go/block"
)

// InputAddressNotFoundError is returned when a sync commit cannot find a
// synced address in the account's address sequence by binary search. This
// can only happen if an address was synced that was never derived, an
// invariant violation rather than an ordinary runtime condition.
type InputAddressNotFoundError struct {
	KeyIndex uint32
	Internal bool
}

func (e *InputAddressNotFoundError) Error() string {
	return fmt.Sprintf("account: no address at (key_index=%d, internal=%v)", e.KeyIndex, e.Internal)
}

// AddressEntry is one derived address in an account's internal or public
// sequence.
type AddressEntry struct {
	Address  stdaddr.Address
	KeyIndex uint32
	Internal bool
	Used     bool
}

// key returns the (KeyIndex, Internal) pair addresses are ordered and
// searched by.
func (e AddressEntry) key() (uint32, bool) {
	return e.KeyIndex, e.Internal
}

// AddressWithBalance is a derived address annotated with the total amount
// of the outputs it was found to control during a sync pass.
type AddressWithBalance struct {
	Address  stdaddr.Address
	KeyIndex uint32
	Internal bool
	Amount   dcrutil.Amount
}

// InclusionState is the lifecycle state of a tracked transaction.
type InclusionState uint8

const (
	InclusionStatePending InclusionState = iota
	InclusionStateConfirmed
	InclusionStateConflicting
	InclusionStateUnknownPruned
)

// TransactionData is the account's record of a transaction it has either
// submitted or observed.
type TransactionData struct {
	Payload        *block.TransactionPayload
	BlockID        block.BlockID
	InclusionState InclusionState
	Incoming       bool
	Timestamp      uint32
}

// OutputData is the account's record of a single ledger output.
type OutputData struct {
	OutputID      block.OutputID
	Output        block.Output
	Amount        dcrutil.Amount
	IsSpent       bool
	Address       stdaddr.Address
	KeyIndex      uint32
	Internal      bool
}

// AddressSequence is an ordered, binary-searchable sequence of addresses
// for one half (internal or public) of an account's derivation tree. The
// zero value is empty and ready to use.
//
// Entries must remain sorted and contiguous in KeyIndex within this half,
// per spec.md §3. Insert keeps them sorted by KeyIndex; it does not check
// that they are contiguous.
type AddressSequence struct {
	entries []AddressEntry
}

// Len returns the number of addresses in the sequence.
func (s *AddressSequence) Len() int { return len(s.entries) }

// At returns the entry at position i.
func (s *AddressSequence) At(i int) AddressEntry { return s.entries[i] }

// Insert adds e in key order. Callers are expected to insert in
// increasing KeyIndex order (the normal derivation order); Insert still
// finds the correct sorted position regardless.
func (s *AddressSequence) Insert(e AddressEntry) {
	i := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].KeyIndex >= e.KeyIndex
	})
	s.entries = append(s.entries, AddressEntry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = e
}

// find returns the exact index of the entry matching (keyIndex, internal),
// or -1 if none exists. Lookup must be exact per spec.md §3: a binary
// search landing on the wrong internal flag at the same key index does not
// count as a hit.
func (s *AddressSequence) find(keyIndex uint32, internal bool) int {
	i := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].KeyIndex >= keyIndex
	})
	for ; i < len(s.entries) && s.entries[i].KeyIndex == keyIndex; i++ {
		if s.entries[i].Internal == internal {
			return i
		}
	}
	return -1
}

// MarkUsed sets Used = true on the entry at (keyIndex, internal), failing
// with InputAddressNotFoundError if no such entry exists.
func (s *AddressSequence) MarkUsed(keyIndex uint32, internal bool) error {
	i := s.find(keyIndex, internal)
	if i < 0 {
		return &InputAddressNotFoundError{KeyIndex: keyIndex, Internal: internal}
	}
	s.entries[i].Used = true
	return nil
}

// State is the full persisted record of one account.
type State struct {
	Index uint32

	InternalAddresses AddressSequence
	PublicAddresses   AddressSequence

	AddressesWithBalance []AddressWithBalance

	Outputs        map[block.OutputID]OutputData
	UnspentOutputs map[block.OutputID]OutputData
	LockedOutputs  map[block.OutputID]struct{}

	Transactions        map[block.TransactionID]TransactionData
	PendingTransactions map[block.TransactionID]struct{}

	// LastSyncedMillis is the epoch-millisecond wall-clock time taken just
	// after the last successful sync was committed and saved, advanced only
	// on commit success.
	LastSyncedMillis int64
}

// NewState returns an empty, ready-to-sync account state for the given
// derivation index.
func NewState(index uint32) *State {
	return &State{
		Index:               index,
		Outputs:             make(map[block.OutputID]OutputData),
		UnspentOutputs:      make(map[block.OutputID]OutputData),
		LockedOutputs:       make(map[block.OutputID]struct{}),
		Transactions:        make(map[block.TransactionID]TransactionData),
		PendingTransactions: make(map[block.TransactionID]struct{}),
	}
}

// Balance is the account's current synthesized value view.
type Balance struct {
	TotalAmount dcrutil.Amount
}

// ErrAccountNotFound is returned by Store.Load when no state has been
// persisted for the requested account index.
var ErrAccountNotFound = errors.New("account: no persisted state for this index")

// Store is the persistence collaborator an AccountState is read from and
// committed to. Implementations must serialize concurrent writers
// themselves if shared across goroutines; the sync engine only ever
// issues one commit at a time per account, serialized by its own
// last-synced mutex (spec.md §5), but distinct accounts may commit
// concurrently.
type Store interface {
	Load(index uint32) (*State, error)
	Save(state *State) error
}
