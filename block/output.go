package block

import (
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/txscript/v4/stdaddr"
)

// OutputKind distinguishes the output variants the ledger supports.
type OutputKind uint8

const (
	// OutputBasic is a plain value output, optionally unlock-gated.
	OutputBasic OutputKind = iota
	// OutputAccount represents on-chain account state.
	OutputAccount
	// OutputFoundry represents a native-token minting foundry.
	OutputFoundry
	// OutputNFT represents a non-fungible token.
	OutputNFT
	// OutputTreasury represents the protocol treasury output. It never
	// appears as a selectable UTXO in user-constructed transactions.
	OutputTreasury
)

// UnlockConditions gates who may claim an output, and when. All three
// conditions are optional; a Basic output with none set is spendable by
// ControllingAddress at any time.
type UnlockConditions struct {
	// Expiration, if set, transfers control of the output from
	// ControllingAddress to ReturnAddress once UnixTime has passed.
	Expiration *ExpirationCondition

	// Timelock, if set, makes the output unspendable until UnixTime.
	Timelock *TimelockCondition

	// StorageDepositReturn, if set, requires the unlocking transaction
	// to return Amount to ReturnAddress.
	StorageDepositReturn *StorageDepositReturnCondition
}

// HasExpiration reports whether an Expiration condition is attached.
func (c UnlockConditions) HasExpiration() bool { return c.Expiration != nil }

// HasTimelock reports whether a Timelock condition is attached.
func (c UnlockConditions) HasTimelock() bool { return c.Timelock != nil }

// HasStorageDepositReturn reports whether a StorageDepositReturn condition
// is attached.
func (c UnlockConditions) HasStorageDepositReturn() bool {
	return c.StorageDepositReturn != nil
}

// ExpirationCondition hands control of an output to ReturnAddress once
// UnixTime has passed.
type ExpirationCondition struct {
	ReturnAddress stdaddr.Address
	UnixTime      uint32
}

// TimelockCondition makes an output unspendable until UnixTime.
type TimelockCondition struct {
	UnixTime uint32
}

// StorageDepositReturnCondition requires the spending transaction to pay
// Amount back to ReturnAddress.
type StorageDepositReturnCondition struct {
	ReturnAddress stdaddr.Address
	Amount        dcrutil.Amount
}

// Output is a single ledger output. Every variant carries an amount, a
// controlling address, and zero or more unlock conditions.
type Output struct {
	Kind    OutputKind
	Amount  dcrutil.Amount
	Address stdaddr.Address

	Conditions UnlockConditions
}

// SpendableByAddressNow reports whether addr can claim this output
// unilaterally at currentUnixTime, honoring Expiration and Timelock.
// StorageDepositReturn does not change who may spend the output, only
// what the unlocking transaction must also pay out, so it is not
// considered here.
func (o *Output) SpendableByAddressNow(addr stdaddr.Address, currentUnixTime uint32) bool {
	if o.Conditions.Timelock != nil && currentUnixTime < o.Conditions.Timelock.UnixTime {
		return false
	}

	controller := o.Address
	if o.Conditions.Expiration != nil && currentUnixTime >= o.Conditions.Expiration.UnixTime {
		controller = o.Conditions.Expiration.ReturnAddress
	}

	return addressesEqual(controller, addr)
}

func addressesEqual(a, b stdaddr.Address) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}

// LedgerInclusionState is the disposition of a transaction or output as
// reported by a milestone-confirmed node view.
type LedgerInclusionState uint8

const (
	// InclusionUnknown means the node offered no opinion.
	InclusionUnknown LedgerInclusionState = iota
	// InclusionIncluded means the transaction is confirmed.
	InclusionIncluded
	// InclusionNoTransaction means the block carries no transaction
	// payload, so it is either a milestone reference or a promotion.
	InclusionNoTransaction
	// InclusionConflicting means the transaction conflicts with already
	// confirmed history.
	InclusionConflicting
)

// OutputResponse is an Output plus the metadata a node attaches to it.
type OutputResponse struct {
	Output Output

	TransactionID TransactionID
	OutputIndex   uint16
	IsSpent       bool

	// LedgerInclusionState is nil when the node has no opinion.
	LedgerInclusionState *LedgerInclusionState
}

// OutputID returns the identifier of the output this response describes.
func (r *OutputResponse) OutputID() OutputID {
	return OutputID{TransactionID: r.TransactionID, Index: r.OutputIndex}
}

// BlockMetadata is the node's view of a block's confirmation progress.
// Absence of a field (nil) means "unknown"; true means the node
// recommends the action.
type BlockMetadata struct {
	LedgerInclusionState *LedgerInclusionState
	ShouldPromote        *bool
	ShouldReattach       *bool
}

func boolValue(b *bool) bool {
	return b != nil && *b
}

// Promote reports whether the node recommends promoting this block.
func (m *BlockMetadata) Promote() bool { return boolValue(m.ShouldPromote) }

// Reattach reports whether the node recommends reattaching this block.
func (m *BlockMetadata) Reattach() bool { return boolValue(m.ShouldReattach) }
