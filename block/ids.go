// Package block defines the data model of the tangle: blocks, payloads,
// transaction essences, outputs and the identifiers that name them.
package block

import (
	"bytes"
	"encoding/hex"

	"github.com/decred/dcrd/chaincfg/chainhash"
)

// IDSize is the byte length of a BlockID or TransactionID, matching
// chainhash.Hash so both identifiers can reuse its comparison semantics.
const IDSize = chainhash.HashSize

// BlockID is the opaque content-hash identifier of a Block. Equality and
// ordering are by raw bytes; the zero value is never a valid block.
type BlockID [IDSize]byte

// String returns the lowercase hex encoding of the identifier.
func (id BlockID) String() string {
	return hex.EncodeToString(id[:])
}

// IsEqual returns whether id and other name the same block.
func (id BlockID) IsEqual(other BlockID) bool {
	return id == other
}

// Less reports whether id sorts before other when comparing raw bytes.
// Used to give BlockID a total order without relying on string formatting.
func (id BlockID) Less(other BlockID) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// TransactionID is the opaque content-hash identifier of a transaction
// essence. Same shape and semantics as BlockID.
type TransactionID [IDSize]byte

// String returns the lowercase hex encoding of the identifier.
func (id TransactionID) String() string {
	return hex.EncodeToString(id[:])
}

// IsEqual returns whether id and other name the same transaction.
func (id TransactionID) IsEqual(other TransactionID) bool {
	return id == other
}

// Less reports whether id sorts before other when comparing raw bytes.
func (id TransactionID) Less(other TransactionID) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// OutputID uniquely names a ledger output as the pair (TransactionID,
// index). Modeled on wire.OutPoint, with the index narrowed to uint16 per
// the protocol's output-index width.
type OutputID struct {
	TransactionID TransactionID
	Index         uint16
}

// IsEqual returns whether id and other name the same output.
func (id OutputID) IsEqual(other OutputID) bool {
	return id.TransactionID == other.TransactionID && id.Index == other.Index
}

// String returns a "txid:index" representation of the output id.
func (id OutputID) String() string {
	return id.TransactionID.String() + ":" + hex.EncodeToString([]byte{
		byte(id.Index >> 8), byte(id.Index),
	})
}
