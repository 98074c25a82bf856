package block

import "errors"

// InputCountMax is the protocol ceiling on the number of inputs a single
// transaction essence may reference.
const InputCountMax = 128

// ErrTooManyInputs is returned when a TransactionEssence is constructed
// with more than InputCountMax inputs.
var ErrTooManyInputs = errors.New("block: transaction essence exceeds InputCountMax inputs")

// InputKind distinguishes the two shapes an Input may take.
type InputKind uint8

const (
	// InputUtxo references a prior unspent output by id.
	InputUtxo InputKind = iota
	// InputTreasury references the protocol treasury. It never occurs
	// in a user-constructed transaction; encountering one where a Utxo
	// input is expected is an invariant violation (spec.md Design
	// Notes, §9).
	InputTreasury
)

// Input is either a Utxo(OutputID) or a Treasury reference.
type Input struct {
	Kind     InputKind
	OutputID OutputID // valid only when Kind == InputUtxo
}

// NewUtxoInput builds a Utxo-kind Input for the given output.
func NewUtxoInput(id OutputID) Input {
	return Input{Kind: InputUtxo, OutputID: id}
}

// TransactionEssence is the regular (only supported) transaction essence
// shape: inputs, outputs, and an optional embedded payload.
type TransactionEssence struct {
	id      TransactionID
	Inputs  []Input
	Outputs []Output
	Payload Payload
}

// NewTransactionEssence validates InputCountMax and constructs an essence
// with the given content-hash id. Hashing the essence's bytes into id is
// the binary codec's job and out of this library's scope; callers obtain
// id from that codec (or from a SecretManager/BlockBuilder collaborator).
func NewTransactionEssence(id TransactionID, inputs []Input, outputs []Output, payload Payload) (TransactionEssence, error) {
	if len(inputs) > InputCountMax {
		return TransactionEssence{}, ErrTooManyInputs
	}
	return TransactionEssence{
		id:      id,
		Inputs:  inputs,
		Outputs: outputs,
		Payload: payload,
	}, nil
}

// ID returns the transaction identifier of this essence.
func (e *TransactionEssence) ID() TransactionID { return e.id }
