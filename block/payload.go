package block

// Payload is the variant type a Block optionally carries. A block with
// no payload at all is valid — it is a bare "promote" block.
type Payload interface {
	isPayload()
}

// TransactionPayload carries a signed transaction essence.
type TransactionPayload struct {
	Essence TransactionEssence
	Unlocks []Unlock
}

func (*TransactionPayload) isPayload() {}

// ID returns the transaction identifier of the essence this payload
// carries.
func (p *TransactionPayload) ID() TransactionID {
	return p.Essence.ID()
}

// TaggedDataPayload carries an arbitrary tag/data pair with no ledger
// effect.
type TaggedDataPayload struct {
	Tag  []byte
	Data []byte
}

func (*TaggedDataPayload) isPayload() {}

// MilestonePayload marks a block as a milestone issued by the coordinator
// process; its internals are outside this library's concern.
type MilestonePayload struct {
	Index     uint32
	Timestamp uint32
}

func (*MilestonePayload) isPayload() {}

// TreasuryPayload moves funds in or out of the protocol treasury; outside
// this library's concern beyond being a recognized, never-constructed
// variant.
type TreasuryPayload struct{}

func (*TreasuryPayload) isPayload() {}

// Unlock authorizes the corresponding input in a TransactionEssence.
// Its internal shape (signature vs. reference) is part of the binary
// codec this library does not implement; it is carried opaquely.
type Unlock struct {
	Raw []byte
}
