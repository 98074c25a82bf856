package block

// Block is a parents-list plus an optional Payload and a proof-of-work
// nonce. A Block with no payload ("promote" block) is valid.
type Block struct {
	Parents []BlockID
	Payload Payload
	Nonce   uint64
}

// TransactionPayload returns the block's payload as a *TransactionPayload
// and true, or (nil, false) if the block carries a different (or no)
// payload variant.
func (b *Block) TransactionPayload() (*TransactionPayload, bool) {
	tp, ok := b.Payload.(*TransactionPayload)
	return tp, ok
}
