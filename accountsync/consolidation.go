package accountsync

import (
	"context"

	"github.com/iotaledger/iota-client-go/account"
)

// OutputConsolidator merges an account's many small unspent outputs into
// fewer, larger ones by submitting consolidation transactions. It is an
// injected collaborator: the engine only decides whether to invoke it
// (spec.md §4.5 step 4; the decision itself is the SignerRequiresApproval
// gate below).
type OutputConsolidator interface {
	ConsolidateOutputs(ctx context.Context, state *account.State) error
}

// NoopConsolidator performs no consolidation. It is the zero-cost default
// for callers that have not wired a real consolidator.
type NoopConsolidator struct{}

// ConsolidateOutputs does nothing.
func (NoopConsolidator) ConsolidateOutputs(ctx context.Context, state *account.State) error {
	return nil
}
