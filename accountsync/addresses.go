package accountsync

import (
	"context"

	"github.com/decred/dcrd/dcrutil/v4"

	"github.com/iotaledger/iota-client-go/account"
	"github.com/iotaledger/iota-client-go/nodeapi"
)

// DefaultGapLimit is the number of consecutive unused addresses past the
// last used one a sync pass still checks before stopping, per the usual
// BIP-32-style gap-limit convention.
const DefaultGapLimit = 20

// addressesToSync computes the (key_index, internal) pairs to check this
// pass: in each half, every already-used address at or above
// options.AddressStartIndex, plus the first GapLimit addresses of each run
// of consecutive unused ones at or above it (a used address starts a new
// count), plus any explicitly requested addresses.
func addressesToSync(state *account.State, opts SyncOptions) []account.AddressEntry {
	gapLimit := opts.GapLimit
	if gapLimit == 0 {
		gapLimit = DefaultGapLimit
	}

	var out []account.AddressEntry
	out = append(out, halfToSync(&state.PublicAddresses, opts.AddressStartIndex, gapLimit)...)
	out = append(out, halfToSync(&state.InternalAddresses, opts.AddressStartIndex, gapLimit)...)
	out = append(out, opts.IncludeAddresses...)
	return out
}

func halfToSync(seq *account.AddressSequence, startIndex, gapLimit uint32) []account.AddressEntry {
	var out []account.AddressEntry
	unusedStreak := uint32(0)

	for i := 0; i < seq.Len(); i++ {
		e := seq.At(i)
		if e.KeyIndex < startIndex {
			continue
		}

		if e.Used {
			unusedStreak = 0
			out = append(out, e)
			continue
		}

		if unusedStreak < gapLimit {
			out = append(out, e)
			unusedStreak++
		}
	}

	return out
}

// discoverOutputs queries the indexer for every output controlled by each
// address to sync, fetches the outputs, and sums their amounts into an
// AddressWithBalance (spec.md §4.5 step 3). It also returns the flat list
// of observed outputs, converted to account.OutputData, for the commit
// step.
func discoverOutputs(
	ctx context.Context,
	node nodeapi.NodeAPI,
	addresses []account.AddressEntry,
) ([]account.AddressWithBalance, []account.OutputData, error) {
	var withBalance []account.AddressWithBalance
	var allOutputs []account.OutputData

	for _, addr := range addresses {
		addrStr := addr.Address.String()

		ids, err := node.BasicOutputIDs(ctx, []nodeapi.QueryFilter{{Address: addrStr, HasAddress: true}})
		if err != nil {
			return nil, nil, err
		}

		responses, err := node.GetOutputs(ctx, ids)
		if err != nil {
			return nil, nil, err
		}

		var total dcrutil.Amount
		for _, r := range responses {
			total += r.Output.Amount
			allOutputs = append(allOutputs, account.OutputData{
				OutputID: r.OutputID(),
				Output:   r.Output,
				Amount:   r.Output.Amount,
				IsSpent:  r.IsSpent,
				Address:  addr.Address,
				KeyIndex: addr.KeyIndex,
				Internal: addr.Internal,
			})
		}

		withBalance = append(withBalance, account.AddressWithBalance{
			Address:  addr.Address,
			KeyIndex: addr.KeyIndex,
			Internal: addr.Internal,
			Amount:   total,
		})
	}

	return withBalance, allOutputs, nil
}
