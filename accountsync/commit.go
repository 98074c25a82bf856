package accountsync

import (
	"github.com/iotaledger/iota-client-go/account"
)

// commit applies one sync pass's results to state, implementing spec.md
// §4.5 step 5 exactly. All network I/O has already completed by the time
// commit runs; commit itself performs only synchronous, local state
// transitions so that a caller holding state's write lock around this
// call never blocks on I/O while holding it (spec.md §5).
func commit(
	state *account.State,
	addressesWithBalance []account.AddressWithBalance,
	outputs []account.OutputData,
	txResult TransactionSyncResult,
	opts SyncOptions,
) error {
	for _, a := range addressesWithBalance {
		if a.Internal {
			if err := state.InternalAddresses.MarkUsed(a.KeyIndex, true); err != nil {
				return err
			}
		} else {
			if err := state.PublicAddresses.MarkUsed(a.KeyIndex, false); err != nil {
				return err
			}
		}
	}

	retained := state.AddressesWithBalance[:0:0]
	for _, a := range state.AddressesWithBalance {
		if a.KeyIndex < opts.AddressStartIndex {
			retained = append(retained, a)
		}
	}
	state.AddressesWithBalance = append(retained, addressesWithBalance...)

	for _, o := range outputs {
		state.Outputs[o.OutputID] = o
		if !o.IsSpent {
			state.UnspentOutputs[o.OutputID] = o
		}
	}

	for _, u := range txResult.UpdatedTransactions {
		switch u.Data.InclusionState {
		case account.InclusionStateConfirmed, account.InclusionStateConflicting:
			delete(state.PendingTransactions, u.ID)
		}
		state.Transactions[u.ID] = u.Data
	}

	for _, id := range txResult.SpentOutputIDs {
		if o, ok := state.Outputs[id]; ok {
			o.IsSpent = true
			state.Outputs[id] = o
		}
		delete(state.LockedOutputs, id)
		delete(state.UnspentOutputs, id)
	}

	for _, id := range txResult.OutputIDsToUnlock {
		if o, ok := state.Outputs[id]; ok {
			o.IsSpent = true
			state.Outputs[id] = o
		}
		delete(state.LockedOutputs, id)
		delete(state.UnspentOutputs, id)
	}

	return nil
}
