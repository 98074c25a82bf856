package accountsync

import (
	"context"
	"errors"

	"github.com/iotaledger/iota-client-go/account"
	"github.com/iotaledger/iota-client-go/block"
	"github.com/iotaledger/iota-client-go/nodeapi"
)

// TransactionSyncResult is the outcome of a transaction-sync pass: the
// transactions whose tracked state changed, and the outputs that
// changed as a result (spec.md §4.5 step 1).
type TransactionSyncResult struct {
	UpdatedTransactions []transactionUpdate
	SpentOutputIDs      []block.OutputID
	OutputIDsToUnlock   []block.OutputID
}

type transactionUpdate struct {
	ID   block.TransactionID
	Data account.TransactionData
}

// syncTransactions resolves every pending transaction's current
// inclusion state by re-checking the metadata of its last known
// attachment, falling back to NodeAPI.GetIncludedBlock when that
// attachment itself has gone conflicting (mirroring InclusionTracker's
// own fallback, since a pending transaction is exactly an attachment
// the caller has stopped actively retrying).
func syncTransactions(ctx context.Context, node nodeapi.NodeAPI, state *account.State) (TransactionSyncResult, error) {
	var result TransactionSyncResult

	for txID := range state.PendingTransactions {
		data, ok := state.Transactions[txID]
		if !ok {
			continue
		}

		md, err := node.GetBlockMetadata(ctx, data.BlockID)
		if err != nil {
			return TransactionSyncResult{}, err
		}

		newState, spentIDs, unlockIDs, err := resolveInclusion(ctx, node, txID, data, md)
		if err != nil {
			return TransactionSyncResult{}, err
		}

		if newState == data.InclusionState {
			continue
		}

		data.InclusionState = newState
		result.UpdatedTransactions = append(result.UpdatedTransactions, transactionUpdate{ID: txID, Data: data})
		result.SpentOutputIDs = append(result.SpentOutputIDs, spentIDs...)
		result.OutputIDsToUnlock = append(result.OutputIDsToUnlock, unlockIDs...)
	}

	return result, nil
}

// resolveInclusion classifies a transaction's new state from its last
// attachment's metadata. Included attachments spend their inputs
// outright. A conflicting attachment whose transaction the node has since
// confirmed under a different attachment (found via GetIncludedBlock) is
// likewise Confirmed and spends its inputs; one with no confirmed
// attachment yet (ErrBlockNotIncluded) becomes Conflicting and its inputs
// are returned for unlocking. Any other GetIncludedBlock error is
// returned unchanged.
func resolveInclusion(
	ctx context.Context,
	node nodeapi.NodeAPI,
	txID block.TransactionID,
	data account.TransactionData,
	md *block.BlockMetadata,
) (account.InclusionState, []block.OutputID, []block.OutputID, error) {
	if md.LedgerInclusionState == nil {
		return data.InclusionState, nil, nil, nil
	}

	switch *md.LedgerInclusionState {
	case block.InclusionIncluded:
		spent := inputOutputIDs(data.Payload)
		return account.InclusionStateConfirmed, spent, nil, nil

	case block.InclusionConflicting:
		_, _, err := includedBlockOrNotFound(ctx, node, txID)
		if errors.Is(err, nodeapi.ErrBlockNotIncluded) {
			return account.InclusionStateConflicting, nil, inputOutputIDs(data.Payload), nil
		}
		if err != nil {
			return data.InclusionState, nil, nil, err
		}
		spent := inputOutputIDs(data.Payload)
		return account.InclusionStateConfirmed, spent, nil, nil

	default:
		return data.InclusionState, nil, nil, nil
	}
}

func includedBlockOrNotFound(ctx context.Context, node nodeapi.NodeAPI, txID block.TransactionID) (block.BlockID, *block.Block, error) {
	id, b, err := node.GetIncludedBlock(ctx, txID)
	if errors.Is(err, nodeapi.ErrBlockNotIncluded) {
		return block.BlockID{}, nil, err
	}
	return id, b, err
}

func inputOutputIDs(tp *block.TransactionPayload) []block.OutputID {
	if tp == nil {
		return nil
	}
	ids := make([]block.OutputID, 0, len(tp.Essence.Inputs))
	for _, in := range tp.Essence.Inputs {
		if in.Kind == block.InputUtxo {
			ids = append(ids, in.OutputID)
		}
	}
	return ids
}
