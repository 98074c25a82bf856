package accountsync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/iota-client-go/account"
	"github.com/iotaledger/iota-client-go/block"
	"github.com/iotaledger/iota-client-go/nodeapi"
)

type txFakeNode struct {
	metadata        map[block.BlockID]*block.BlockMetadata
	includedBlockID block.BlockID
	includedBlock   *block.Block
	includedErr     error
}

func (f *txFakeNode) GetBlock(context.Context, block.BlockID) (*block.Block, error) { return nil, nil }
func (f *txFakeNode) GetBlockMetadata(_ context.Context, id block.BlockID) (*block.BlockMetadata, error) {
	return f.metadata[id], nil
}
func (f *txFakeNode) PostBlock(context.Context, *block.Block) (block.BlockID, error) {
	return block.BlockID{}, nil
}
func (f *txFakeNode) GetTips(context.Context) ([]block.BlockID, error) { return nil, nil }
func (f *txFakeNode) GetOutputs(context.Context, []block.OutputID) ([]block.OutputResponse, error) {
	return nil, nil
}
func (f *txFakeNode) BasicOutputIDs(context.Context, []nodeapi.QueryFilter) ([]block.OutputID, error) {
	return nil, nil
}
func (f *txFakeNode) GetInfo(context.Context) (*nodeapi.NodeInfo, error) { return &nodeapi.NodeInfo{}, nil }
func (f *txFakeNode) GetIncludedBlock(context.Context, block.TransactionID) (block.BlockID, *block.Block, error) {
	return f.includedBlockID, f.includedBlock, f.includedErr
}

func state(s block.LedgerInclusionState) *block.LedgerInclusionState { return &s }

// TestSyncTransactions_IncludedMarksConfirmedAndSpendsInputs mirrors the
// simple case of spec.md §4.5 step 1: a pending transaction whose
// attachment is now Included becomes Confirmed and its inputs are spent.
func TestSyncTransactions_IncludedMarksConfirmedAndSpendsInputs(t *testing.T) {
	blockID := block.BlockID{0x01}
	txID := block.TransactionID{0x02}
	inputID := block.OutputID{TransactionID: block.TransactionID{0x03}, Index: 0}

	st := account.NewState(0)
	st.PendingTransactions[txID] = struct{}{}
	st.Transactions[txID] = account.TransactionData{
		BlockID:        blockID,
		InclusionState: account.InclusionStatePending,
		Payload: &block.TransactionPayload{
			Essence: block.TransactionEssence{
				Inputs: []block.Input{block.NewUtxoInput(inputID)},
			},
		},
	}

	node := &txFakeNode{
		metadata: map[block.BlockID]*block.BlockMetadata{
			blockID: {LedgerInclusionState: state(block.InclusionIncluded)},
		},
	}

	result, err := syncTransactions(context.Background(), node, st)
	require.NoError(t, err)
	require.Len(t, result.UpdatedTransactions, 1)
	require.Equal(t, account.InclusionStateConfirmed, result.UpdatedTransactions[0].Data.InclusionState)
	require.Equal(t, []block.OutputID{inputID}, result.SpentOutputIDs)
}

// TestSyncTransactions_ConflictingWithNoWinnerStaysConflictingAndUnlocks
// mirrors a conflicting attachment the node has not resolved to any
// attachment yet: the transaction is marked Conflicting and its inputs are
// unlocked (not spent), rather than the sync aborting outright.
func TestSyncTransactions_ConflictingWithNoWinnerStaysConflictingAndUnlocks(t *testing.T) {
	blockID := block.BlockID{0x01}
	txID := block.TransactionID{0x02}
	inputID := block.OutputID{TransactionID: block.TransactionID{0x03}, Index: 0}

	st := account.NewState(0)
	st.PendingTransactions[txID] = struct{}{}
	st.Transactions[txID] = account.TransactionData{
		BlockID:        blockID,
		InclusionState: account.InclusionStatePending,
		Payload: &block.TransactionPayload{
			Essence: block.TransactionEssence{
				Inputs: []block.Input{block.NewUtxoInput(inputID)},
			},
		},
	}

	node := &txFakeNode{
		metadata: map[block.BlockID]*block.BlockMetadata{
			blockID: {LedgerInclusionState: state(block.InclusionConflicting)},
		},
		includedErr: nodeapi.ErrBlockNotIncluded,
	}

	result, err := syncTransactions(context.Background(), node, st)
	require.NoError(t, err)
	require.Len(t, result.UpdatedTransactions, 1)
	require.Equal(t, account.InclusionStateConflicting, result.UpdatedTransactions[0].Data.InclusionState)
	require.Equal(t, []block.OutputID{inputID}, result.OutputIDsToUnlock)
	require.Empty(t, result.SpentOutputIDs)
}

// TestSyncTransactions_NoOpinionLeavesStateUnchanged covers the common
// case where the node has not yet formed an opinion on the attachment.
func TestSyncTransactions_NoOpinionLeavesStateUnchanged(t *testing.T) {
	blockID := block.BlockID{0x01}
	txID := block.TransactionID{0x02}

	st := account.NewState(0)
	st.PendingTransactions[txID] = struct{}{}
	st.Transactions[txID] = account.TransactionData{BlockID: blockID, InclusionState: account.InclusionStatePending}

	node := &txFakeNode{metadata: map[block.BlockID]*block.BlockMetadata{blockID: {}}}

	result, err := syncTransactions(context.Background(), node, st)
	require.NoError(t, err)
	require.Empty(t, result.UpdatedTransactions)
}
