package inputselection

import (
	"context"
	"testing"

	"github.com/decred/dcrd/chaincfg/v3"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/txscript/v4/stdaddr"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/iota-client-go/block"
	"github.com/iotaledger/iota-client-go/nodeapi"
)

// fakeNode is a minimal in-memory NodeAPI stub exercising only the calls
// FindInputs makes.
type fakeNode struct {
	outputIDs []block.OutputID
	outputs   map[block.OutputID]block.OutputResponse
	milestone uint32
}

func (f *fakeNode) GetBlock(context.Context, block.BlockID) (*block.Block, error) { return nil, nil }
func (f *fakeNode) GetBlockMetadata(context.Context, block.BlockID) (*block.BlockMetadata, error) {
	return nil, nil
}
func (f *fakeNode) PostBlock(context.Context, *block.Block) (block.BlockID, error) {
	return block.BlockID{}, nil
}
func (f *fakeNode) GetTips(context.Context) ([]block.BlockID, error) { return nil, nil }
func (f *fakeNode) GetOutputs(_ context.Context, ids []block.OutputID) ([]block.OutputResponse, error) {
	out := make([]block.OutputResponse, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.outputs[id])
	}
	return out, nil
}
func (f *fakeNode) BasicOutputIDs(context.Context, []nodeapi.QueryFilter) ([]block.OutputID, error) {
	return f.outputIDs, nil
}
func (f *fakeNode) GetInfo(context.Context) (*nodeapi.NodeInfo, error) {
	return &nodeapi.NodeInfo{LatestMilestoneTimestamp: f.milestone}, nil
}
func (f *fakeNode) GetIncludedBlock(context.Context, block.TransactionID) (block.BlockID, *block.Block, error) {
	return block.BlockID{}, nil, nodeapi.ErrBlockNotIncluded
}

func txID(b byte) block.TransactionID {
	var id block.TransactionID
	id[0] = b
	return id
}

func outputIDFor(b byte, idx uint16) block.OutputID {
	return block.OutputID{TransactionID: txID(b), Index: idx}
}

// poolNode builds a fakeNode whose eligible basic-output pool has the
// given amounts, each a distinct output, in the given order.
func poolNode(now uint32, amounts ...int64) *fakeNode {
	f := &fakeNode{
		outputs:   make(map[block.OutputID]block.OutputResponse),
		milestone: now,
	}
	addr := mustAddr()
	for i, amt := range amounts {
		id := outputIDFor(byte(i+1), 0)
		f.outputIDs = append(f.outputIDs, id)
		f.outputs[id] = block.OutputResponse{
			Output: block.Output{
				Kind:    block.OutputBasic,
				Amount:  dcrutil.Amount(amt),
				Address: addr,
			},
			TransactionID: id.TransactionID,
			OutputIndex:   id.Index,
		}
	}
	return f
}

func mustAddr() stdaddr.Address {
	addr, err := stdaddr.DecodeAddress("DsQxuVRvS4eaJ42dhQEsCXauMWjvopWgrVg", chaincfg.MainNetParams())
	if err != nil {
		panic(err)
	}
	return addr
}

func fixedNow(t uint32) func() uint32 {
	return func() uint32 { return t }
}

func TestFindInputs_S1_ExactPrefix(t *testing.T) {
	node := poolNode(1_700_000_000, 600, 400, 400, 300)
	inputs, err := FindInputs(context.Background(), node, fixedNow(1_700_000_000), []string{"addrA"}, dcrutil.Amount(1000))
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	require.Equal(t, outputIDFor(1, 0), inputs[0].OutputID)
	require.Equal(t, outputIDFor(2, 0), inputs[1].OutputID)
}

func TestFindInputs_S2_OneMoreThanExact(t *testing.T) {
	node := poolNode(1_700_000_000, 600, 400, 400, 300)
	inputs, err := FindInputs(context.Background(), node, fixedNow(1_700_000_000), []string{"addrA"}, dcrutil.Amount(1001))
	require.NoError(t, err)
	require.Len(t, inputs, 3)
	require.Equal(t, outputIDFor(1, 0), inputs[0].OutputID)
	require.Equal(t, outputIDFor(2, 0), inputs[1].OutputID)
	require.Equal(t, outputIDFor(3, 0), inputs[2].OutputID)
}

func TestFindInputs_S3_NotEnoughBalance(t *testing.T) {
	node := poolNode(1_700_000_000, 600, 400, 400, 300)
	_, err := FindInputs(context.Background(), node, fixedNow(1_700_000_000), []string{"addrA"}, dcrutil.Amount(5000))
	require.Error(t, err)

	var nb *NotEnoughBalanceError
	require.ErrorAs(t, err, &nb)
	require.Equal(t, dcrutil.Amount(1700), nb.Found)
	require.Equal(t, dcrutil.Amount(5000), nb.Required)
}

func TestFindInputs_RespectsInputCountMax(t *testing.T) {
	amounts := make([]int64, block.InputCountMax+10)
	for i := range amounts {
		amounts[i] = 1
	}
	node := poolNode(1_700_000_000, amounts...)
	_, err := FindInputs(context.Background(), node, fixedNow(1_700_000_000), []string{"addrA"}, dcrutil.Amount(1_000_000))

	var nb *NotEnoughBalanceError
	require.ErrorAs(t, err, &nb)
	require.Equal(t, dcrutil.Amount(block.InputCountMax), nb.Found)
}
