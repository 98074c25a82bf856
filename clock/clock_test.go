package clock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/iota-client-go/block"
	"github.com/iotaledger/iota-client-go/nodeapi"
)

type fakeNode struct {
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
func (f *fakeNode) GetOutputs(context.Context, []block.OutputID) ([]block.OutputResponse, error) {
	return nil, nil
}
func (f *fakeNode) BasicOutputIDs(context.Context, []nodeapi.QueryFilter) ([]block.OutputID, error) {
	return nil, nil
}
func (f *fakeNode) GetInfo(context.Context) (*nodeapi.NodeInfo, error) {
	return &nodeapi.NodeInfo{LatestMilestoneTimestamp: f.milestone}, nil
}
func (f *fakeNode) GetIncludedBlock(context.Context, block.TransactionID) (block.BlockID, *block.Block, error) {
	return block.BlockID{}, nil, nodeapi.ErrBlockNotIncluded
}

// TestGetTimeChecked_WithinWindow mirrors the scenario S6 succeeding case,
// with a drift comfortably inside FiveMinutesInSeconds.
func TestGetTimeChecked_WithinWindow(t *testing.T) {
	node := &fakeNode{milestone: 1_700_000_200}
	got, err := GetTimeChecked(context.Background(), node, func() uint32 { return 1_700_000_000 })
	require.NoError(t, err)
	require.Equal(t, uint32(1_700_000_000), got)
}

// TestGetTimeChecked_OutsideWindow mirrors the scenario S6 failing case,
// with a drift past FiveMinutesInSeconds.
func TestGetTimeChecked_OutsideWindow(t *testing.T) {
	node := &fakeNode{milestone: 1_700_001_000}
	_, err := GetTimeChecked(context.Background(), node, func() uint32 { return 1_700_000_000 })
	require.Error(t, err)

	var tnse *TimeNotSyncedError
	require.ErrorAs(t, err, &tnse)
	require.Equal(t, uint32(1_700_000_000), tnse.CurrentTime)
	require.Equal(t, uint32(1_700_001_000), tnse.MilestoneTimestamp)
}

// TestGetTimeChecked_BoundaryIsExclusiveAtHigh exercises the [low, high)
// boundary: a drift of exactly FiveMinutesInSeconds above the milestone
// fails, matching the half-open range GetTimeChecked enforces.
func TestGetTimeChecked_BoundaryIsExclusiveAtHigh(t *testing.T) {
	node := &fakeNode{milestone: 1_700_000_000 - FiveMinutesInSeconds}
	_, err := GetTimeChecked(context.Background(), node, func() uint32 { return 1_700_000_000 })
	require.Error(t, err)
}
