package inclusion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/iota-client-go/block"
	"github.com/iotaledger/iota-client-go/nodeapi"
)

// scriptedNode drives InclusionTracker through a fixed, per-block
// sequence of metadata responses; each GetBlockMetadata call for a given
// id advances to the next scripted response, repeating the last one once
// exhausted.
type scriptedNode struct {
	blocks map[block.BlockID]*block.Block

	metadataSeq map[block.BlockID][]*block.BlockMetadata
	calls       map[block.BlockID]int

	reattachCounter byte
}

func newScriptedNode() *scriptedNode {
	return &scriptedNode{
		blocks:      make(map[block.BlockID]*block.Block),
		metadataSeq: make(map[block.BlockID][]*block.BlockMetadata),
		calls:       make(map[block.BlockID]int),
	}
}

func (n *scriptedNode) GetBlock(_ context.Context, id block.BlockID) (*block.Block, error) {
	return n.blocks[id], nil
}

func (n *scriptedNode) GetBlockMetadata(_ context.Context, id block.BlockID) (*block.BlockMetadata, error) {
	seq := n.metadataSeq[id]
	if len(seq) == 0 {
		return &block.BlockMetadata{}, nil
	}
	i := n.calls[id]
	n.calls[id]++
	if i >= len(seq) {
		i = len(seq) - 1
	}
	return seq[i], nil
}

func (n *scriptedNode) PostBlock(_ context.Context, b *block.Block) (block.BlockID, error) {
	n.reattachCounter++
	var id block.BlockID
	id[0] = n.reattachCounter
	n.blocks[id] = b
	return id, nil
}

func (n *scriptedNode) GetTips(context.Context) ([]block.BlockID, error) {
	return []block.BlockID{{0xAA}}, nil
}

func (n *scriptedNode) GetOutputs(context.Context, []block.OutputID) ([]block.OutputResponse, error) {
	return nil, nil
}

func (n *scriptedNode) BasicOutputIDs(context.Context, []nodeapi.QueryFilter) ([]block.OutputID, error) {
	return nil, nil
}

func (n *scriptedNode) GetInfo(context.Context) (*nodeapi.NodeInfo, error) {
	return &nodeapi.NodeInfo{}, nil
}

func (n *scriptedNode) GetIncludedBlock(context.Context, block.TransactionID) (block.BlockID, *block.Block, error) {
	return block.BlockID{}, nil, nodeapi.ErrBlockNotIncluded
}

type localPow struct{}

func (localPow) DoPow(_ context.Context, tips []block.BlockID, _ float64, payload block.Payload) (*block.Block, bool, error) {
	return &block.Block{Parents: tips, Payload: payload}, true, nil
}

func state(s block.LedgerInclusionState) *block.LedgerInclusionState { return &s }

func boolPtr(b bool) *bool { return &b }

// TestRetryUntilIncluded_S4_ReattachThenConfirm mirrors scenario S4:
// round 1 finds the original block Conflicting with should_reattach,
// reattaches it to a fresh attachment; round 2 finds the original still
// Conflicting but the reattachment Included, and the call returns with
// the reattachment at position 0 (it is reattached_results[0], so the
// rotation by its position leaves the single-element list unchanged).
func TestRetryUntilIncluded_S4_ReattachThenConfirm(t *testing.T) {
	node := newScriptedNode()

	var original block.BlockID
	original[0] = 0xB0
	node.blocks[original] = &block.Block{}

	node.metadataSeq[original] = []*block.BlockMetadata{
		{LedgerInclusionState: state(block.InclusionConflicting), ShouldReattach: boolPtr(true)},
		{LedgerInclusionState: state(block.InclusionConflicting)},
	}

	// PostBlock assigns sequential ids starting at {0x01}; the
	// reattachment produced in round 1 will be that id.
	var reattached block.BlockID
	reattached[0] = 0x01
	node.metadataSeq[reattached] = []*block.BlockMetadata{
		{LedgerInclusionState: state(block.InclusionIncluded)},
	}

	tracker := New(Config{Node: node, Pow: localPow{}})

	result, err := tracker.RetryUntilIncluded(context.Background(), original, time.Millisecond, 3)
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, reattached, result[0].BlockID)
}

// TestRetryUntilIncluded_S5_NeverConfirms mirrors scenario S5: the
// original block is always Conflicting and never reattachable, so
// retry_until_included exhausts its attempts and fails.
func TestRetryUntilIncluded_S5_NeverConfirms(t *testing.T) {
	node := newScriptedNode()

	var original block.BlockID
	original[0] = 0xC0
	node.blocks[original] = &block.Block{}
	node.metadataSeq[original] = []*block.BlockMetadata{
		{LedgerInclusionState: state(block.InclusionConflicting)},
	}

	tracker := New(Config{Node: node, Pow: localPow{}})

	_, err := tracker.RetryUntilIncluded(context.Background(), original, time.Millisecond, 2)
	require.Error(t, err)

	var tie *TangleInclusionError
	require.ErrorAs(t, err, &tie)
	require.Equal(t, original, tie.BlockID)
}

// TestRetryUntilIncluded_OriginalConfirmsDirectly covers the simplest
// path: the original block is Included on the very first poll, with no
// reattachments ever produced.
func TestRetryUntilIncluded_OriginalConfirmsDirectly(t *testing.T) {
	node := newScriptedNode()

	var original block.BlockID
	original[0] = 0xD0
	node.blocks[original] = &block.Block{}
	node.metadataSeq[original] = []*block.BlockMetadata{
		{LedgerInclusionState: state(block.InclusionIncluded)},
	}

	tracker := New(Config{Node: node, Pow: localPow{}})

	result, err := tracker.RetryUntilIncluded(context.Background(), original, time.Millisecond, 1)
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, original, result[0].BlockID)
}

// TestReattachUnchecked_LocalPow exercises reattach's local-PoW path,
// where the freshly built block is returned without a refetch.
func TestReattachUnchecked_LocalPow(t *testing.T) {
	node := newScriptedNode()

	var original block.BlockID
	original[0] = 0xE0
	node.blocks[original] = &block.Block{Payload: &block.TaggedDataPayload{Tag: []byte("t")}}

	tracker := New(Config{Node: node, Pow: localPow{}})

	att, err := tracker.ReattachUnchecked(context.Background(), original)
	require.NoError(t, err)
	require.NotEqual(t, original, att.BlockID)
	require.NotNil(t, att.Block)
}

// TestRetry_NoNeedPromoteOrReattach covers the explicit-retry failure
// mode: neither promotion nor reattachment is recommended.
func TestRetry_NoNeedPromoteOrReattach(t *testing.T) {
	node := newScriptedNode()

	var id block.BlockID
	id[0] = 0xF0
	node.metadataSeq[id] = []*block.BlockMetadata{{}}

	tracker := New(Config{Node: node, Pow: localPow{}})

	_, err := tracker.Retry(context.Background(), id)
	require.Error(t, err)

	var nn *NoNeedPromoteOrReattachError
	require.ErrorAs(t, err, &nn)
	require.Equal(t, id, nn.BlockID)
}
