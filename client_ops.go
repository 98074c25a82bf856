package iotaclient

import (
	"context"
	"errors"

	"github.com/iotaledger/iota-client-go/block"
	"github.com/iotaledger/iota-client-go/nodeapi"
)

// errUnexpectedPayloadVariant is returned where the Rust source's
// equivalent branch is unreachable!(): a transaction id resolved to a
// block carrying a Treasury input or no TransactionPayload at all. Both
// only arise under protocol-level corruption, never from ordinary client
// use, so this library returns a typed error instead of panicking
// (spec.md Design Note §9).
var errUnexpectedPayloadVariant = errors.New("iotaclient: block does not carry a spendable transaction payload")

// FindBlocks fetches each of ids, deduplicating repeats so a block
// referenced more than once (e.g. as both a parent and a tip) is only
// requested from Node once.
func (c *Client) FindBlocks(ctx context.Context, ids []block.BlockID) ([]*block.Block, error) {
	seen := make(map[block.BlockID]struct{}, len(ids))
	var out []*block.Block

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		b, err := c.cfg.Node.GetBlock(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}

	return out, nil
}

// FindOutputs resolves outputIDs directly and, for each of addresses,
// every output the indexer reports as controlled by it under the same
// offline-signing-safe filter FindInputs uses (spec.md §4.1). The two
// result sets are simply concatenated; callers that need deduplication
// across both supply non-overlapping inputs, mirroring the original.
func (c *Client) FindOutputs(ctx context.Context, outputIDs []block.OutputID, addresses []string) ([]block.OutputResponse, error) {
	var out []block.OutputResponse

	if len(outputIDs) > 0 {
		direct, err := c.cfg.Node.GetOutputs(ctx, outputIDs)
		if err != nil {
			return nil, err
		}
		out = append(out, direct...)
	}

	for _, addr := range addresses {
		ids, err := c.cfg.Node.BasicOutputIDs(ctx, nodeapi.AddressFilter(addr))
		if err != nil {
			return nil, err
		}

		responses, err := c.cfg.Node.GetOutputs(ctx, ids)
		if err != nil {
			return nil, err
		}
		out = append(out, responses...)
	}

	return out, nil
}

// InputsFromTransactionID resolves txID's confirmed attachment and
// returns the OutputResponse for each Utxo input its essence spent. A
// Treasury input, or an attachment whose payload is not a
// TransactionPayload at all, fails with errUnexpectedPayloadVariant.
func (c *Client) InputsFromTransactionID(ctx context.Context, txID block.TransactionID) ([]block.OutputResponse, error) {
	_, b, err := c.cfg.Node.GetIncludedBlock(ctx, txID)
	if err != nil {
		return nil, err
	}

	tp, ok := b.TransactionPayload()
	if !ok {
		return nil, errUnexpectedPayloadVariant
	}

	ids := make([]block.OutputID, 0, len(tp.Essence.Inputs))
	for _, in := range tp.Essence.Inputs {
		if in.Kind != block.InputUtxo {
			return nil, errUnexpectedPayloadVariant
		}
		ids = append(ids, in.OutputID)
	}

	return c.cfg.Node.GetOutputs(ctx, ids)
}
