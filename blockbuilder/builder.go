// Package blockbuilder assembles transaction or tagged-data blocks via a
// fluent configuration, signs them through a SecretManager, runs them
// through a PowEngine, and submits them through a NodeAPI (spec.md §4.2).
package blockbuilder

import (
	"context"
	"errors"

	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/txscript/v4/stdaddr"
	"github.com/decred/slog"

	"github.com/iotaledger/iota-client-go/block"
	"github.com/iotaledger/iota-client-go/build"
	"github.com/iotaledger/iota-client-go/inputselection"
	"github.com/iotaledger/iota-client-go/nodeapi"
)

var log = build.NewSubLogger("BLDR", nil)

// UseLogger sets the package-level logger for the blockbuilder package.
func UseLogger(logger slog.Logger) {
	log = logger
}

// ErrNoOutputs is returned when Finish is called for a transaction with
// no configured outputs.
var ErrNoOutputs = errors.New("blockbuilder: no outputs")

// Config bundles the injected collaborators a Builder needs.
type Config struct {
	Node          nodeapi.NodeAPI
	Pow           nodeapi.PowEngine
	SecretManager nodeapi.SecretManager
	MinPowScore   float64
}

// Builder is the fluent configuration for a transaction or tagged-data
// block. Its zero value is not usable; construct via New.
type Builder struct {
	cfg Config

	inputs  []block.Input
	outputs []block.Output
	burn    *block.Burn

	tag  []byte
	data []byte

	essenceID func([]block.Input, []block.Output) block.TransactionID
}

// New returns a Builder ready for configuration.
func New(cfg Config, essenceID func([]block.Input, []block.Output) block.TransactionID) *Builder {
	return &Builder{cfg: cfg, essenceID: essenceID}
}

// WithInputs sets the inputs to spend.
func (b *Builder) WithInputs(inputs []block.Input) *Builder {
	b.inputs = inputs
	return b
}

// WithOutputs sets the outputs to create.
func (b *Builder) WithOutputs(outputs []block.Output) *Builder {
	b.outputs = outputs
	return b
}

// WithBurn records a burn directive on the builder. Finish does not read
// it: the assembled essence is the same with or without a burn directive.
func (b *Builder) WithBurn(burn *block.Burn) *Builder {
	b.burn = burn
	return b
}

// WithTaggedData configures this builder to produce a TaggedDataPayload
// instead of a transaction.
func (b *Builder) WithTaggedData(tag, data []byte) *Builder {
	b.tag = tag
	b.data = data
	return b
}

// GetOutputAmountAndAddress is the pure helper spec.md §4.2 requires:
// given an output and the current unix time, it returns the claimable
// amount and controlling address, honoring Expiration. It is a thin
// re-export of inputselection.AmountAndAddress so both packages share one
// implementation.
func GetOutputAmountAndAddress(output *block.Output, currentUnixTime uint32) (dcrutil.Amount, stdaddr.Address) {
	return inputselection.AmountAndAddress(output, currentUnixTime)
}

// Finish assembles the configured essence (or tagged-data payload), signs
// it if it is a transaction, runs PoW against fresh tips, and submits the
// result. It returns the assigned BlockID.
func (b *Builder) Finish(ctx context.Context) (block.BlockID, *block.Block, error) {
	var payload block.Payload

	switch {
	case len(b.tag) > 0 || len(b.data) > 0:
		payload = &block.TaggedDataPayload{Tag: b.tag, Data: b.data}

	default:
		if len(b.outputs) == 0 {
			return block.BlockID{}, nil, ErrNoOutputs
		}

		essence, err := block.NewTransactionEssence(
			b.essenceID(b.inputs, b.outputs), b.inputs, b.outputs, nil,
		)
		if err != nil {
			return block.BlockID{}, nil, err
		}

		unlocks, err := b.cfg.SecretManager.SignTransactionEssence(ctx, &essence)
		if err != nil {
			return block.BlockID{}, nil, err
		}

		payload = &block.TransactionPayload{Essence: essence, Unlocks: unlocks}
	}

	tips, err := b.cfg.Node.GetTips(ctx)
	if err != nil {
		return block.BlockID{}, nil, err
	}

	built, local, err := b.cfg.Pow.DoPow(ctx, tips, b.cfg.MinPowScore, payload)
	if err != nil {
		return block.BlockID{}, nil, err
	}

	id, err := b.cfg.Node.PostBlock(ctx, built)
	if err != nil {
		return block.BlockID{}, nil, err
	}

	final := built
	if !local {
		final, err = b.cfg.Node.GetBlock(ctx, id)
		if err != nil {
			return block.BlockID{}, nil, err
		}
	}

	log.Debugf("posted block %v", id)

	return id, final, nil
}
