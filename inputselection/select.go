// Package inputselection implements deterministic UTXO selection for
// funding a transaction, honoring unlock-condition filters and the
// protocol's input-count ceiling (spec.md §4.1). It is grounded on the
// teacher's lnwallet/chanfunding coin selection: select greedily against a
// sorted candidate list, stop as soon as the target is met, fail loudly
// with found/required context otherwise.
package inputselection

import (
	"context"
	"fmt"
	"sort"

	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/txscript/v4/stdaddr"
	"github.com/decred/slog"

	"github.com/iotaledger/iota-client-go/block"
	"github.com/iotaledger/iota-client-go/build"
	"github.com/iotaledger/iota-client-go/clock"
	"github.com/iotaledger/iota-client-go/nodeapi"
)

var log = build.NewSubLogger("INSL", nil)

// UseLogger sets the package-level logger for the inputselection package.
func UseLogger(logger slog.Logger) {
	log = logger
}

// NotEnoughBalanceError is returned when the eligible UTXO set cannot
// cover the requested amount.
type NotEnoughBalanceError struct {
	Found    dcrutil.Amount
	Required dcrutil.Amount
}

func (e *NotEnoughBalanceError) Error() string {
	return fmt.Sprintf("inputselection: not enough balance: found %v, required %v",
		e.Found, e.Required)
}

// AmountAndAddress returns the claimable amount and controlling address
// of output at currentUnixTime. It is pure and exported so BlockBuilder
// can reuse it unchanged (spec.md §4.2).
func AmountAndAddress(output *block.Output, currentUnixTime uint32) (dcrutil.Amount, stdaddr.Address) {
	addr := output.Address
	if output.Conditions.Expiration != nil && currentUnixTime >= output.Conditions.Expiration.UnixTime {
		addr = output.Conditions.Expiration.ReturnAddress
	}
	return output.Amount, addr
}

type candidate struct {
	input  block.Input
	amount dcrutil.Amount
}

// FindInputs selects UTXOs controlled by addresses (queried in the given
// order) sufficient to cover amount, ignoring any output with an
// Expiration, Timelock, or StorageDepositReturn condition so the result
// is safe to sign offline. Candidates are sorted by amount descending
// (stable on ties) and accumulated until the target is met; selection
// never takes more than block.InputCountMax inputs.
func FindInputs(ctx context.Context, node nodeapi.NodeAPI, now clock.Now, addresses []string, amount dcrutil.Amount) ([]block.Input, error) {
	var available []block.OutputResponse

	for _, addr := range addresses {
		ids, err := node.BasicOutputIDs(ctx, nodeapi.AddressFilter(addr))
		if err != nil {
			return nil, err
		}

		outs, err := node.GetOutputs(ctx, ids)
		if err != nil {
			return nil, err
		}
		available = append(available, outs...)
	}

	currentTime, err := clock.GetTimeChecked(ctx, node, now)
	if err != nil {
		return nil, err
	}

	candidates := make([]candidate, 0, len(available))
	for i := range available {
		amt, _ := AmountAndAddress(&available[i].Output, currentTime)
		candidates = append(candidates, candidate{
			input:  block.NewUtxoInput(available[i].OutputID()),
			amount: amt,
		})
	}

	// Stable sort preserves insertion order (node response order) among
	// equal amounts, per spec.md §4.1 step 3.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].amount > candidates[j].amount
	})

	if len(candidates) > block.InputCountMax {
		candidates = candidates[:block.InputCountMax]
	}

	var total dcrutil.Amount
	selected := make([]block.Input, 0, len(candidates))
	for _, c := range candidates {
		if total >= amount {
			break
		}
		selected = append(selected, c.input)
		total += c.amount
	}

	if total < amount {
		log.Debugf("input selection short by %v: found %v, required %v",
			amount-total, total, amount)
		return nil, &NotEnoughBalanceError{Found: total, Required: amount}
	}

	return selected, nil
}
