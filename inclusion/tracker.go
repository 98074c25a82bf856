// Package inclusion implements the retry/promote/reattach control loop
// that drives a published block to confirmation in the face of a
// probabilistic DAG (spec.md §4.3). It is grounded on the teacher's
// lnwallet/dcrwallet spvsync.go backoff loop (cooperative sleep guarded
// by context cancellation, goroutine-safe restart) and on
// watchtower/wtpolicy's sentinel-plus-structured-error style.
package inclusion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/decred/slog"

	"github.com/iotaledger/iota-client-go/block"
	"github.com/iotaledger/iota-client-go/build"
	"github.com/iotaledger/iota-client-go/nodeapi"
)

var log = build.NewSubLogger("INCL", nil)

// UseLogger sets the package-level logger for the inclusion package.
func UseLogger(logger slog.Logger) {
	log = logger
}

const (
	// DefaultRetryUntilIncludedInterval is the default delay between
	// rounds of RetryUntilIncluded.
	DefaultRetryUntilIncludedInterval = 5 * time.Second

	// DefaultRetryUntilIncludedMaxAttempts is the default number of
	// rounds RetryUntilIncluded will attempt before giving up.
	DefaultRetryUntilIncludedMaxAttempts = 40
)

// NoNeedPromoteOrReattachError is returned by Retry, Promote, or Reattach
// when the node does not recommend the requested action.
type NoNeedPromoteOrReattachError struct {
	BlockID block.BlockID
}

func (e *NoNeedPromoteOrReattachError) Error() string {
	return fmt.Sprintf("inclusion: block %v does not need promotion or reattachment", e.BlockID)
}

// TangleInclusionError is returned when RetryUntilIncluded exhausts its
// attempt budget without observing inclusion.
type TangleInclusionError struct {
	BlockID block.BlockID
}

func (e *TangleInclusionError) Error() string {
	return fmt.Sprintf("inclusion: block %v was not included in the tangle after all retry attempts", e.BlockID)
}

// Attachment pairs a block id with the block it names. RetryUntilIncluded
// returns a list of these: the confirmed attachment first, followed by
// the remaining reattachment history.
type Attachment struct {
	BlockID block.BlockID
	Block   *block.Block
}

// Config bundles the injected collaborators a Tracker needs.
type Config struct {
	Node        nodeapi.NodeAPI
	Pow         nodeapi.PowEngine
	MinPowScore float64
}

// Tracker drives blocks to confirmation via retry, promote, and reattach.
type Tracker struct {
	cfg Config
}

// New returns a Tracker backed by cfg.
func New(cfg Config) *Tracker {
	return &Tracker{cfg: cfg}
}

// Retry reads id's metadata and promotes or reattaches it according to
// the node's recommendation, failing with NoNeedPromoteOrReattachError if
// neither is recommended.
func (t *Tracker) Retry(ctx context.Context, id block.BlockID) (Attachment, error) {
	md, err := t.cfg.Node.GetBlockMetadata(ctx, id)
	if err != nil {
		return Attachment{}, err
	}

	switch {
	case md.Promote():
		return t.PromoteUnchecked(ctx, id)
	case md.Reattach():
		return t.ReattachUnchecked(ctx, id)
	default:
		return Attachment{}, &NoNeedPromoteOrReattachError{BlockID: id}
	}
}

// Reattach reattaches id if and only if the node recommends it.
func (t *Tracker) Reattach(ctx context.Context, id block.BlockID) (Attachment, error) {
	md, err := t.cfg.Node.GetBlockMetadata(ctx, id)
	if err != nil {
		return Attachment{}, err
	}
	if !md.Reattach() {
		return Attachment{}, &NoNeedPromoteOrReattachError{BlockID: id}
	}
	return t.ReattachUnchecked(ctx, id)
}

// Promote promotes id if and only if the node recommends it.
func (t *Tracker) Promote(ctx context.Context, id block.BlockID) (Attachment, error) {
	md, err := t.cfg.Node.GetBlockMetadata(ctx, id)
	if err != nil {
		return Attachment{}, err
	}
	if !md.Promote() {
		return Attachment{}, &NoNeedPromoteOrReattachError{BlockID: id}
	}
	return t.PromoteUnchecked(ctx, id)
}

// ReattachUnchecked fetches id's block and republishes its payload with
// fresh tips and a fresh nonce, without first checking the node's
// recommendation. When PoW ran remotely, the node may rewrite parents and
// nonce, so the posted block is refetched by its new id; when PoW ran
// locally, the freshly built block is returned directly.
func (t *Tracker) ReattachUnchecked(ctx context.Context, id block.BlockID) (Attachment, error) {
	original, err := t.cfg.Node.GetBlock(ctx, id)
	if err != nil {
		return Attachment{}, err
	}

	tips, err := t.cfg.Node.GetTips(ctx)
	if err != nil {
		return Attachment{}, err
	}

	built, local, err := t.cfg.Pow.DoPow(ctx, tips, t.cfg.MinPowScore, original.Payload)
	if err != nil {
		return Attachment{}, err
	}

	newID, err := t.cfg.Node.PostBlock(ctx, built)
	if err != nil {
		return Attachment{}, err
	}

	final := built
	if !local {
		final, err = t.cfg.Node.GetBlock(ctx, newID)
		if err != nil {
			return Attachment{}, err
		}
	}

	log.Debugf("reattached %v as %v", id, newID)

	return Attachment{BlockID: newID, Block: final}, nil
}

// PromoteUnchecked fetches fresh tips, appends id to them, and posts a
// payload-less block — introducing a new reference to id from near the
// DAG frontier — without first checking the node's recommendation.
func (t *Tracker) PromoteUnchecked(ctx context.Context, id block.BlockID) (Attachment, error) {
	tips, err := t.cfg.Node.GetTips(ctx)
	if err != nil {
		return Attachment{}, err
	}
	tips = append(tips, id)

	built, local, err := t.cfg.Pow.DoPow(ctx, tips, t.cfg.MinPowScore, nil)
	if err != nil {
		return Attachment{}, err
	}

	newID, err := t.cfg.Node.PostBlock(ctx, built)
	if err != nil {
		return Attachment{}, err
	}

	final := built
	if !local {
		final, err = t.cfg.Node.GetBlock(ctx, newID)
		if err != nil {
			return Attachment{}, err
		}
	}

	log.Debugf("promoted %v via %v", id, newID)

	return Attachment{BlockID: newID, Block: final}, nil
}

// sleep waits for interval, or returns ctx.Err() if ctx is canceled
// first. No partial state is observed by callers either way, so
// cancellation during this wait is always safe (spec.md §5).
func sleep(ctx context.Context, interval time.Duration) error {
	timer := time.NewTimer(interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func included(state *block.LedgerInclusionState) bool {
	return state != nil &&
		(*state == block.InclusionIncluded || *state == block.InclusionNoTransaction)
}

func conflictingState(state *block.LedgerInclusionState) bool {
	return state != nil && *state == block.InclusionConflicting
}

// RetryUntilIncluded is the central control loop: it polls id's metadata
// (and that of every reattachment it has produced) once per interval,
// promoting or reattaching only the most recent attachment each round,
// until one attachment is observed included or maxAttempts rounds have
// passed. interval and maxAttempts default to
// DefaultRetryUntilIncludedInterval / DefaultRetryUntilIncludedMaxAttempts
// when zero.
//
// The scan never short-circuits on a Conflicting verdict — a different,
// still-unscanned attachment may yet confirm this same round — and only
// the last attachment in the list is ever eligible for promotion or
// reattachment, bounding the work done per round (spec.md §9).
func (t *Tracker) RetryUntilIncluded(ctx context.Context, id block.BlockID, interval time.Duration, maxAttempts int) ([]Attachment, error) {
	if interval <= 0 {
		interval = DefaultRetryUntilIncludedInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultRetryUntilIncludedMaxAttempts
	}

	attachments := []block.BlockID{id}
	var reattachedResults []Attachment

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := sleep(ctx, interval); err != nil {
			return nil, err
		}

		conflicting := false
		n := len(attachments)

		for index := 0; index < n; index++ {
			attachID := attachments[index]

			md, err := t.cfg.Node.GetBlockMetadata(ctx, attachID)
			if err != nil {
				return nil, err
			}

			if included(md.LedgerInclusionState) {
				if attachID == id {
					orig, err := t.cfg.Node.GetBlock(ctx, id)
					if err != nil {
						return nil, err
					}
					return append([]Attachment{{BlockID: id, Block: orig}}, reattachedResults...), nil
				}
				// reattachedResults mirrors attachments[1:], so the
				// attachment at index sits at reattachedResults[index-1].
				return rotateLeft(reattachedResults, index-1), nil
			}

			if conflictingState(md.LedgerInclusionState) {
				conflicting = true
			}

			if index == n-1 {
				switch {
				case md.Promote():
					if _, err := t.PromoteUnchecked(ctx, attachID); err != nil {
						return nil, err
					}
				case md.Reattach():
					reattached, err := t.ReattachUnchecked(ctx, attachID)
					if err != nil {
						return nil, err
					}
					attachments = append(attachments, reattached.BlockID)
					reattachedResults = append(reattachedResults, reattached)
				}
			}
		}

		if conflicting {
			orig, err := t.cfg.Node.GetBlock(ctx, id)
			if err != nil {
				return nil, err
			}
			if tp, ok := orig.TransactionPayload(); ok {
				includedID, includedBlock, err := t.cfg.Node.GetIncludedBlock(ctx, tp.ID())
				switch {
				case err == nil:
					return append([]Attachment{{BlockID: includedID, Block: includedBlock}}, reattachedResults...), nil
				case errors.Is(err, nodeapi.ErrBlockNotIncluded):
					// Not confirmed under any attachment yet; a
					// reattachment from this or a later round may still
					// land, so keep retrying rather than abort.
				default:
					return nil, err
				}
			}
		}
	}

	return nil, &TangleInclusionError{BlockID: id}
}

// rotateLeft returns a copy of s rotated left by n (mod len(s)).
func rotateLeft(s []Attachment, n int) []Attachment {
	if len(s) == 0 {
		return s
	}
	n = n % len(s)
	out := make([]Attachment, 0, len(s))
	out = append(out, s[n:]...)
	out = append(out, s[:n]...)
	return out
}
