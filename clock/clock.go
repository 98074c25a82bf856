// Package clock implements the clock-synchronization check that protects
// against time-locked output mistakes (spec.md §4.4).
package clock

import (
	"context"
	"fmt"

	"github.com/decred/slog"

	"github.com/iotaledger/iota-client-go/build"
	"github.com/iotaledger/iota-client-go/nodeapi"
)

// FiveMinutesInSeconds is the maximum tolerated drift between the
// client's clock and the latest milestone timestamp.
const FiveMinutesInSeconds = 300

// log is this package's logger, wired up via UseLogger once the root
// logger is ready. It is silent before that point.
var log = build.NewSubLogger("CLCK", nil)

// UseLogger sets the package-level logger for the clock package.
func UseLogger(logger slog.Logger) {
	log = logger
}

// TimeNotSyncedError is returned when the client's clock has drifted too
// far from the latest milestone timestamp to safely construct outputs
// with expiration or timelock conditions.
type TimeNotSyncedError struct {
	CurrentTime        uint32
	MilestoneTimestamp uint32
}

func (e *TimeNotSyncedError) Error() string {
	return fmt.Sprintf("clock: local time %d too far from latest milestone "+
		"timestamp %d", e.CurrentTime, e.MilestoneTimestamp)
}

// Now returns the current unix time. It exists so tests can substitute a
// deterministic clock; production callers pass a func wrapping
// time.Now().
type Now func() uint32

// GetTimeChecked returns the client's current unix seconds only after
// confirming it is within FiveMinutesInSeconds of the latest milestone
// timestamp reported by node. A drifted client could otherwise construct
// outputs whose Expiration/Timelock conditions are evaluated against the
// wrong clock, irrecoverably locking funds (spec.md §4.4).
func GetTimeChecked(ctx context.Context, node nodeapi.NodeAPI, now Now) (uint32, error) {
	currentTime := now()

	info, err := node.GetInfo(ctx)
	if err != nil {
		return 0, err
	}

	milestoneTimestamp := info.LatestMilestoneTimestamp
	low := milestoneTimestamp - FiveMinutesInSeconds
	high := milestoneTimestamp + FiveMinutesInSeconds

	if currentTime < low || currentTime >= high {
		log.Debugf("local time %d outside milestone window [%d, %d)",
			currentTime, low, high)
		return 0, &TimeNotSyncedError{
			CurrentTime:        currentTime,
			MilestoneTimestamp: milestoneTimestamp,
		}
	}

	return currentTime, nil
}
