package convergence

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-cache-convergence/refresh"
)

// Poller queries the remote service's pending updates and reconciles them
// against the targets whose refresh requests are outstanding.
type Poller struct {
	refresher refresh.Refresher
	kind      string
}

// NewPoller creates a Poller for the given resource kind.
func NewPoller(refresher refresh.Refresher, kind string) *Poller {
	return &Poller{refresher: refresher, kind: kind}
}

// Poll fetches the pending updates once and classifies every target in the
// population. A region is complete only when each of its targets is either
// already processed or confirmed durable by a matching record in this pass;
// the overall result is complete only when every region is.
//
// A fetch error is returned to the caller unrecovered: the host owns retry
// and backoff for query failures.
func (p *Poller) Poll(ctx context.Context, exec Execution, state *State, cycleStart time.Time) (complete bool, diags []Diagnostic, err error) {
	updates, err := p.refresher.PendingUpdates(ctx, exec.CloudProvider, p.kind)
	if err != nil {
		return false, nil, fmt.Errorf("query pending updates for %s: %w", p.kind, err)
	}

	complete = true
	for _, region := range state.Regions() {
		if !p.pollRegion(ctx, state, state.RegionTargets(region, exec.Account), updates, cycleStart, &diags) {
			complete = false
		}
	}
	return complete, diags, nil
}

// pollRegion classifies every target in one region. It never returns early:
// each target is classified every pass so that re-queueing still happens in a
// region that already failed.
func (p *Poller) pollRegion(ctx context.Context, state *State, targets []Target, updates []refresh.PendingUpdate, cycleStart time.Time, diags *[]Diagnostic) bool {
	complete := true

	for _, target := range targets {
		if state.IsProcessed(target) {
			continue
		}

		update, found := findUpdate(updates, target)
		switch {
		case !found:
			// The service never acknowledged the request; re-issue it.
			state.Unrefresh(target)
			*diags = append(*diags, newDiagnostic(ctx, DiagNotAcknowledged, &target,
				fmt.Sprintf("no pending update for %s", target.Key())))
			complete = false

		case !update.Processed():
			// Still in flight; keep waiting.
			complete = false

		case update.ProcessedAt.Before(cycleStart) || update.CachedAt.Before(cycleStart):
			// Leftover record from an earlier cycle; re-issue.
			state.Unrefresh(target)
			*diags = append(*diags, newDiagnostic(ctx, DiagStaleRecord, &target,
				fmt.Sprintf("pending update for %s predates cycle start %s", target.Key(), cycleStart.Format(time.RFC3339))))
			complete = false

		default:
			state.MarkProcessed(target)
		}
	}

	return complete
}

func findUpdate(updates []refresh.PendingUpdate, target Target) (refresh.PendingUpdate, bool) {
	for _, update := range updates {
		if target.MatchesDetails(update.Details) {
			return update, true
		}
	}
	return refresh.PendingUpdate{}, false
}
