package convergence

import "sort"

// State is the mutable progress record for one convergence run. It is carried
// across ticks by the host and is the only state this package keeps between
// invocations.
//
// TargetsByRegion is the full population to converge, set once at the start
// of the run and never mutated here. The refreshed and processed sets track,
// respectively, targets with an outstanding force-refresh request and targets
// whose refresh has been confirmed durable.
type State struct {
	targetsByRegion map[string][]string
	refreshed       map[Target]struct{}
	processed       map[Target]struct{}
	errs            []string
}

// NewState creates a State for the given region → resource-name population.
func NewState(targetsByRegion map[string][]string) *State {
	s := &State{
		targetsByRegion: make(map[string][]string, len(targetsByRegion)),
		refreshed:       make(map[Target]struct{}),
		processed:       make(map[Target]struct{}),
	}
	for region, names := range targetsByRegion {
		s.targetsByRegion[region] = append([]string(nil), names...)
	}
	return s
}

// Regions returns the population's regions in sorted order.
func (s *State) Regions() []string {
	regions := make([]string, 0, len(s.targetsByRegion))
	for region := range s.targetsByRegion {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}

// RegionTargets returns the targets for one region in sorted name order,
// stamped with the given account.
func (s *State) RegionTargets(region, account string) []Target {
	names := append([]string(nil), s.targetsByRegion[region]...)
	sort.Strings(names)
	targets := make([]Target, 0, len(names))
	for _, name := range names {
		targets = append(targets, Target{Name: name, Region: region, Account: account})
	}
	return targets
}

// Targets returns the full population in deterministic region/name order.
func (s *State) Targets(account string) []Target {
	var targets []Target
	for _, region := range s.Regions() {
		targets = append(targets, s.RegionTargets(region, account)...)
	}
	return targets
}

// MarkRefreshed records that a force-refresh request was issued for target.
func (s *State) MarkRefreshed(t Target) { s.refreshed[t] = struct{}{} }

// Unrefresh drops target from the refreshed set, forcing re-issuance on the
// next tick.
func (s *State) Unrefresh(t Target) { delete(s.refreshed, t) }

// IsRefreshed reports whether an issue-refresh call is outstanding for target.
func (s *State) IsRefreshed(t Target) bool {
	_, ok := s.refreshed[t]
	return ok
}

// MarkProcessed records that target's refresh was confirmed durable.
func (s *State) MarkProcessed(t Target) { s.processed[t] = struct{}{} }

// IsProcessed reports whether target's refresh was confirmed durable.
func (s *State) IsProcessed(t Target) bool {
	_, ok := s.processed[t]
	return ok
}

// RecordError appends one issuance failure message. Errors accumulate within
// a run and are reported to the caller, but they are never fatal.
func (s *State) RecordError(msg string) { s.errs = append(s.errs, msg) }

// Reset clears refreshed, processed and errors, preparing the state for
// reuse. The target population is left untouched.
func (s *State) Reset() {
	s.refreshed = make(map[Target]struct{})
	s.processed = make(map[Target]struct{})
	s.errs = nil
}

// Snapshot is the serializable view of a State. It is the explicit data
// contract between ticks: the host persists the snapshot a tick returns and
// restores it before the next tick, instead of sharing a mutable object.
// Empty fields are stripped and slices are sorted so snapshots are
// deterministic.
type Snapshot struct {
	TargetsByRegion map[string][]string `json:"targetsByRegion,omitempty" msgpack:"targetsByRegion,omitempty"`
	Refreshed       []Target            `json:"refreshed,omitempty" msgpack:"refreshed,omitempty"`
	Processed       []Target            `json:"processed,omitempty" msgpack:"processed,omitempty"`
	Errors          []string            `json:"errors,omitempty" msgpack:"errors,omitempty"`
}

// Snapshot returns the serializable view of the state.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Refreshed: sortedTargets(s.refreshed),
		Processed: sortedTargets(s.processed),
	}
	if len(s.targetsByRegion) > 0 {
		snap.TargetsByRegion = make(map[string][]string, len(s.targetsByRegion))
		for region, names := range s.targetsByRegion {
			sorted := append([]string(nil), names...)
			sort.Strings(sorted)
			snap.TargetsByRegion[region] = sorted
		}
	}
	if len(s.errs) > 0 {
		snap.Errors = append([]string(nil), s.errs...)
	}
	return snap
}

// FromSnapshot rebuilds a State from a snapshot produced by an earlier tick.
func FromSnapshot(snap Snapshot) *State {
	s := NewState(snap.TargetsByRegion)
	for _, t := range snap.Refreshed {
		s.MarkRefreshed(t)
	}
	for _, t := range snap.Processed {
		s.MarkProcessed(t)
	}
	s.errs = append([]string(nil), snap.Errors...)
	return s
}

func sortedTargets(set map[Target]struct{}) []Target {
	if len(set) == 0 {
		return nil
	}
	targets := make([]Target, 0, len(set))
	for t := range set {
		targets = append(targets, t)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Key() < targets[j].Key() })
	return targets
}
