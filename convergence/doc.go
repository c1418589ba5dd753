// Package convergence forces a remote distributed cache to refresh a set of
// just-mutated resources and confirms that every refresh was applied and made
// durable.
//
// # Overview
//
// The algorithm runs as a sequence of ticks. Each tick either issues
// force-refresh requests for targets that do not have one outstanding, or,
// once every target has been issued, polls the service's pending updates and
// reconciles them against the targets:
//
//   - no matching record: the service never acknowledged the request; the
//     target is re-queued for issuance on the next tick
//   - record without a processed time: still in flight, keep waiting
//   - record processed or cached before the cycle started: stale leftover
//     from an earlier refresh, re-queue the target
//   - otherwise: the refresh is durable and the target is done
//
// A run converges when every target in every region is confirmed durable, at
// which point the progress state is reset for reuse and the tick reports
// SUCCEEDED.
//
// # State between ticks
//
// Progress lives in a State the host carries between ticks. Ticks return a
// Snapshot (a deterministic, serializable view with empty fields stripped)
// and the host feeds it back via FromSnapshot, making the inter-tick
// dependency an explicit data contract. pkg/statestore persists snapshots
// for hosts whose ticks span processes.
//
// # Partial failure and the auto-succeed guard
//
// A failed force-refresh call for one target never aborts the rest of the
// batch: the error is recorded, the target is retried next tick, and the tick
// keeps running. The only hard failure mode is the host's timeout. As a last
// resort against degraded caching infrastructure, a tick that starts more
// than Config.AutoSucceedThreshold after the execution began succeeds
// immediately, flagged via Result.AutoSucceeded; the threshold is chosen so
// that any unconfirmed cache record has already expired by then.
//
// # Diagnostics
//
// Recoverable conditions (failed issuance, missing acknowledgments, stale
// records, the auto-succeed short-circuit) are reported as structured
// Diagnostic values on the tick result instead of being logged as a side
// channel, so tests and operators can assert on them. WithTags attaches
// correlation tags from the context to every diagnostic.
//
// # Driving the task
//
// Hosts with their own scheduler call Task.Tick directly. Runner provides the
// reference loop: fixed backoff between ticks, a hard timeout anchored at the
// execution start, and retry of pending-update query failures.
package convergence
