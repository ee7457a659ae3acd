// Package tracking contains the Session aggregate that follows a delivery
// minute by minute once a rider has accepted an offer.
//
// A session consumes typed rider events. Events with a status mapping move
// the session through the fine-grained delivery statuses (accepted through
// completed); informational events only extend the audit log. Alongside the
// event log the session keeps a bounded GPS trail, pickup and delivery
// attempts, an issue ledger, the proof of delivery, and the current ETA.
//
// Terminal statuses archive the session. Archived sessions reject mutation
// but remain fully readable, and their derived metrics can still be
// computed from the recorded status timestamps.
package tracking
