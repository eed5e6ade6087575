package model

// EventKind discriminates ingestion event payloads.
type EventKind string

// Supported ingestion event kinds.
const (
	KindDeal              EventKind = "deal"
	KindMeeting           EventKind = "meeting"
	KindProbabilityChange EventKind = "probability_change"
)

// Event is one CRM record submitted for asynchronous ingestion.
// Exactly one payload pointer is set, matching Kind.
type Event struct {
	ID   string // unique id for idempotency
	Kind EventKind

	Deal    *Deal
	Meeting *Meeting
	Change  *ProbabilityChange
}
