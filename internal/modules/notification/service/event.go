package notification

import (
	"context"
	"encoding/json"
)

const (
	EventVotingStarted     = "votingStarted"
	EventVotingEnded       = "votingEnded"
	EventResultsPublished  = "resultsPublished"
	EventVoteCast          = "voteCast"
	EventCandidatesUpdated = "candidatesUpdated"
	EventPeriodDeleted     = "periodDeleted"
)

// Event is a lifecycle notification. It only tells clients what to re-fetch.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

type PeriodPayload struct {
	PeriodID uint `json:"periodId"`
}

type VotePayload struct {
	PeriodID    uint `json:"periodId"`
	CandidateID uint `json:"candidateId"`
}

func VotingStarted(periodID uint) Event {
	return Event{Name: EventVotingStarted, Payload: PeriodPayload{PeriodID: periodID}}
}

func VotingEnded(periodID uint) Event {
	return Event{Name: EventVotingEnded, Payload: PeriodPayload{PeriodID: periodID}}
}

func ResultsPublished(periodID uint) Event {
	return Event{Name: EventResultsPublished, Payload: PeriodPayload{PeriodID: periodID}}
}

func VoteCast(periodID, candidateID uint) Event {
	return Event{Name: EventVoteCast, Payload: VotePayload{PeriodID: periodID, CandidateID: candidateID}}
}

func CandidatesUpdated() Event {
	return Event{Name: EventCandidatesUpdated, Payload: struct{}{}}
}

func PeriodDeleted(periodID uint) Event {
	return Event{Name: EventPeriodDeleted, Payload: PeriodPayload{PeriodID: periodID}}
}

func (e Event) Encode() ([]byte, error) {
	if e.Payload == nil {
		e.Payload = struct{}{}
	}
	return json.Marshal(e)
}

// Publisher fans events out to connected clients. Publish never blocks on
// delivery and never reports failure: clients reconcile by re-fetching.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
