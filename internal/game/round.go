package game

import (
	"errors"

	"rps_ultimate/internal/domain"
)

var ErrAlreadyMoved = errors.New("already moved")

// Round buffers the two moves of a single exchange. Either side may
// arrive first; the round is complete once both are present.
type Round struct {
	local  *domain.Move
	remote *domain.Move
}

func NewRound() *Round {
	return &Round{}
}

func (r *Round) SetLocal(m domain.Move) error {
	if !m.Valid() {
		return domain.ErrInvalidMove
	}
	if r.local != nil {
		return ErrAlreadyMoved
	}
	r.local = &m
	return nil
}

func (r *Round) SetRemote(m domain.Move) error {
	if !m.Valid() {
		return domain.ErrInvalidMove
	}
	if r.remote != nil {
		return ErrAlreadyMoved
	}
	r.remote = &m
	return nil
}

func (r *Round) HasLocal() bool  { return r.local != nil }
func (r *Round) HasRemote() bool { return r.remote != nil }

func (r *Round) IsComplete() bool {
	return r.local != nil && r.remote != nil
}

// Result resolves the round from the local side. ok is false until both
// moves are known.
func (r *Round) Result() (summary domain.RoundSummary, ok bool) {
	if !r.IsComplete() {
		return domain.RoundSummary{}, false
	}
	return domain.RoundSummary{
		Outcome: Resolve(*r.local, *r.remote),
		P1Move:  *r.local,
		P2Move:  *r.remote,
	}, true
}
