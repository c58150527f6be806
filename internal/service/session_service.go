package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"rps_ultimate/internal/domain"
	"rps_ultimate/internal/game"
	"rps_ultimate/internal/logger"
	"rps_ultimate/internal/round"
	"rps_ultimate/internal/session"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMoveRejected    = errors.New("a round is already in progress")
)

const (
	sessionIdleTimeout = time.Hour
	sessionSweepEvery  = 10 * time.Minute
)

type aiSession struct {
	id       string
	playerID string
	coord    *round.Coordinator
	lastUsed time.Time
}

// SessionService keeps AI-mode coordinators for API clients.
type SessionService struct {
	mu       sync.Mutex
	sessions map[string]*aiSession

	store    session.Store
	recorder round.Recorder
	pacing   round.Config

	newSource func() rand.Source
	now       func() time.Time
}

// NewSessionService builds the service. recorder may be nil when the round
// archive is disabled. pacing supplies the countdown and reveal delays.
func NewSessionService(store session.Store, recorder round.Recorder, pacing round.Config) *SessionService {
	return &SessionService{
		sessions: make(map[string]*aiSession),
		store:    store,
		recorder: recorder,
		pacing:   pacing,
		newSource: func() rand.Source {
			return rand.NewSource(time.Now().UnixNano())
		},
		now: time.Now,
	}
}

// Create starts a session against the adaptive opponent.
func (s *SessionService) Create(ctx context.Context, playerID string, seriesLength int) (string, round.Snapshot, error) {
	series, err := domain.NewSeriesConfig(seriesLength)
	if err != nil {
		return "", round.Snapshot{}, err
	}

	p, err := s.store.LoadPlayer(ctx, playerID)
	if err != nil {
		return "", round.Snapshot{}, err
	}
	if !p.Registered() {
		return "", round.Snapshot{}, ErrPlayerNotFound
	}

	cfg := s.pacing
	cfg.Series = series
	tracker := session.NewTracker(playerID, p.Stats, s.store)
	coord := round.NewAI(tracker, p.Profile, game.NewOpponent(s.newSource()), cfg)
	if s.recorder != nil {
		coord.SetRecorder(s.recorder)
	}
	go discardEvents(coord)

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &aiSession{id: id, playerID: playerID, coord: coord, lastUsed: s.now()}
	s.mu.Unlock()

	logger.Component("sessions").Info("ai session created", "session", id, "player", playerID, "series", series.TargetLength)
	return id, coord.Snapshot(), nil
}

// API clients poll snapshots instead of consuming events.
func discardEvents(c *round.Coordinator) {
	for e := range c.Events() {
		if _, ok := e.(round.Exited); ok {
			return
		}
	}
}

func (s *SessionService) lookup(playerID, id string) (*round.Coordinator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.playerID != playerID {
		return nil, ErrSessionNotFound
	}
	sess.lastUsed = s.now()
	return sess.coord, nil
}

func (s *SessionService) Snapshot(playerID, id string) (round.Snapshot, error) {
	c, err := s.lookup(playerID, id)
	if err != nil {
		return round.Snapshot{}, err
	}
	return c.Snapshot(), nil
}

// Move plays one round. With zero countdown the round is resolved by the
// time the snapshot is taken.
func (s *SessionService) Move(playerID, id, move string) (round.Snapshot, error) {
	m, err := domain.ParseMove(move)
	if err != nil {
		return round.Snapshot{}, err
	}
	c, err := s.lookup(playerID, id)
	if err != nil {
		return round.Snapshot{}, err
	}
	if !c.SubmitMove(m) {
		return c.Snapshot(), ErrMoveRejected
	}
	return c.Snapshot(), nil
}

func (s *SessionService) ResetMatch(playerID, id string) (round.Snapshot, error) {
	c, err := s.lookup(playerID, id)
	if err != nil {
		return round.Snapshot{}, err
	}
	c.ResetMatch()
	return c.Snapshot(), nil
}

func (s *SessionService) NewSeries(playerID, id string, seriesLength int) (round.Snapshot, error) {
	series, err := domain.NewSeriesConfig(seriesLength)
	if err != nil {
		return round.Snapshot{}, err
	}
	c, err := s.lookup(playerID, id)
	if err != nil {
		return round.Snapshot{}, err
	}
	c.NewSeries(series)
	return c.Snapshot(), nil
}

// End exits a session and forgets it.
func (s *SessionService) End(playerID, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok || sess.playerID != playerID {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.mu.Unlock()

	sess.coord.Exit()
	return nil
}

// EndPlayer exits every session of a player. Used when the profile is
// cleared so the opponent forgets the move history.
func (s *SessionService) EndPlayer(playerID string) int {
	s.mu.Lock()
	var ended []*aiSession
	for id, sess := range s.sessions {
		if sess.playerID == playerID {
			ended = append(ended, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range ended {
		sess.coord.Exit()
	}
	return len(ended)
}

func (s *SessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// StartCleanup exits sessions nobody touched for an hour.
func (s *SessionService) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sessionSweepEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *SessionService) sweep() {
	cutoff := s.now().Add(-sessionIdleTimeout)

	s.mu.Lock()
	var idle []*aiSession
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			idle = append(idle, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range idle {
		logger.Component("sessions").Info("ai session expired", "session", sess.id, "player", sess.playerID)
		sess.coord.Exit()
	}
}
