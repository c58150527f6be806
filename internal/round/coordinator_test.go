package round

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"rps_ultimate/internal/domain"
	"rps_ultimate/internal/game"
	"rps_ultimate/internal/peer"
	"rps_ultimate/internal/session"
)

var alice = domain.Profile{Name: "Alice", Avatar: "🧑"}

type fakePeer struct {
	mu       sync.Mutex
	moves    []domain.Move
	infos    []int
	restarts int
	closed   bool
}

func (f *fakePeer) SendMove(m domain.Move) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, m)
	return nil
}

func (f *fakePeer) SendChat(text string) (peer.Chat, error) {
	return peer.Chat{ID: "c1", Text: text, SentAt: time.Now()}, nil
}

func (f *fakePeer) SendInfo(_ domain.Profile, series int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infos = append(f.infos, series)
	return nil
}

func (f *fakePeer) SendRestart() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restarts++
	return nil
}

func (f *fakePeer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func newAI(t *testing.T, series int) *Coordinator {
	t.Helper()
	cfg, err := domain.NewSeriesConfig(series)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	tr := session.NewTracker("p1", domain.LifetimeStats{}, nil)
	return NewAI(tr, alice, game.NewOpponent(rand.NewSource(1)), Config{Series: cfg})
}

// newPairedPeer returns a joiner-side coordinator whose opponent already
// announced itself.
func newPairedPeer(t *testing.T, series int, cfg Config) (*Coordinator, *fakePeer) {
	t.Helper()
	tr := session.NewTracker("p1", domain.LifetimeStats{}, nil)
	c := NewPeer(tr, alice, "ABCD", false, cfg)
	fp := &fakePeer{}
	c.AttachPeer(fp)
	c.OnOpponentInfo(domain.Profile{Name: "Bob", Avatar: "🤓"}, series)
	return c, fp
}

// linkedPeer queues frames for another coordinator until flush, standing in
// for the relay between two sides.
type linkedPeer struct {
	mu    sync.Mutex
	to    *Coordinator
	queue []func()
}

func (l *linkedPeer) push(f func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queue = append(l.queue, f)
	return nil
}

func (l *linkedPeer) SendMove(m domain.Move) error {
	return l.push(func() { l.to.OnMoveReceived(m) })
}

func (l *linkedPeer) SendChat(text string) (peer.Chat, error) {
	c := peer.Chat{ID: "c", Text: text, SentAt: time.Now()}
	return c, l.push(func() { l.to.OnChatReceived(c) })
}

func (l *linkedPeer) SendInfo(p domain.Profile, series int) error {
	return l.push(func() { l.to.OnOpponentInfo(p, series) })
}

func (l *linkedPeer) SendRestart() error {
	return l.push(func() { l.to.OnRestartRequested() })
}

func (l *linkedPeer) Close() error {
	return l.push(func() { l.to.OnOpponentLeft() })
}

func (l *linkedPeer) flush() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		f := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()
		f()
	}
}

// linkedPair pairs a host and a joiner over linked peers.
func linkedPair(t *testing.T, series int) (host, guest *Coordinator, flush func()) {
	t.Helper()
	cfg, err := domain.NewSeriesConfig(series)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	host = NewPeer(session.NewTracker("p1", domain.LifetimeStats{}, nil), alice, "ABCD", true, Config{Series: cfg})
	guest = NewPeer(session.NewTracker("p2", domain.LifetimeStats{}, nil), domain.Profile{Name: "Bob", Avatar: "🤓"}, "ABCD", false, Config{})
	toGuest := &linkedPeer{to: guest}
	toHost := &linkedPeer{to: host}
	flush = func() {
		toGuest.flush()
		toHost.flush()
	}

	host.AttachPeer(toGuest)
	guest.AttachPeer(toHost)
	host.OnPeerJoined()
	flush()
	return host, guest, flush
}

func drain(c *Coordinator) []Event {
	var out []Event
	for {
		select {
		case e := <-c.Events():
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestAIRoundResolvesSynchronously(t *testing.T) {
	c := newAI(t, 0)

	if !c.SubmitMove(domain.MoveRock) {
		t.Fatalf("move rejected in idle state")
	}
	if got := c.State(); got != StateIdle {
		t.Fatalf("state = %s; want idle", got)
	}

	snap := c.Snapshot()
	if snap.LastRound == nil || snap.LastRound.P1Move != domain.MoveRock {
		t.Fatalf("last round not recorded: %+v", snap.LastRound)
	}
	if snap.RoundsPlayed != 1 || len(snap.History) != 1 {
		t.Fatalf("rounds=%d history=%d", snap.RoundsPlayed, len(snap.History))
	}

	var resolved bool
	for _, e := range drain(c) {
		if r, ok := e.(RoundResolved); ok {
			resolved = true
			if r.Summary != *snap.LastRound {
				t.Fatalf("event summary %+v differs from snapshot %+v", r.Summary, *snap.LastRound)
			}
		}
	}
	if !resolved {
		t.Fatalf("no RoundResolved event")
	}
}

func TestAIMoveHistoryKeepsLastTwenty(t *testing.T) {
	c := newAI(t, 0)

	for i := 0; i < 25; i++ {
		if !c.SubmitMove(domain.MoveRock) {
			t.Fatalf("round %d rejected", i)
		}
	}
	drain(c)

	moves := c.tracker.PlayerMoves()
	if len(moves) != session.MoveHistoryLimit {
		t.Fatalf("history len = %d", len(moves))
	}
	for i, m := range moves {
		if m != domain.MoveRock {
			t.Fatalf("moves[%d] = %s", i, m)
		}
	}
	if got := c.Snapshot().RoundsPlayed; got != 25 {
		t.Fatalf("rounds played = %d", got)
	}
}

func TestPeerRejectsMoveWhileAwaitingOpponent(t *testing.T) {
	c, fp := newPairedPeer(t, 0, Config{})

	if !c.SubmitMove(domain.MovePaper) {
		t.Fatalf("first move rejected")
	}
	before := c.Snapshot()
	if before.State != StateAwaitingOpponent {
		t.Fatalf("state = %s", before.State)
	}

	if c.SubmitMove(domain.MoveRock) {
		t.Fatalf("second move accepted while awaiting opponent")
	}
	after := c.Snapshot()
	if after.State != before.State || after.Match != before.Match {
		t.Fatalf("state changed by rejected move")
	}
	if len(fp.moves) != 1 {
		t.Fatalf("peer got %d moves", len(fp.moves))
	}

	c.OnMoveReceived(domain.MoveRock)
	snap := c.Snapshot()
	if snap.State != StateIdle || snap.LastRound.Outcome != domain.OutcomeWin {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestPeerEarlyMoveIsBuffered(t *testing.T) {
	orders := []struct {
		name        string
		remoteFirst bool
	}{
		{"remote first", true},
		{"local first", false},
	}

	for _, o := range orders {
		c, _ := newPairedPeer(t, 0, Config{})

		if o.remoteFirst {
			c.OnMoveReceived(domain.MoveScissors)
			if c.State() != StateIdle {
				t.Fatalf("%s: buffering changed state to %s", o.name, c.State())
			}
			c.SubmitMove(domain.MoveRock)
		} else {
			c.SubmitMove(domain.MoveRock)
			c.OnMoveReceived(domain.MoveScissors)
		}

		snap := c.Snapshot()
		want := domain.RoundSummary{Outcome: domain.OutcomeWin, P1Move: domain.MoveRock, P2Move: domain.MoveScissors}
		if snap.LastRound == nil || *snap.LastRound != want {
			t.Fatalf("%s: last round %+v; want %+v", o.name, snap.LastRound, want)
		}
	}
}

func TestPeerDuplicateRemoteMoveIgnored(t *testing.T) {
	c, _ := newPairedPeer(t, 0, Config{})

	c.OnMoveReceived(domain.MovePaper)
	c.OnMoveReceived(domain.MoveRock)
	c.SubmitMove(domain.MoveRock)

	if got := c.Snapshot().LastRound.P2Move; got != domain.MovePaper {
		t.Fatalf("remote move = %s; want the first one", got)
	}
}

func TestSeriesCompleteFreezesScore(t *testing.T) {
	c, _ := newPairedPeer(t, 5, Config{})
	if got := c.Snapshot().Series.TargetLength; got != 5 {
		t.Fatalf("joiner did not adopt host series, got %d", got)
	}

	play := func(local, remote domain.Move) {
		t.Helper()
		if !c.SubmitMove(local) {
			t.Fatalf("move rejected in state %s", c.State())
		}
		c.OnMoveReceived(remote)
	}

	play(domain.MoveRock, domain.MoveScissors)  // win 1-0
	play(domain.MoveRock, domain.MovePaper)     // lose 1-1
	play(domain.MovePaper, domain.MovePaper)    // tie
	play(domain.MovePaper, domain.MoveRock)     // win 2-1
	play(domain.MoveScissors, domain.MovePaper) // win 3-1

	snap := c.Snapshot()
	if snap.State != StateSeriesComplete {
		t.Fatalf("state = %s; want series_complete", snap.State)
	}
	if snap.SeriesWinner != "player" {
		t.Fatalf("winner = %q", snap.SeriesWinner)
	}

	var won *SeriesWon
	for _, e := range drain(c) {
		if w, ok := e.(SeriesWon); ok {
			won = &w
		}
	}
	if won == nil {
		t.Fatalf("no SeriesWon event")
	}
	if won.Winner != session.SidePlayer || won.Match.P1SeriesScore != 3 || won.Match.P2SeriesScore != 1 {
		t.Fatalf("unexpected SeriesWon %+v", *won)
	}

	if c.SubmitMove(domain.MoveRock) {
		t.Fatalf("move accepted after series completed")
	}
	c.OnMoveReceived(domain.MoveRock)
	if got := c.Snapshot().Match; got != won.Match {
		t.Fatalf("series score moved after completion: %+v", got)
	}
}

func TestOpponentWinsSeries(t *testing.T) {
	c, _ := newPairedPeer(t, 3, Config{})

	for i := 0; i < 2; i++ {
		c.SubmitMove(domain.MoveRock)
		c.OnMoveReceived(domain.MovePaper)
	}

	snap := c.Snapshot()
	if snap.State != StateSeriesComplete || snap.SeriesWinner != "opponent" {
		t.Fatalf("state=%s winner=%q", snap.State, snap.SeriesWinner)
	}
}

func TestNewSeriesResetsAndRequestsRestart(t *testing.T) {
	c, fp := newPairedPeer(t, 1, Config{})
	c.SubmitMove(domain.MoveRock)
	c.OnMoveReceived(domain.MoveScissors)
	if c.State() != StateSeriesComplete {
		t.Fatalf("best of 1 not complete")
	}

	c.NewSeries(domain.SeriesConfig{TargetLength: 7})

	snap := c.Snapshot()
	if snap.State != StateIdle || snap.Match != (session.MatchState{}) {
		t.Fatalf("unexpected snapshot after restart %+v", snap)
	}
	if snap.Series.TargetLength != 1 {
		t.Fatalf("peer series changed to %d", snap.Series.TargetLength)
	}
	if fp.restarts != 1 {
		t.Fatalf("restart requests = %d", fp.restarts)
	}
}

func TestRestartRequestFromPeer(t *testing.T) {
	c, _ := newPairedPeer(t, 1, Config{})

	c.OnRestartRequested()
	if c.State() != StateIdle {
		t.Fatalf("restart outside series end changed state")
	}

	c.SubmitMove(domain.MoveRock)
	c.OnMoveReceived(domain.MovePaper)
	c.OnRestartRequested()

	if snap := c.Snapshot(); snap.State != StateIdle || snap.Match.P2SeriesScore != 0 {
		t.Fatalf("restart not applied: %+v", snap)
	}
}

func TestRevealDelayHoldsNextRound(t *testing.T) {
	c, _ := newPairedPeer(t, 0, Config{RevealDelay: 30 * time.Millisecond})

	c.SubmitMove(domain.MoveRock)
	c.OnMoveReceived(domain.MoveRock)
	if c.State() != StateSeriesCheck {
		t.Fatalf("state = %s; want series_check during reveal", c.State())
	}
	if c.SubmitMove(domain.MovePaper) {
		t.Fatalf("move accepted during reveal delay")
	}

	// the peer may already be on the next round
	c.OnMoveReceived(domain.MoveScissors)

	deadline := time.Now().Add(time.Second)
	for c.State() != StateIdle {
		if time.Now().After(deadline) {
			t.Fatalf("never returned to idle")
		}
		time.Sleep(5 * time.Millisecond)
	}

	c.SubmitMove(domain.MovePaper)
	if got := c.Snapshot().LastRound; got.P2Move != domain.MoveScissors || got.Outcome != domain.OutcomeLose {
		t.Fatalf("buffered move lost: %+v", got)
	}
}

func TestCountdownEmitsStepsThenResolves(t *testing.T) {
	cfg, _ := domain.NewSeriesConfig(0)
	tr := session.NewTracker("p1", domain.LifetimeStats{}, nil)
	c := NewAI(tr, alice, game.NewOpponent(rand.NewSource(3)), Config{Series: cfg, CountdownStep: 5 * time.Millisecond})

	c.SubmitMove(domain.MoveRock)
	if c.State() != StateAwaitingOpponent {
		t.Fatalf("state = %s during countdown", c.State())
	}

	var steps []int
	timeout := time.After(time.Second)
	for {
		select {
		case e := <-c.Events():
			switch ev := e.(type) {
			case Countdown:
				steps = append(steps, ev.Remaining)
			case RoundResolved:
				if len(steps) != 3 || steps[0] != 3 || steps[2] != 1 {
					t.Fatalf("countdown steps = %v", steps)
				}
				return
			}
		case <-timeout:
			t.Fatalf("round never resolved, steps=%v", steps)
		}
	}
}

func TestExitCancelsInFlightRound(t *testing.T) {
	c, fp := newPairedPeer(t, 0, Config{CountdownStep: 20 * time.Millisecond})

	c.SubmitMove(domain.MoveRock)
	c.Exit()
	c.OnMoveReceived(domain.MovePaper)
	time.Sleep(80 * time.Millisecond)

	snap := c.Snapshot()
	if snap.State != StateClosed {
		t.Fatalf("state = %s", snap.State)
	}
	if snap.LastRound != nil || snap.RoundsPlayed != 0 {
		t.Fatalf("round resolved after exit: %+v", snap)
	}
	if !fp.closed {
		t.Fatalf("peer not released")
	}
	if c.SubmitMove(domain.MoveRock) {
		t.Fatalf("move accepted after exit")
	}
}

func TestOpponentLeftReturnsToMenu(t *testing.T) {
	c, _ := newPairedPeer(t, 0, Config{LeaveDelay: 10 * time.Millisecond})

	c.OnOpponentLeft()
	if c.SubmitMove(domain.MoveRock) {
		t.Fatalf("move accepted after opponent left")
	}

	deadline := time.Now().Add(time.Second)
	for c.State() != StateClosed {
		if time.Now().After(deadline) {
			t.Fatalf("never exited after opponent left")
		}
		time.Sleep(5 * time.Millisecond)
	}

	var left, exited bool
	for _, e := range drain(c) {
		switch e.(type) {
		case OpponentLeft:
			left = true
		case Exited:
			exited = true
		}
	}
	if !left || !exited {
		t.Fatalf("left=%v exited=%v", left, exited)
	}
}

func TestPeerNewSeriesIgnoredMidSeries(t *testing.T) {
	c, fp := newPairedPeer(t, 3, Config{})
	c.SubmitMove(domain.MoveRock)
	c.OnMoveReceived(domain.MoveScissors)
	drain(c)

	// between rounds
	if c.NewSeries(domain.SeriesConfig{TargetLength: 3}) {
		t.Fatalf("restart accepted before the series ended")
	}
	// with a move in flight
	c.SubmitMove(domain.MovePaper)
	if c.NewSeries(domain.SeriesConfig{TargetLength: 3}) {
		t.Fatalf("restart accepted with a round in flight")
	}

	if fp.restarts != 0 {
		t.Fatalf("restart requests = %d", fp.restarts)
	}
	snap := c.Snapshot()
	if snap.State != StateAwaitingOpponent || snap.Match.P1SeriesScore != 1 {
		t.Fatalf("ignored restart changed state: %+v", snap)
	}
	for _, e := range drain(c) {
		if _, ok := e.(MatchReset); ok {
			t.Fatalf("ignored restart emitted MatchReset")
		}
	}
}

func TestLinkedPeersAgreeAfterEarlyRestart(t *testing.T) {
	host, guest, flush := linkedPair(t, 3)
	if host.State() != StateIdle || guest.Snapshot().Series.TargetLength != 3 {
		t.Fatalf("pairing failed: host=%s guest=%+v", host.State(), guest.Snapshot().Series)
	}

	agree := func(step string) {
		t.Helper()
		h, g := host.Snapshot(), guest.Snapshot()
		if h.Match.P1SeriesScore != g.Match.P2SeriesScore || h.Match.P2SeriesScore != g.Match.P1SeriesScore {
			t.Fatalf("%s: host %+v guest %+v", step, h.Match, g.Match)
		}
		if len(h.History) != len(g.History) {
			t.Fatalf("%s: history %d vs %d", step, len(h.History), len(g.History))
		}
		for i := range h.History {
			if h.History[i].P1Move != g.History[i].P2Move || h.History[i].P2Move != g.History[i].P1Move {
				t.Fatalf("%s: round %d paired differently: %+v vs %+v", step, i, h.History[i], g.History[i])
			}
		}
	}

	host.SubmitMove(domain.MoveRock)
	flush()
	if host.NewSeries(domain.SeriesConfig{TargetLength: 3}) {
		t.Fatalf("host restarted mid-round")
	}
	flush()
	guest.SubmitMove(domain.MovePaper)
	flush()
	agree("after first round")

	host.SubmitMove(domain.MoveScissors)
	guest.SubmitMove(domain.MovePaper)
	flush()
	agree("after second round")

	host.SubmitMove(domain.MoveRock)
	guest.SubmitMove(domain.MoveScissors)
	flush()
	agree("after third round")
	if host.State() != StateSeriesComplete || guest.State() != StateSeriesComplete {
		t.Fatalf("series not complete on both sides: host=%s guest=%s", host.State(), guest.State())
	}

	if !guest.NewSeries(domain.SeriesConfig{TargetLength: 3}) {
		t.Fatalf("restart refused after series end")
	}
	flush()
	if host.State() != StateIdle || guest.State() != StateIdle {
		t.Fatalf("restart not mirrored: host=%s guest=%s", host.State(), guest.State())
	}
	if h := host.Snapshot(); h.Match.P1SeriesScore != 0 || h.Match.P2SeriesScore != 0 {
		t.Fatalf("host series not reset: %+v", h.Match)
	}
	agree("after restart")
}

func TestOpponentLeftNotifiesOnce(t *testing.T) {
	c, _ := newPairedPeer(t, 0, Config{LeaveDelay: time.Hour})

	c.OnOpponentLeft()
	c.OnOpponentLeft()
	c.OnConnectionClosed(nil)

	var left, closed int
	for _, e := range drain(c) {
		switch e.(type) {
		case OpponentLeft:
			left++
		case ConnectionClosed:
			closed++
		}
	}
	if left != 1 || closed != 0 {
		t.Fatalf("OpponentLeft=%d ConnectionClosed=%d; want 1 and 0", left, closed)
	}
	if c.State() == StateClosed {
		t.Fatalf("exited before the leave delay")
	}
	c.Exit()
}

func TestMoveRejectReasons(t *testing.T) {
	tr := session.NewTracker("p1", domain.LifetimeStats{}, nil)
	unpaired := NewPeer(tr, alice, "WXYZ", true, Config{})
	inFlight, _ := newPairedPeer(t, 0, Config{})
	inFlight.SubmitMove(domain.MoveRock)
	closed := newAI(t, 0)
	closed.Exit()

	tests := []struct {
		name string
		c    *Coordinator
		move domain.Move
		want string
	}{
		{"invalid", newAI(t, 0), domain.Move("spock"), RejectInvalid},
		{"closed", closed, domain.MoveRock, RejectClosed},
		{"unpaired", unpaired, domain.MoveRock, RejectUnpaired},
		{"in flight", inFlight, domain.MovePaper, RejectInFlight},
		{"accepted", newAI(t, 0), domain.MoveRock, ""},
	}
	for _, tt := range tests {
		tt.c.mu.Lock()
		got := tt.c.rejectReasonLocked(tt.move)
		tt.c.mu.Unlock()
		if got != tt.want {
			t.Fatalf("%s: reason = %q; want %q", tt.name, got, tt.want)
		}
	}
}

func TestHostWaitsForPeer(t *testing.T) {
	tr := session.NewTracker("p1", domain.LifetimeStats{}, nil)
	series, _ := domain.NewSeriesConfig(3)
	c := NewPeer(tr, alice, "WXYZ", true, Config{Series: series})
	fp := &fakePeer{}
	c.AttachPeer(fp)

	if len(fp.infos) != 0 {
		t.Fatalf("host sent info before anyone joined")
	}
	if c.SubmitMove(domain.MoveRock) {
		t.Fatalf("host accepted a move with nobody in the room")
	}

	c.OnPeerJoined()
	if len(fp.infos) != 1 || fp.infos[0] != 3 {
		t.Fatalf("host info = %v", fp.infos)
	}
	c.OnOpponentInfo(domain.Profile{Name: "Bob", Avatar: "🤓"}, 0)

	snap := c.Snapshot()
	if snap.Opponent.Name != "Bob" || snap.Series.TargetLength != 3 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if !c.SubmitMove(domain.MoveRock) {
		t.Fatalf("move rejected after pairing")
	}
}

func TestChatLogBounded(t *testing.T) {
	c, _ := newPairedPeer(t, 0, Config{})

	for i := 0; i < ChatLogLimit+5; i++ {
		c.OnChatReceived(peer.Chat{Text: "hi"})
	}
	if err := c.SendChat("hello"); err != nil {
		t.Fatalf("SendChat: %v", err)
	}

	chat := c.Snapshot().Chat
	if len(chat) != ChatLogLimit {
		t.Fatalf("chat len = %d", len(chat))
	}
	last := chat[len(chat)-1]
	if !last.Mine || last.Sender != "Alice" {
		t.Fatalf("last chat = %+v", last)
	}
	if chat[0].Sender != "Bob" {
		t.Fatalf("remote sender defaulted to %q", chat[0].Sender)
	}
}

func TestSendChatRequiresPeer(t *testing.T) {
	c := newAI(t, 0)
	if err := c.SendChat("hi"); err != ErrNotPeerMode {
		t.Fatalf("err = %v", err)
	}
}

func TestResetMatchKeepsSeriesScore(t *testing.T) {
	c := newAI(t, 7)
	for i := 0; i < 3; i++ {
		c.SubmitMove(domain.MoveRock)
	}
	before := c.Snapshot().Match

	c.ResetMatch()
	after := c.Snapshot()
	if after.Match.P1Score != 0 || after.Match.P2Score != 0 || after.Match.Ties != 0 {
		t.Fatalf("board not reset: %+v", after.Match)
	}
	if after.Match.P1SeriesScore != before.P1SeriesScore || after.Match.P2SeriesScore != before.P2SeriesScore {
		t.Fatalf("series score changed: %+v -> %+v", before, after.Match)
	}
	if len(after.History) != 0 {
		t.Fatalf("history not cleared")
	}
}
