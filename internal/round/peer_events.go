package round

import (
	"rps_ultimate/internal/domain"
	"rps_ultimate/internal/logger"
	"rps_ultimate/internal/peer"
)

// The methods below implement peer.Handler.

// OnMoveReceived stores the remote move. A move that arrives before the
// local player has chosen is buffered and resolved once the local move
// is in.
func (c *Coordinator) OnMoveReceived(m domain.Move) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != domain.GameModePeer || c.state == StateSeriesComplete || c.state == StateClosed {
		return
	}
	if err := c.round.SetRemote(m); err != nil {
		logger.Warn("ignoring remote move", "room", c.roomCode, "move", m, "error", err)
		return
	}
	c.tryResolveLocked()
}

func (c *Coordinator) OnChatReceived(msg peer.Chat) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return
	}
	sender := msg.Sender
	if sender == "" {
		sender = c.opponent.Name
	}
	m := ChatMessage{ID: msg.ID, Sender: sender, Text: msg.Text, SentAt: msg.SentAt}
	c.appendChatLocked(m)
	c.emit(ChatReceived{Message: m})
}

// OnOpponentInfo records the peer's profile. The joining side adopts the
// series length announced by the host.
func (c *Coordinator) OnOpponentInfo(p domain.Profile, series int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return
	}
	c.opponent = p
	wasPaired := c.paired
	c.paired = true

	if !c.host && !wasPaired {
		if cfg, err := domain.NewSeriesConfig(series); err == nil {
			c.cfg.Series = cfg
		}
		c.emit(MatchReset{Series: c.cfg.Series, Match: c.tracker.Match()})
	}
	c.emit(OpponentInfo{Profile: p})
	if !wasPaired && c.state == StateIdle {
		c.emit(Ready{})
	}
}

// OnPeerJoined fires on the host once somebody entered the room code.
func (c *Coordinator) OnPeerJoined() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return
	}
	c.emit(PeerJoined{})
	c.sendInfoLocked()
}

// OnRestartRequested mirrors the peer's "play again" once our series is
// over as well.
func (c *Coordinator) OnRestartRequested() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateSeriesComplete {
		return
	}
	c.emit(RestartRequested{})
	c.restartLocked()
}

// OnOpponentLeft notifies once and schedules the return to the menu. A
// repeated notice while the leave is pending is dropped.
func (c *Coordinator) OnOpponentLeft() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed || c.leaving {
		return
	}
	c.emit(OpponentLeft{})
	c.leaveLocked()
}

func (c *Coordinator) OnConnectionClosed(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed || c.leaving {
		return
	}
	c.connectionLostLocked(err)
}

func (c *Coordinator) connectionLostLocked(err error) {
	c.emit(ConnectionClosed{Err: err})
	c.leaveLocked()
}

// leaveLocked drops the round in flight and returns to the menu after
// LeaveDelay. No reconnect is attempted.
func (c *Coordinator) leaveLocked() {
	c.cancelTimerLocked()
	c.paired = false
	c.leaving = true
	if c.cfg.LeaveDelay <= 0 {
		c.exitLocked()
		return
	}
	c.after(c.cfg.LeaveDelay, c.exitLocked)
}

func (c *Coordinator) sendInfoLocked() {
	if c.peer == nil {
		return
	}
	if err := c.peer.SendInfo(c.local, c.cfg.Series.TargetLength); err != nil {
		logger.Warn("failed to send player info", "room", c.roomCode, "error", err)
	}
}
