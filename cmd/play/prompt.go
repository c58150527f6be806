package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"rps_ultimate/internal/domain"
	"rps_ultimate/internal/round"
	"rps_ultimate/internal/session"
)

type prompt struct {
	c        *round.Coordinator
	store    session.Store
	playerID string
	series   domain.SeriesConfig
}

func printHelp() {
	fmt.Println(`moves: r / p / s (or rock, paper, scissors)
/chat <text>   /reset   /series <n>   /again   /theme dark|light
/stats   /rename   /quit`)
}

// loop feeds stdin lines to the coordinator and renders its events until
// the session exits.
func (p *prompt) loop(ctx context.Context, in *bufio.Scanner) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for in.Scan() {
			lines <- in.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case e := <-p.c.Events():
			if render(e) {
				return
			}
		case line, ok := <-lines:
			if !ok {
				lines = nil
				p.c.Exit()
				continue
			}
			p.handle(ctx, strings.TrimSpace(line))
		}
	}
}

const restartLater = "a new series can start once this one is decided"

var shortMoves = map[string]domain.Move{
	"r": domain.MoveRock,
	"p": domain.MovePaper,
	"s": domain.MoveScissors,
}

func (p *prompt) handle(ctx context.Context, line string) {
	if line == "" {
		return
	}
	if !strings.HasPrefix(line, "/") {
		m, ok := shortMoves[strings.ToLower(line)]
		if !ok {
			var err error
			if m, err = domain.ParseMove(line); err != nil {
				fmt.Println(err)
				return
			}
		}
		if !p.c.SubmitMove(m) {
			fmt.Println("wait for the current round to finish")
		}
		return
	}

	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "/chat":
		if err := p.c.SendChat(arg); err != nil {
			fmt.Println("chat:", err)
		}
	case "/reset":
		p.c.ResetMatch()
	case "/series":
		n, err := strconv.Atoi(arg)
		if err == nil {
			var s domain.SeriesConfig
			if s, err = domain.NewSeriesConfig(n); err == nil {
				p.series = s
				if !p.c.NewSeries(s) {
					fmt.Println(restartLater)
				}
			}
		}
		if err != nil {
			fmt.Println("series:", err)
		}
	case "/again":
		if !p.c.NewSeries(p.series) {
			fmt.Println(restartLater)
		}
	case "/theme":
		theme := domain.ParseTheme(arg)
		if err := p.store.SaveTheme(ctx, p.playerID, theme); err != nil {
			fmt.Println("theme:", err)
			return
		}
		fmt.Println("theme set to", theme)
	case "/stats":
		printStats(p.c.Snapshot())
	case "/rename":
		// forgetting the profile ends the session and with it the move history
		if err := p.store.ClearProfile(ctx, p.playerID); err != nil {
			fmt.Println("rename:", err)
			return
		}
		fmt.Println("profile cleared, restart to pick a new name")
		p.c.Exit()
	case "/quit":
		p.c.Exit()
	default:
		printHelp()
	}
}
