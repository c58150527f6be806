package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"rps_ultimate/internal/config"
	"rps_ultimate/internal/domain"
	"rps_ultimate/internal/game"
	"rps_ultimate/internal/peer"
)

// Smoke test against a running relay: two clients pair up, exchange
// their info and one move each.
func main() {
	cfg := config.LoadClient()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	chA, code, err := peer.Create(ctx, cfg.RelayURL, "smokeA")
	if err != nil {
		log.Fatalf("create: %v", err)
	}
	defer chA.Close()
	fmt.Println("room", code)

	chB, err := peer.Join(ctx, cfg.RelayURL, code, "smokeB")
	if err != nil {
		log.Fatalf("join: %v", err)
	}
	defer chB.Close()

	if _, ok := next(ctx, chA).(peer.PeerJoined); !ok {
		log.Fatal("A: expected peer_joined")
	}

	send(chA, peer.Info{Name: "smokeA", Avatar: "🅰️", Series: 3})
	send(chB, peer.Info{Name: "smokeB", Avatar: "🅱️", Series: 3})
	send(chA, peer.Move{Move: domain.MoveRock})
	send(chB, peer.Move{Move: domain.MoveScissors})

	moveB := await(ctx, chA)
	moveA := await(ctx, chB)

	fmt.Printf("A: %s vs %s -> %s\n", domain.MoveRock, moveB, game.Resolve(domain.MoveRock, moveB))
	fmt.Printf("B: %s vs %s -> %s\n", domain.MoveScissors, moveA, game.Resolve(domain.MoveScissors, moveA))

	chA.Close()
	if _, ok := next(ctx, chB).(peer.Left); !ok {
		log.Fatal("B: expected left after A closed")
	}
	fmt.Println("ok")
}

func send(ch peer.Channel, m peer.Message) {
	if err := ch.Send(peer.MustEncode(m)); err != nil {
		log.Fatalf("send %s: %v", m.Kind(), err)
	}
}

func next(ctx context.Context, ch peer.Channel) peer.Message {
	select {
	case raw, ok := <-ch.Receive():
		if !ok {
			log.Fatalf("channel closed: %v", ch.Err())
		}
		msg, err := peer.Decode(raw)
		if err != nil {
			log.Fatalf("decode: %v", err)
		}
		return msg
	case <-ctx.Done():
		log.Fatal("timeout")
	}
	return nil
}

// await skips info frames until the peer's move arrives.
func await(ctx context.Context, ch peer.Channel) domain.Move {
	for {
		switch m := next(ctx, ch).(type) {
		case peer.Info:
			fmt.Printf("opponent %s %s, best of %d\n", m.Avatar, m.Name, m.Series)
		case peer.Move:
			return m.Move
		default:
			log.Fatalf("unexpected %s", m.Kind())
		}
	}
}
