package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"rps_ultimate/internal/config"
	"rps_ultimate/internal/db"
	"rps_ultimate/internal/domain"
	"rps_ultimate/internal/game"
	"rps_ultimate/internal/logger"
	"rps_ultimate/internal/peer"
	"rps_ultimate/internal/repository"
	"rps_ultimate/internal/round"
	"rps_ultimate/internal/session"
)

func main() {
	mode := flag.String("mode", "ai", "ai, host or join")
	code := flag.String("code", "", "room code to join")
	series := flag.Int("series", 0, "series length, 0 for unlimited (ai and host)")
	playerID := flag.String("player", "local", "local player id; use different ids to play two terminals on one machine")
	flag.Parse()

	cfg := config.LoadClient()
	logger.InitTo(os.Stderr, "rps-play", cfg.LogLevel, cfg.LogJSON)

	seriesCfg, err := domain.NewSeriesConfig(*series)
	if err != nil {
		logger.Fatal("bad series", "error", err)
	}

	var store session.Store
	if rdb := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rdb != nil {
		defer rdb.Close()
		store = repository.NewRedisPlayerRepository(rdb)
	} else {
		store = repository.NewFilePlayerRepository(cfg.PlayerFile)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := bufio.NewScanner(os.Stdin)
	player, err := store.LoadPlayer(ctx, *playerID)
	if err != nil {
		logger.Fatal("load player", "error", err)
	}
	if !player.Registered() {
		player.Profile = askProfile(in)
		if err := store.SaveProfile(ctx, *playerID, player.Profile); err != nil {
			logger.Warn("failed to save profile", "error", err)
		}
	}
	fmt.Printf("Welcome %s %s. Lifetime %d-%d-%d, win rate %.1f%%\n",
		player.Profile.Avatar, player.Profile.Name,
		player.Stats.Wins, player.Stats.Losses, player.Stats.Ties, player.Stats.WinRate())

	rc := round.Config{
		Series:        seriesCfg,
		CountdownStep: cfg.CountdownStep,
		RevealDelay:   cfg.RevealDelay,
		LeaveDelay:    cfg.LeaveDelay,
	}
	tracker := session.NewTracker(*playerID, player.Stats, store)

	var c *round.Coordinator
	switch *mode {
	case "ai":
		c = round.NewAI(tracker, player.Profile, game.NewOpponent(nil), rc)
	case "host":
		ch, roomCode, err := peer.Create(ctx, cfg.RelayURL, *playerID)
		if err != nil {
			logger.Fatal("create room", "error", err)
		}
		fmt.Printf("Room code: %s. Waiting for a player to join...\n", roomCode)
		c = startPeer(ctx, ch, tracker, player.Profile, roomCode, true, rc)
	case "join":
		ch, err := peer.Join(ctx, cfg.RelayURL, *code, *playerID)
		if err != nil {
			logger.Fatal("join room", "code", *code, "error", err)
		}
		c = startPeer(ctx, ch, tracker, player.Profile, strings.ToUpper(*code), false, rc)
	default:
		logger.Fatal("unknown mode", "mode", *mode)
	}

	if cfg.DatabaseURL != "" {
		if pool := db.Connect(cfg.DatabaseURL); pool != nil {
			defer pool.Close()
			c.SetRecorder(repository.NewRoundRepository(pool))
		}
	}

	if *mode == "ai" {
		fmt.Printf("Playing %s against %s %s\n", seriesCfg.Label(), domain.AIProfile.Avatar, domain.AIProfile.Name)
	}
	printHelp()

	p := &prompt{c: c, store: store, playerID: *playerID, series: seriesCfg}
	p.loop(ctx, in)
}

func startPeer(ctx context.Context, ch *peer.WSChannel, tracker *session.Tracker, me domain.Profile, code string, host bool, rc round.Config) *round.Coordinator {
	c := round.NewPeer(tracker, me, code, host, rc)
	t := peer.NewTransport(ch, me.Name)
	c.AttachPeer(t)
	go t.Run(ctx, c)
	return c
}

func askProfile(in *bufio.Scanner) domain.Profile {
	for {
		fmt.Print("Your name: ")
		if !in.Scan() {
			os.Exit(0)
		}
		name := in.Text()
		fmt.Printf("Avatar (enter for %s): ", domain.DefaultAvatar)
		if !in.Scan() {
			os.Exit(0)
		}
		avatar := in.Text()
		if strings.TrimSpace(avatar) == "" {
			avatar = domain.DefaultAvatar
		}

		p, err := domain.NewProfile(name, avatar)
		if err != nil {
			fmt.Println(err)
			continue
		}
		return p
	}
}
