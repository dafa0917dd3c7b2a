package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/tomz197/redlight/internal/config"
	"github.com/tomz197/redlight/internal/data"
	"github.com/tomz197/redlight/internal/loop/client"
	"github.com/tomz197/redlight/internal/loop/server"
	"github.com/tomz197/redlight/internal/store"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	difficulties, err := data.LoadDifficulties()
	if err != nil {
		fmt.Fprintf(os.Stderr, "difficulties: %v\n", err)
		os.Exit(1)
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	// Single local player against an in-process server. Logging would
	// scribble over the game, so it stays off.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	keys := make([]string, 0, difficulties.Count())
	for _, d := range difficulties.All() {
		keys = append(keys, d.Key)
	}
	gameServer := server.NewServer(server.Options{
		Store:           store.NewMemory(),
		Logger:          zap.NewNop(),
		Difficulties:    keys,
		LeaderboardSize: cfg.Game.LeaderboardSize,
	})
	go gameServer.Run(ctx)

	c := client.NewClient(gameServer, bufio.NewReader(os.Stdin), os.Stdout, client.ClientOptions{
		Username:          config.GetEnv("USER", "player"),
		Difficulties:      difficulties,
		DefaultDifficulty: cfg.Game.DefaultDifficulty,
		FrameRate:         cfg.Game.FrameRate,
	})
	if err := c.Run(); err != nil {
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}
