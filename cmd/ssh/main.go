package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"go.uber.org/zap"
	gossh "golang.org/x/crypto/ssh"

	"github.com/tomz197/redlight/internal/config"
	"github.com/tomz197/redlight/internal/data"
	"github.com/tomz197/redlight/internal/draw"
	redlog "github.com/tomz197/redlight/internal/logging"
	loopconfig "github.com/tomz197/redlight/internal/loop/config"
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

	log, err := redlog.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	difficulties, err := data.LoadDifficulties()
	if err != nil {
		return err
	}
	if difficulties.Index(cfg.Game.DefaultDifficulty) < 0 {
		return fmt.Errorf("unknown default difficulty %q", cfg.Game.DefaultDifficulty)
	}

	ctx, cancelServer := context.WithCancel(context.Background())
	defer cancelServer()

	results, err := openStore(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer results.Close()

	keys := make([]string, 0, difficulties.Count())
	for _, d := range difficulties.All() {
		keys = append(keys, d.Key)
	}

	// Shared by all SSH sessions
	gameServer := server.NewServer(server.Options{
		Store:           results,
		Logger:          log.Named("server"),
		Difficulties:    keys,
		LeaderboardSize: cfg.Game.LeaderboardSize,
	})
	serverDone := make(chan struct{})
	go func() {
		gameServer.Run(ctx)
		close(serverDone)
	}()
	log.Info("game server started", zap.Int("difficulties", len(keys)))

	sessions := &sessionHandler{
		server:       gameServer,
		difficulties: difficulties,
		cfg:          cfg.Game,
		log:          log.Named("session"),
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(cfg.SSH.Host, cfg.SSH.Port)),
		// Any key or none at all may play. Keys only tie results to a player.
		wish.WithPublicKeyAuth(func(ssh.Context, ssh.PublicKey) bool { return true }),
		wish.WithKeyboardInteractiveAuth(func(ssh.Context, gossh.KeyboardInteractiveChallenge) bool { return true }),
		wish.WithMiddleware(
			sessions.middleware,
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(zap.NewStdLog(log.Named("ssh"))),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if cfg.SSH.HostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(cfg.SSH.HostKeyPath))
	}
	if cfg.SSH.IdleTimeout > 0 {
		opts = append(opts, wish.WithIdleTimeout(cfg.SSH.IdleTimeout))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		return fmt.Errorf("create ssh server: %w", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	log.Info("starting ssh server",
		zap.String("host", cfg.SSH.Host),
		zap.String("port", cfg.SSH.Port),
		zap.String("host_key", cfg.SSH.HostKeyPath))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			listenErr <- err
		}
	}()

	select {
	case <-done:
	case err := <-listenErr:
		return fmt.Errorf("ssh server: %w", err)
	}
	log.Info("shutting down")

	// Notify players and give them time to see the message
	gameServer.Shutdown(cfg.SSH.ShutdownTimeout)
	cancelServer()
	<-serverDone
	log.Info("game server stopped")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ssh shutdown: %w", err)
	}
	return nil
}

// openStore connects to Postgres when a DSN is configured and keeps
// results in memory otherwise.
func openStore(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (store.Store, error) {
	if cfg.DSN == "" {
		log.Info("no database configured, results kept in memory")
		return store.NewMemory(), nil
	}
	pg, err := store.NewPostgres(ctx, cfg, log.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return pg, nil
}

type sessionHandler struct {
	server       *server.Server
	difficulties *data.DifficultyTable
	cfg          config.GameConfig
	log          *zap.Logger
}

// middleware handles SSH sessions and runs the game client.
func (h *sessionHandler) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		username := displayName(sess.User())
		fingerprint := ""
		if key := sess.PublicKey(); key != nil {
			fingerprint = gossh.FingerprintSHA256(key)
		}
		log := h.log.With(zap.String("user", username), zap.String("remote", sess.RemoteAddr().String()))
		log.Info("new game session",
			zap.String("terminal", pty.Term),
			zap.Int("width", pty.Window.Width),
			zap.Int("height", pty.Window.Height),
			zap.Bool("key", fingerprint != ""))

		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		c := client.NewClient(h.server, bufio.NewReader(sess), sess, client.ClientOptions{
			TermSizeFunc:      sizeTracker.getSize,
			Username:          username,
			Fingerprint:       fingerprint,
			Difficulties:      h.difficulties,
			DefaultDifficulty: h.cfg.DefaultDifficulty,
			Logger:            log,
			FrameRate:         h.cfg.FrameRate,
		})
		if err := c.Run(); err != nil {
			log.Warn("game error", zap.Error(err))
		}

		log.Info("session ended")
		next(sess)
	}
}

// displayName trims the SSH user name to something that fits the
// leaderboard.
func displayName(user string) string {
	user = strings.TrimSpace(user)
	if user == "" {
		return "anonymous"
	}
	if r := []rune(user); len(r) > loopconfig.MaxUsernameLength {
		return string(r[:loopconfig.MaxUsernameLength])
	}
	return user
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
