package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"recap/internal/client"
	"recap/internal/config"
	"recap/internal/daemon"
	"recap/internal/logging"
	"recap/internal/store"
	"recap/internal/version"
)

const usageText = `recapd - recap background daemon

Runs the meeting daemon in the foreground. The recap CLI normally spawns
it on demand; run it by hand for debugging or as a managed service.

Flags:
  --background    log to the daemon log file instead of stderr
  --force         stop any running daemon before starting
  --kill          stop any running daemon and exit
  -h, --help      show help
`

func main() {
	fs := flag.NewFlagSet("recapd", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usageText) }
	background := fs.Bool("background", false, "log to the daemon log file instead of stderr")
	kill := fs.Bool("kill", false, "stop any running daemon and exit")
	force := fs.Bool("force", false, "stop any running daemon before starting")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n\n", fs.Arg(0))
		fs.Usage()
		os.Exit(2)
	}

	if *kill {
		exitOnErr("kill", killDaemon())
		return
	}
	if *force {
		exitOnErr("kill", killDaemon())
	}
	exitOnErr("daemon", runDaemon(*background))
}

func runDaemon(background bool) error {
	cfg, err := config.LoadCoreConfig()
	if err != nil {
		return err
	}
	if _, err := config.EnsureDataDir(); err != nil {
		return err
	}

	out := io.Writer(os.Stderr)
	if background {
		file, err := openDaemonLog()
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}
	log := logging.New(out, logging.ParseLevel(cfg.LogLevel()))

	lockPath, err := config.LockPath()
	if err != nil {
		return err
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another recapd instance is already running")
	}
	defer func() { _ = lock.Unlock() }()

	tokenPath, err := config.TokenPath()
	if err != nil {
		return err
	}
	token, err := daemon.LoadOrCreateToken(tokenPath)
	if err != nil {
		return err
	}

	dbPath, err := config.DBPath()
	if err != nil {
		return err
	}
	repo, err := store.NewBboltRepository(dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seedCalendarFeed(ctx, cfg, repo.Settings(), log)

	stores := &daemon.Stores{
		Meetings: repo.Meetings(),
		Settings: repo.Settings(),
		Coaching: repo.Coaching(),
	}
	d := daemon.New(cfg.DaemonAddress(), token, version.Build(), stores, log)
	return d.Run(ctx)
}

// seedCalendarFeed copies the config-file feed path into the persisted
// settings the first time the daemon starts. After that the settings API
// owns the value and the config file entry is only a bootstrap default.
func seedCalendarFeed(ctx context.Context, cfg config.CoreConfig, settings store.SettingsStore, log logging.Logger) {
	feed := strings.TrimSpace(cfg.Calendar.Feed)
	if feed == "" {
		return
	}
	current, err := settings.Load(ctx)
	if err != nil {
		log.Warn("calendar_feed_seed_failed", logging.F("error", err))
		return
	}
	if strings.TrimSpace(current.CalendarFeed) != "" {
		return
	}
	current.CalendarFeed = feed
	if err := settings.Save(ctx, current); err != nil {
		log.Warn("calendar_feed_seed_failed", logging.F("error", err))
		return
	}
	log.Info("calendar_feed_seeded", logging.F("feed", feed))
}

func openDaemonLog() (*os.File, error) {
	logPath, err := config.DaemonLogPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		return nil, err
	}
	return os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

func killDaemon() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := client.New()
	if err != nil {
		return err
	}
	if err := c.ShutdownDaemon(ctx); err == nil {
		return nil
	} else {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil
		}
		if client.IsUnavailable(err) {
			return nil
		}
	}
	resp, err := c.Health(ctx)
	if err != nil {
		if client.IsUnavailable(err) {
			return nil
		}
		return err
	}
	if resp == nil || resp.PID <= 0 {
		return nil
	}
	return terminatePID(resp.PID)
}

func terminatePID(pid int) error {
	if pid <= 0 {
		return errors.New("invalid pid")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(syscall.SIGTERM)
}

func exitOnErr(label string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}
