package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/cache"
	"github.com/dmitrijs2005/gophjournal/internal/client/client"
	"github.com/dmitrijs2005/gophjournal/internal/client/config"
	"github.com/dmitrijs2005/gophjournal/internal/client/retention"
	"github.com/dmitrijs2005/gophjournal/internal/client/services"
	"github.com/dmitrijs2005/gophjournal/internal/client/smartsync"
	"github.com/dmitrijs2005/gophjournal/internal/client/stats"
	"github.com/dmitrijs2005/gophjournal/internal/client/store"
	"github.com/dmitrijs2005/gophjournal/internal/filex"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/shared"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// cleanupCheckEvery is how often the auto cleanup loop asks whether a
// cleanup is due.
const cleanupCheckEvery = time.Minute

type tokenSetter interface {
	SetAccessToken(token string)
}

type App struct {
	config  *config.Config
	journal services.JournalService
	session services.SessionService
	tokens  tokenSetter
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	closers []io.Closer

	mu     sync.Mutex
	userID string
	mode   Mode
}

// NewApp opens the local database, connects the configured backend and
// builds the journal services on top of them.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, err
	}
	db, err := store.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	repos := store.NewRepositories(db)

	remote, err := newRemote(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	caches, err := cache.NewRegistry(repos.Chunks, repos.Metadata, cache.Options{
		ChunkSize:    c.ChunkSize,
		WriteTimeout: c.ChunkWriteTimeout,
		DeviceInfo:   shared.DeviceInfo(),
	}, log)
	if err != nil {
		_ = remote.Close()
		_ = db.Close()
		return nil, err
	}

	journal := services.NewJournalService(
		smartsync.NewEngine(remote, caches, log),
		retention.NewManager(remote, caches, repos.Metadata, log),
		stats.NewReporter(remote, caches, log),
	)
	a := newApp(c, journal, services.NewSessionService(remote, repos.Metadata), log, bufio.NewReader(os.Stdin), os.Stdout)
	if ts, ok := remote.(tokenSetter); ok {
		a.tokens = ts
	}
	a.closers = []io.Closer{caches, db}
	return a, nil
}

func newApp(c *config.Config, journal services.JournalService, session services.SessionService,
	log logging.Logger, reader *bufio.Reader, out io.Writer) *App {
	if log == nil {
		log = logging.Nop{}
	}
	return &App{
		config:  c,
		journal: journal,
		session: session,
		log:     log.With("module", "cli"),
		reader:  reader,
		out:     out,
	}
}

func newRemote(ctx context.Context, c *config.Config) (client.Client, error) {
	switch c.Backend {
	case config.BackendS3:
		return client.NewS3Client(ctx, client.S3Options{
			Bucket:          c.S3.Bucket,
			Region:          c.S3.Region,
			BaseEndpoint:    c.S3.BaseEndpoint,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			UsePathStyle:    c.S3.UsePathStyle,
		})
	case config.BackendMemory:
		return client.NewMemoryClient(), nil
	default:
		return client.NewGRPCClient(c.ServerEndpointAddr, c.AccessToken, c.CallTimeout)
	}
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
		fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
	}
}

func (a *App) currentMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setUser(userID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.userID = userID
}

func (a *App) currentUser() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userID
}

func (a *App) isLoggedIn() bool {
	return a.currentUser() != ""
}

func (a *App) getStatus() string {
	s := a.currentUser()
	if m := a.currentMode(); m != "" {
		if s != "" {
			s += " "
		}
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Run starts the REPL and releases every resource when it returns.
func (a *App) Run(ctx context.Context) {
	defer a.close(ctx)
	a.Root(ctx)
}

func (a *App) close(ctx context.Context) {
	if err := a.session.Close(ctx); err != nil {
		a.log.Warn(ctx, "close remote", "err", err)
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Warn(ctx, "close resource", "err", err)
		}
	}
}

// StartOnlineStatusWatcher pings the remote every interval and flips the
// mode shown in the prompt.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.session.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// StartAutoCleanup runs a retention cleanup for the current user whenever
// one is due. Nothing runs while offline.
func (a *App) StartAutoCleanup(ctx context.Context, interval, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		if user := a.currentUser(); user != "" && a.currentMode() != ModeOffline {
			ran, err := a.journal.MaybeAutoCleanup(ctx, user, interval)
			switch {
			case err != nil && ctx.Err() == nil:
				a.log.Warn(ctx, "auto cleanup failed", "user", user, "err", err)
			case ran:
				a.log.Info(ctx, "auto cleanup done", "user", user)
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Root restores or asks for a session, starts the background loops and
// blocks in the REPL.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to the journal CLI (type 'help' for commands)")

	a.restoreSession(ctx)
	if !a.isLoggedIn() {
		_ = a.Login(ctx, nil)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	go a.StartAutoCleanup(ctx, a.config.AutoCleanupInterval, cleanupCheckEvery)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}
