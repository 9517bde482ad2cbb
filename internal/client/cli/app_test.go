package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/cache"
	"github.com/dmitrijs2005/gophjournal/internal/client/client"
	"github.com/dmitrijs2005/gophjournal/internal/client/config"
	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/client/retention"
	"github.com/dmitrijs2005/gophjournal/internal/client/services"
	"github.com/dmitrijs2005/gophjournal/internal/client/smartsync"
	"github.com/dmitrijs2005/gophjournal/internal/client/stats"
	"github.com/dmitrijs2005/gophjournal/internal/client/store"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	*App
	mem *client.MemoryClient
	out *bytes.Buffer
}

func readerFromLines(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func newTestApp(t *testing.T, cfg *config.Config, input *bufio.Reader) *testApp {
	t.Helper()
	db, err := store.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repos := store.NewRepositories(db)
	reg, err := cache.NewRegistry(repos.Chunks, repos.Metadata, cache.Options{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	if cfg == nil {
		cfg = &config.Config{}
		cfg.LoadDefaults()
		cfg.Backend = config.BackendMemory
	}
	if input == nil {
		input = readerFromLines()
	}

	mem := client.NewMemoryClient()
	journal := services.NewJournalService(
		smartsync.NewEngine(mem, reg, nil),
		retention.NewManager(mem, reg, repos.Metadata, nil),
		stats.NewReporter(mem, reg, nil),
	)
	out := &bytes.Buffer{}
	a := newApp(cfg, journal, services.NewSessionService(mem, repos.Metadata), nil, input, out)
	return &testApp{App: a, mem: mem, out: out}
}

type recordingTokens struct{ got []string }

func (r *recordingTokens) SetAccessToken(token string) { r.got = append(r.got, token) }

func TestLogin_WithArgumentRemembersSession(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, nil, nil)

	require.NoError(t, ta.Login(ctx, []string{"alice"}))
	assert.Contains(t, ta.out.String(), "Logged in as alice")
	assert.True(t, ta.isLoggedIn())
	assert.Equal(t, ModeOnline, ta.currentMode())
	assert.Equal(t, "(alice online)", ta.getStatus())

	sess, ok, err := ta.session.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", sess.UserID)

	require.NoError(t, ta.Logout(ctx, nil))
	assert.False(t, ta.isLoggedIn())
	_, ok, err = ta.session.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogin_PromptsForUserAndToken(t *testing.T) {
	origToken := getToken
	getToken = func(io.Writer) (string, error) { return "tok-1", nil }
	t.Cleanup(func() { getToken = origToken })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	ta := newTestApp(t, cfg, readerFromLines("bob"))
	tokens := &recordingTokens{}
	ta.tokens = tokens

	require.NoError(t, ta.Login(context.Background(), nil))
	assert.Equal(t, "bob", ta.currentUser())
	assert.Equal(t, []string{"tok-1"}, tokens.got)
}

func TestLogin_EmptyUser(t *testing.T) {
	ta := newTestApp(t, nil, readerFromLines(""))

	err := ta.Login(context.Background(), nil)
	require.Error(t, err)
	assert.False(t, ta.isLoggedIn())
}

func TestRestoreSession(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, nil, nil)
	require.NoError(t, ta.session.Remember(ctx, services.Session{UserID: "carol", Token: "t"}))
	tokens := &recordingTokens{}
	ta.tokens = tokens

	ta.restoreSession(ctx)
	assert.Equal(t, "carol", ta.currentUser())
	assert.Equal(t, []string{"t"}, tokens.got)

	ta.config.UserID = "dave"
	tokens.got = nil
	ta.restoreSession(ctx)
	assert.Equal(t, "dave", ta.currentUser())
	assert.Equal(t, []string{""}, tokens.got, "a token remembered for another user is not reused")
}

func TestSaveGetShowDelete(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, nil, readerFromLines(
		"Quiet morning",
		"Read Psalm 23.",
		"",
		"prayer=family",
		"[x] read=Psalm 23",
		"",
	))
	ta.setUser("alice")

	require.NoError(t, ta.Save(ctx, []string{"2024-06-01"}))
	assert.Contains(t, ta.out.String(), "Saved 2024-06-01")

	ta.out.Reset()
	require.NoError(t, ta.Get(ctx, nil))
	assert.Contains(t, ta.out.String(), "1 records (1 from cache, 0 from remote)")
	assert.Contains(t, ta.out.String(), "Quiet morning")

	ta.out.Reset()
	require.NoError(t, ta.Show(ctx, []string{"2024-06-01"}))
	out := ta.out.String()
	assert.Contains(t, out, "Read Psalm 23.")
	assert.Contains(t, out, "[ ] prayer: family")
	assert.Contains(t, out, "[x] read: Psalm 23")

	recs, _, err := ta.journal.Get(ctx, "alice", false)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	ta.out.Reset()
	require.NoError(t, ta.Delete(ctx, []string{recs[0].ID}))
	assert.Contains(t, ta.out.String(), "Deleted")

	ta.out.Reset()
	require.ErrorIs(t, ta.Show(ctx, []string{"2024-06-01"}), common.ErrNotFound)
}

func TestSave_InvalidDate(t *testing.T) {
	ta := newTestApp(t, nil, nil)
	ta.setUser("alice")

	err := ta.Save(context.Background(), []string{"June 1st"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, ta.out.String(), "Error:")
}

func TestTopic_AndShowByHash(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, nil, readerFromLines("", "Forty days.", "", ""))
	ta.setUser("alice")

	require.NoError(t, ta.Topic(ctx, []string{"Lent", "2024"}))
	assert.Contains(t, ta.out.String(), "Saved topic:lent-2024")

	ta.out.Reset()
	require.NoError(t, ta.Show(ctx, []string{"#Lent", "2024"}))
	assert.Contains(t, ta.out.String(), "[topic] Lent 2024")
}

func TestSyncAndStats(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, nil, nil)
	ta.setUser("alice")
	ta.mem.Seed("alice",
		models.Record{ID: "1", NaturalKey: "2024-06-01", Kind: models.KindEntry},
		models.Record{ID: "2", NaturalKey: "2024-06-02", Kind: models.KindEntry},
	)

	require.NoError(t, ta.Stats(ctx, nil))
	assert.Contains(t, ta.out.String(), "2 pending sync: 2024-06-01, 2024-06-02")

	ta.out.Reset()
	require.NoError(t, ta.Sync(ctx, nil))
	assert.Contains(t, ta.out.String(), "2 records (0 from cache, 2 from remote)")
	assert.Contains(t, ta.out.String(), "Fetched: 2024-06-01, 2024-06-02")

	ta.out.Reset()
	require.NoError(t, ta.Stats(ctx, nil))
	assert.Contains(t, ta.out.String(), "Range: 2024-06-01 .. 2024-06-02")
	assert.Contains(t, ta.out.String(), "Cache is up to date")

	ta.out.Reset()
	require.NoError(t, ta.State(ctx, nil))
	assert.Contains(t, ta.out.String(), "Sync state: LOADED")
}

func TestRetentionCommands(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, nil, nil)
	ta.setUser("alice")

	require.NoError(t, ta.Retention(ctx, nil))
	assert.Contains(t, ta.out.String(), "Keep 90 days, auto cleanup on")

	ta.out.Reset()
	require.ErrorIs(t, ta.Days(ctx, []string{"366"}), common.ErrValidation)
	require.ErrorIs(t, ta.Days(ctx, []string{"many"}), common.ErrValidation)
	require.ErrorIs(t, ta.Days(ctx, nil), common.ErrValidation)

	ta.out.Reset()
	require.NoError(t, ta.AutoClean(ctx, []string{"off"}))
	assert.Contains(t, ta.out.String(), "auto cleanup off")
	require.ErrorIs(t, ta.AutoClean(ctx, []string{"maybe"}), common.ErrValidation)

	ta.out.Reset()
	require.NoError(t, ta.Days(ctx, []string{"30"}))
	assert.Contains(t, ta.out.String(), "Keep 30 days")

	ta.mem.Seed("alice", models.Record{ID: "old", NaturalKey: "2000-01-01", Kind: models.KindEntry})
	ta.out.Reset()
	require.NoError(t, ta.Cleanup(ctx, nil))
	assert.Contains(t, ta.out.String(), "Removed 1 entries and 0 topics")
}

func TestWipe(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, nil, readerFromLines("no", "yes", "y"))
	ta.setUser("alice")
	ta.mem.Seed("alice", models.Record{ID: "1", NaturalKey: "2024-06-01", Kind: models.KindEntry})

	require.NoError(t, ta.Wipe(ctx, nil))
	assert.Contains(t, ta.out.String(), "Cancelled")
	keys, err := ta.mem.ListKeys(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	require.NoError(t, ta.Wipe(ctx, nil))
	assert.Contains(t, ta.out.String(), "All data cleared")
	keys, err = ta.mem.ListKeys(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMetrics(t *testing.T) {
	ta := newTestApp(t, nil, nil)
	require.NoError(t, ta.Metrics(context.Background(), nil))
	assert.Contains(t, ta.out.String(), "journal_sync_cache_hits_total")
}

func TestReport(t *testing.T) {
	ta := newTestApp(t, nil, nil)
	ta.setMode(ModeOnline)
	ta.out.Reset()

	require.NoError(t, ta.report(fmt.Errorf("fetch all: %w", common.ErrCancelled)))
	assert.Empty(t, ta.out.String())

	err := ta.report(fmt.Errorf("list keys: %w", common.ErrUnavailable))
	require.ErrorIs(t, err, common.ErrUnavailable)
	assert.Equal(t, ModeOffline, ta.currentMode())
	assert.Contains(t, ta.out.String(), "Server unavailable")

	boom := errors.New("boom")
	require.ErrorIs(t, ta.report(boom), boom)
}

func TestStartAutoCleanup(t *testing.T) {
	ta := newTestApp(t, nil, nil)
	ta.setUser("alice")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		ta.StartAutoCleanup(ctx, time.Hour, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		s, err := ta.journal.GetRetentionSettings(context.Background(), "alice")
		return err == nil && !s.LastCleanup.IsZero()
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestStartOnlineStatusWatcher(t *testing.T) {
	ta := newTestApp(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go ta.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)

	require.Eventually(t, func() bool { return ta.currentMode() == ModeOnline }, 5*time.Second, 5*time.Millisecond)
}
