package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/client/retention"
	"github.com/dmitrijs2005/gophjournal/internal/common"
)

const defaultListSize = 10

// report prints err for the user. Superseded calls are silent and an
// unreachable remote switches the prompt to offline.
func (a *App) report(err error) error {
	if err == nil || errors.Is(err, common.ErrCancelled) {
		return nil
	}
	if errors.Is(err, common.ErrUnavailable) {
		a.setMode(ModeOffline)
		fmt.Fprintln(a.out, "Server unavailable, data may be stale")
	}
	fmt.Fprintln(a.out, "Error:", err)
	return err
}

func (a *App) list(ctx context.Context, force bool, args []string) error {
	n := defaultListSize
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			fmt.Fprintln(a.out, "Usage: get [n]")
			return fmt.Errorf("%w: bad count %q", common.ErrValidation, args[0])
		}
		n = v
	}

	recs, res, err := a.journal.Get(ctx, a.currentUser(), force)
	if len(recs) > 0 || err == nil {
		printSyncResult(a.out, res)
		printRecords(a.out, recs, n)
	}
	return a.report(err)
}

// Get lists the newest records, from the cache when it has any.
func (a *App) Get(ctx context.Context, args []string) error {
	return a.list(ctx, false, args)
}

// Refresh replaces the cache with a full remote fetch.
func (a *App) Refresh(ctx context.Context, args []string) error {
	return a.list(ctx, true, args)
}

// Sync fetches only the records the cache is missing.
func (a *App) Sync(ctx context.Context, _ []string) error {
	_, res, err := a.journal.SmartSync(ctx, a.currentUser())
	if err != nil {
		return a.report(err)
	}
	printSyncResult(a.out, res)
	if len(res.MissingKeys) > 0 {
		fmt.Fprintln(a.out, "Fetched:", strings.Join(res.MissingKeys, ", "))
	}
	return nil
}

// Show prints one record found by natural key or id.
func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: show <key|id>")
		return common.ErrValidation
	}
	want := strings.Join(args, " ")
	if name, ok := strings.CutPrefix(want, "#"); ok {
		want = models.TopicKey(name)
	}

	recs, _, err := a.journal.Get(ctx, a.currentUser(), false)
	for _, r := range recs {
		if r.NaturalKey == want || r.ID == want {
			printRecord(a.out, r)
			return nil
		}
	}
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Not found:", want)
	return common.ErrNotFound
}

// Save writes a dated entry; the date defaults to today.
func (a *App) Save(ctx context.Context, args []string) error {
	key := models.EntryKey(time.Now())
	if len(args) > 0 {
		key = args[0]
	}
	return a.saveRecord(ctx, models.Record{NaturalKey: key, Kind: models.KindEntry})
}

// Topic writes a named topical collection.
func (a *App) Topic(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")
	if name == "" {
		var err error
		if name, err = getSimpleText(a.reader, "Enter topic name", a.out); err != nil {
			return err
		}
	}
	rec := models.Record{NaturalKey: models.TopicKey(name), Kind: models.KindTopic, Title: name}
	return a.saveRecord(ctx, rec)
}

func (a *App) saveRecord(ctx context.Context, rec models.Record) error {
	if err := rec.Validate(); err != nil {
		return a.report(err)
	}
	title, err := getSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}
	if title != "" {
		rec.Title = title
	}
	if rec.Body, err = GetMultiline(a.reader, "Enter text", a.out); err != nil {
		return err
	}
	if rec.Items, err = GetItems(a.reader, a.out); err != nil {
		return err
	}

	saved, err := a.journal.SaveOne(ctx, a.currentUser(), rec)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Saved %s (%s)\n", saved.NaturalKey, saved.ID)
	return nil
}

// Delete removes a record by id.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: delete <id>")
		return common.ErrValidation
	}
	existed, err := a.journal.DeleteOne(ctx, a.currentUser(), args[0])
	if err != nil {
		return a.report(err)
	}
	if !existed {
		fmt.Fprintln(a.out, "Nothing to delete")
		return nil
	}
	fmt.Fprintln(a.out, "Deleted", args[0])
	return nil
}

func (a *App) Stats(ctx context.Context, _ []string) error {
	st, err := a.journal.ComputeStats(ctx, a.currentUser())
	if err != nil {
		return a.report(err)
	}
	if !st.RemoteReachable {
		a.setMode(ModeOffline)
	}
	printStats(a.out, st)
	return nil
}

func (a *App) State(_ context.Context, _ []string) error {
	fmt.Fprintln(a.out, "Sync state:", a.journal.SyncState(a.currentUser()))
	return nil
}

func (a *App) Retention(ctx context.Context, _ []string) error {
	s, err := a.journal.GetRetentionSettings(ctx, a.currentUser())
	if err != nil {
		return a.report(err)
	}
	printSettings(a.out, s)
	return nil
}

// Days changes how many days of records are kept.
func (a *App) Days(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(a.out, "Usage: days <%d..%d>\n", models.MinCacheDays, models.MaxCacheDays)
		return common.ErrValidation
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return a.report(fmt.Errorf("%w: %q is not a number", common.ErrValidation, args[0]))
	}
	s, err := a.journal.UpdateDaysLimit(ctx, a.currentUser(), n)
	if err != nil {
		return a.report(err)
	}
	printSettings(a.out, s)
	return nil
}

func (a *App) AutoClean(ctx context.Context, args []string) error {
	if len(args) == 0 || (args[0] != "on" && args[0] != "off") {
		fmt.Fprintln(a.out, "Usage: autoclean on|off")
		return common.ErrValidation
	}
	s, err := a.journal.ToggleAutoCleanup(ctx, a.currentUser(), args[0] == "on")
	if err != nil {
		return a.report(err)
	}
	printSettings(a.out, s)
	return nil
}

func (a *App) Cleanup(ctx context.Context, _ []string) error {
	res, err := a.journal.ManualCleanup(ctx, a.currentUser())
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Removed %d entries and %d topics older than %s (%d from cache)\n",
		res.DeletedPrimary, res.DeletedSecondary, res.Cutoff.Format(time.DateOnly), res.PrunedFromCache)
	return nil
}

// Wipe deletes the local cache and settings after an explicit "yes", and the
// remote records too when asked.
func (a *App) Wipe(ctx context.Context, _ []string) error {
	answer, err := getSimpleText(a.reader, "Type 'yes' to delete all local journal data", a.out)
	if err != nil {
		return err
	}
	req := retention.WipeRequest{Confirmed: answer == "yes"}
	if req.Confirmed {
		remote, err := getSimpleText(a.reader, "Also delete every record on the server? (y/N)", a.out)
		if err != nil {
			return err
		}
		req.IncludeRemote = strings.EqualFold(remote, "y")
	}

	if err := a.journal.ClearAllUserData(ctx, a.currentUser(), req); err != nil {
		if errors.Is(err, common.ErrNotConfirmed) {
			fmt.Fprintln(a.out, "Cancelled")
			return nil
		}
		return a.report(err)
	}
	fmt.Fprintln(a.out, "All data cleared")
	return nil
}

// Metrics prints the process counters in Prometheus text format.
func (a *App) Metrics(_ context.Context, _ []string) error {
	metrics.WritePrometheus(a.out, false)
	return nil
}
