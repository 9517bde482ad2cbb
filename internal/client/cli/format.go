package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/models"
)

func printSyncResult(w io.Writer, res models.SyncResult) {
	fmt.Fprintf(w, "%d records (%d from cache, %d from remote)\n", res.TotalSynced, res.FromCache, res.FromRemote)
}

func printRecords(w io.Writer, recs []models.Record, limit int) {
	for i, r := range recs {
		if i == limit {
			fmt.Fprintf(w, "... %d more\n", len(recs)-limit)
			return
		}
		fmt.Fprintf(w, "%-24s %s  %s\n", r.NaturalKey, r.ID, r.Title)
	}
}

func printRecord(w io.Writer, r models.Record) {
	fmt.Fprintf(w, "%s [%s] %s\n", r.NaturalKey, r.Kind, r.Title)
	fmt.Fprintln(w, "ID:", r.ID)
	if r.Body != "" {
		fmt.Fprintln(w, r.Body)
	}
	for _, it := range r.Items {
		mark := " "
		if it.Done {
			mark = "x"
		}
		if it.Tag != "" {
			fmt.Fprintf(w, "[%s] %s: %s\n", mark, it.Tag, it.Text)
		} else {
			fmt.Fprintf(w, "[%s] %s\n", mark, it.Text)
		}
	}
	if !r.UpdatedAt.IsZero() {
		fmt.Fprintln(w, "Updated:", r.UpdatedAt.Local().Format(time.DateTime))
	}
}

func printStats(w io.Writer, st models.Stats) {
	fmt.Fprintf(w, "Entries: %d, topics: %d\n", st.TotalPrimary, st.TotalSecondary)
	if st.OldestDate != "" {
		fmt.Fprintf(w, "Range: %s .. %s\n", st.OldestDate, st.NewestDate)
	}
	fmt.Fprintf(w, "Cache size: %d bytes, compression ratio %.2f\n", st.EstimatedSizeBytes, st.CompressionRatio)
	if !st.LastSync.IsZero() {
		fmt.Fprintln(w, "Last sync:", st.LastSync.Local().Format(time.DateTime))
	}
	switch {
	case !st.RemoteReachable:
		fmt.Fprintln(w, "Remote unreachable, pending sync unknown")
	case len(st.MissingSyncDates) > 0:
		fmt.Fprintf(w, "%d pending sync: %s\n", len(st.MissingSyncDates), strings.Join(st.MissingSyncDates, ", "))
	default:
		fmt.Fprintln(w, "Cache is up to date")
	}
}

func printSettings(w io.Writer, s models.RetentionSettings) {
	auto := "off"
	if s.AutoCleanupEnabled {
		auto = "on"
	}
	fmt.Fprintf(w, "Keep %d days, auto cleanup %s\n", s.CacheDaysLimit, auto)
	if !s.LastCleanup.IsZero() {
		fmt.Fprintln(w, "Last cleanup:", s.LastCleanup.Local().Format(time.DateTime))
	}
}
