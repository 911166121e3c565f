package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/asgen/internal/store"
	"github.com/spf13/cobra"
)

var (
	runsOutDir    string
	keepLast      int
	olderThanDays int
	forceClean    bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage generation run records",
	Long: `Manage the run records kept under <out>/runs, including listing and
cleaning old runs. Generated data under datastorage/ and gendata/ is never touched.`,
}

var listRunsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all recorded runs",
	Long:  `Display all runs with class, polarity, state, progress, last score and size on disk.`,
	RunE:  runListRuns,
}

var showRunCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and its round trace",
	Long: `Print a run record with its configuration and output files, followed by
the per-round score and evaluation count from its trace. The run ID may be
abbreviated to any unique prefix, as shown by "runs list".`,
	Args: cobra.ExactArgs(1),
	RunE: runShowRun,
}

var cleanRunsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old run records",
	Long: `Delete old run records based on retention policy.
You can keep the N most recent runs or delete runs older than N days.`,
	RunE: runCleanRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.AddCommand(listRunsCmd)
	runsCmd.AddCommand(showRunCmd)
	runsCmd.AddCommand(cleanRunsCmd)

	runsCmd.PersistentFlags().StringVar(&runsOutDir, "out", ".", "Output root directory containing runs/")

	cleanRunsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the N most recent runs (0 = keep all)")
	cleanRunsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete runs older than N days (0 = no age limit)")
	cleanRunsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func runListRuns(cmd *cobra.Command, args []string) error {
	runStore, err := store.NewFSStore(runsOutDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	infos, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tCLASS\tPOLARITY\tSTATE\tACCEPTED\tLAST SCORE\tSTARTED\tSIZE")
	fmt.Fprintln(w, "------\t-----\t--------\t-----\t--------\t----------\t-------\t----")

	for _, info := range infos {
		size, err := getDirSize(runStore.RunDir(info.ID))
		sizeStr := "unknown"
		if err == nil {
			sizeStr = formatBytes(size)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%.6f\t%s\t%s\n",
			shortID(info.ID),
			info.ClassID,
			info.Polarity,
			info.State,
			info.Accepted,
			info.Target,
			info.LastScore,
			info.Timestamp.Format("2006-01-02 15:04:05"),
			sizeStr,
		)
	}

	w.Flush()

	fmt.Printf("\nTotal runs: %d\n", len(infos))
	return nil
}

func runShowRun(cmd *cobra.Command, args []string) error {
	runStore, err := store.NewFSStore(runsOutDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	id, err := resolveRunID(runStore, args[0])
	if err != nil {
		return err
	}
	record, err := runStore.LoadRun(id)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	entries, err := store.ReadTrace(runStore.RunDir(id))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to read trace: %w", err)
	}

	printRun(cmd.OutOrStdout(), record, entries)
	return nil
}

// resolveRunID accepts a full run ID or a unique prefix of one. A trailing
// "..." as printed by "runs list" is ignored.
func resolveRunID(runStore *store.FSStore, arg string) (string, error) {
	prefix := strings.TrimSuffix(arg, "...")
	if prefix == "" {
		return "", fmt.Errorf("empty run ID")
	}
	if _, err := runStore.LoadRun(prefix); err == nil {
		return prefix, nil
	}

	infos, err := runStore.ListRuns()
	if err != nil {
		return "", fmt.Errorf("failed to list runs: %w", err)
	}

	var matches []string
	for _, info := range infos {
		if strings.HasPrefix(info.ID, prefix) {
			matches = append(matches, info.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", &store.NotFoundError{RunID: prefix}
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("run ID %q is ambiguous: %d matches", prefix, len(matches))
	}
}

func printRun(out io.Writer, record *store.RunRecord, entries []store.TraceEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Run:\t%s\n", record.ID)
	fmt.Fprintf(w, "Class:\t%s\n", record.ClassID)
	fmt.Fprintf(w, "Polarity:\t%s\n", record.Polarity)
	fmt.Fprintf(w, "State:\t%s\n", record.State)
	if record.Error != "" {
		fmt.Fprintf(w, "Error:\t%s\n", record.Error)
	}
	fmt.Fprintf(w, "Accepted:\t%d/%d\n", record.Accepted, record.Config.GenerateSize)
	fmt.Fprintf(w, "Budget:\t%d evaluations per round, %d seeds\n", record.Config.Budget, record.Config.InitNum)
	fmt.Fprintf(w, "Range:\t[%g, %g]\n", record.Config.Lower, record.Config.Upper)
	fmt.Fprintf(w, "Deta:\t%g (min %g)\n", record.Deta, record.DetaMin)
	fmt.Fprintf(w, "Data:\t%s\n", record.Config.DataPath)
	fmt.Fprintf(w, "Append log:\t%s\n", record.AppendLogPath)
	fmt.Fprintf(w, "Snapshot:\t%s\n", record.SnapshotPath)
	fmt.Fprintf(w, "Started:\t%s\n", record.StartTime.Format("2006-01-02 15:04:05"))
	if record.EndTime != nil {
		fmt.Fprintf(w, "Finished:\t%s (%s)\n",
			record.EndTime.Format("2006-01-02 15:04:05"),
			record.EndTime.Sub(record.StartTime).Round(time.Millisecond),
		)
	}
	w.Flush()

	if len(entries) == 0 {
		fmt.Fprintln(out, "\nNo rounds traced.")
		return
	}

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROUND\tSCORE\tEVALUATIONS\tELAPSED")
	fmt.Fprintln(w, "-----\t-----\t-----------\t-------")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%.6f\t%d\t%s\n",
			e.Round,
			e.Score,
			e.Evaluations,
			time.Duration(e.ElapsedMs)*time.Millisecond,
		)
	}
	w.Flush()

	sum := store.Summarize(entries)
	fmt.Fprintf(out, "\n%d round(s), %d evaluations in %s; best score %.6f in round %d\n",
		sum.Rounds, sum.Evaluations, sum.Elapsed, sum.BestScore, sum.BestRound)
}

func runCleanRuns(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	runStore, err := store.NewFSStore(runsOutDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	infos, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No runs to clean.")
		return nil
	}

	toDelete := selectRunsForDeletion(infos, keepLast, olderThanDays, time.Now())

	if len(toDelete) == 0 {
		fmt.Println("No runs match deletion criteria.")
		return nil
	}

	fmt.Printf("Found %d run(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Printf("  - %s (class %s, %s, %s)\n",
			shortID(info.ID),
			info.ClassID,
			info.Polarity,
			info.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}

	if !forceClean {
		fmt.Print("\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	deleted := 0
	failed := 0
	for _, info := range toDelete {
		if err := runStore.DeleteRun(info.ID); err != nil {
			slog.Error("Failed to delete run", "run_id", info.ID, "error", err)
			failed++
		} else {
			slog.Info("Deleted run", "run_id", info.ID)
			deleted++
		}
	}

	fmt.Printf("\nDeleted %d run(s), %d failed.\n", deleted, failed)
	return nil
}

// selectRunsForDeletion applies the retention policy: runs started before
// now minus olderThanDays, plus everything but the keepLast most recent.
// Runs that are still running are never selected.
func selectRunsForDeletion(infos []store.RunInfo, keepLast int, olderThanDays int, now time.Time) []store.RunInfo {
	var toDelete []store.RunInfo
	selected := make(map[string]bool)

	add := func(info store.RunInfo) {
		if info.State == store.StateRunning || selected[info.ID] {
			return
		}
		selected[info.ID] = true
		toDelete = append(toDelete, info)
	}

	if olderThanDays > 0 {
		cutoff := now.AddDate(0, 0, -olderThanDays)
		for _, info := range infos {
			if info.Timestamp.Before(cutoff) {
				add(info)
			}
		}
	}

	if keepLast > 0 && len(infos) > keepLast {
		sorted := make([]store.RunInfo, len(infos))
		copy(sorted, infos)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		})

		for _, info := range sorted[:len(sorted)-keepLast] {
			add(info)
		}
	}

	return toDelete
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
