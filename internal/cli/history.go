package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthcheck/internal/pipeline"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the analysis history",
	Long: `Manage the local analysis history. Each analyzed URL keeps its most
recent result; only the newest entries are retained.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent analyses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		entries, err := store.List(context.Background(), historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "No analyses in history")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tSCORE\tTYPE\tURL\tTITLE")
		for _, e := range entries {
			report := pipeline.ReportFromHistory(e)
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04"),
				int(report.Verdict.OverallScore), e.Type, e.URL, e.Title)
		}
		return tw.Flush()
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the history as JSON (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		var w io.Writer = os.Stdout
		if len(args) == 1 && args[0] != "-" {
			f, createErr := os.Create(args[0])
			if createErr != nil {
				return fmt.Errorf("create export file: %w", createErr)
			}
			defer func() {
				if closeErr := f.Close(); closeErr != nil && err == nil {
					err = fmt.Errorf("close export file: %w", closeErr)
				}
			}()
			w = f
		}

		return store.Export(context.Background(), w)
	},
}

var historyImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import history entries from a JSON export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer func() { _ = f.Close() }()

		n, err := store.Import(context.Background(), f)
		if err != nil {
			return fmt.Errorf("import history: %w", err)
		}
		fmt.Printf("✓ Imported %d entries\n", n)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every history entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if err := store.Clear(context.Background()); err != nil {
			return err
		}
		fmt.Println("✓ History cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyExportCmd, historyImportCmd, historyClearCmd)

	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of entries (0 = all)")
}
