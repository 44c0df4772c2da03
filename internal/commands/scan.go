package commands

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/smsledger/internal/export"
	"github.com/cleared-dev/smsledger/internal/importer"
	"github.com/cleared-dev/smsledger/internal/logger"
	"github.com/cleared-dev/smsledger/internal/model"
	"github.com/cleared-dev/smsledger/internal/runlog"
)

type scanOptions struct {
	dir    string
	format string
	out    string
	move   bool
	quiet  bool
}

func newScanCommand(configPath *string) *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan [file...]",
		Short: "Scan exported notifications and write the transactions found",
		Long: "Scan reads CSV (sender,body,received_at_millis) or JSONL exports, either the\n" +
			"files given as arguments or every importable file in the import directory,\n" +
			"and writes the emitted transactions as CSV or JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(cmd, *configPath)
			if err != nil {
				return err
			}
			return runScan(cmd, ws, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", "", "import directory (default <workspace>/import)")
	cmd.Flags().StringVar(&opts.format, "format", "csv", "output format: csv or json")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write output to file instead of stdout")
	cmd.Flags().BoolVar(&opts.move, "move", false, "move scanned files from the import directory to processed/")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "no progress output")

	return cmd
}

func runScan(cmd *cobra.Command, ws *workspace, files []string, opts scanOptions) error {
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	reg := importer.DefaultRegistry()

	var scanned []importer.FileInfo
	if len(files) == 0 {
		dir := opts.dir
		if dir == "" {
			dir = filepath.Join(ws.dir, "import")
		}
		if scanned, err = reg.Scan(dir); err != nil {
			return err
		}
		if len(scanned) == 0 {
			return fmt.Errorf("no importable files in %s", dir)
		}
		for _, f := range scanned {
			files = append(files, f.Path)
		}
	}

	var events []model.RawEvent
	for _, path := range files {
		evs, err := reg.ReadFile(path)
		if err != nil {
			return err
		}
		events = append(events, evs...)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	stderr := cmd.ErrOrStderr()
	progress := func(done, total int) {
		if opts.quiet {
			return
		}
		fmt.Fprintf(stderr, "\rscanned %d/%d", done, total)
		if done == total {
			fmt.Fprintln(stderr)
		}
	}
	res, scanErr := ws.pipe.ScanBatch(ctx, events, progress)

	if err := writeRecords(cmd.OutOrStdout(), opts.out, format, res.Records, ws.pipe.MinDisplay()); err != nil {
		return err
	}

	c := res.Counts
	discarded := c.UnrecognizedSender + c.NoAmountFound
	fmt.Fprintf(stderr, "%d events: %d emitted, %d discarded, %d duplicates, %d skipped\n",
		len(events), c.Emitted, discarded, c.Duplicates, c.Skipped)

	if ws.dir != "" {
		entry := runlog.Entry{
			Timestamp:  time.Now().UTC(),
			RunID:      res.RunID,
			Source:     strings.Join(files, ";"),
			Total:      len(events),
			Emitted:    c.Emitted,
			Discarded:  discarded,
			Duplicates: c.Duplicates,
			Skipped:    c.Skipped,
		}
		if err := runlog.Append(ws.dir, []runlog.Entry{entry}); err != nil {
			lg := logger.FromContext(ctx)
			lg.Warn().Err(err).Msg("failed to write scan log")
		}
	}

	if scanErr != nil {
		return fmt.Errorf("scan interrupted: %w", scanErr)
	}

	if opts.move {
		for _, f := range scanned {
			if err := importer.MarkProcessed(filepath.Dir(f.Path), f.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeRecords writes to path, or to stdout when path is empty. Close errors
// are returned.
func writeRecords(stdout io.Writer, path string, format export.Format, records []model.TransactionRecord, minDisplay float64) (err error) {
	if path == "" {
		return export.Write(stdout, format, records, minDisplay)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing output: %w", cerr)
		}
	}()
	return export.Write(f, format, records, minDisplay)
}
