// Media Dater - fixes the capture dates of photos and videos
//
// Run against a media library, the root command infers a date from every
// file name, compares it with the date stored in the file's metadata and
// rewrites DateTimeOriginal through a single long-lived exiftool process
// when the two disagree. The file's previous metadata is saved next to it
// before anything is written.
//
// Usage:
//
//	media-dater /path/to/media             # Fix metadata dates from filenames
//	media-dater organize /path/to/media    # Preview renames by capture date (dry-run)
//	media-dater organize -x /path/to/media # Rename and move into done/ or to_check/
//	media-dater rename /path/to/media      # YYYY-MM-DD_name -> YYYY-MM-DD-name
//	media-dater tags /path/to/media        # Survey time tags into _tags.yaml
//
// Every run leaves CSV reports in the processed directory. Configuration is
// read from the YAML file named by MEDIADATE_CONFIG and from MEDIADATE_*
// environment variables.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"media-dater/internal/config"
	"media-dater/internal/exiftool"
	"media-dater/internal/logger"
	"media-dater/internal/media"
	"media-dater/internal/native"
	"media-dater/internal/reconcile"
	"media-dater/internal/walk"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "media-dater <root>",
		Short:         "Fix media capture dates from filenames",
		Long:          "Compare the date in each media file's name with its metadata and rewrite DateTimeOriginal where they disagree",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(args[0])
		},
	}

	rootCmd.AddCommand(newOrganizeCmd())
	rootCmd.AddCommand(newRenameCmd())
	rootCmd.AddCommand(newTagsCmd())

	return rootCmd
}

// =============================================================================
// Session
// =============================================================================

// session carries what every command needs for one run.
type session struct {
	command string
	root    string
	cfg     *config.Config
	logger  *zap.Logger
	metrics *walk.Metrics
	started time.Time
}

func newSession(command, root string) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.LogFormat, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	log = log.With(
		zap.String("session", uuid.NewString()),
		zap.String("command", command),
	)

	return &session{
		command: command,
		root:    root,
		cfg:     cfg,
		logger:  log,
		metrics: walk.NewMetrics(command),
		started: time.Now(),
	}, nil
}

func (s *session) walker(recursive bool) *walk.Walker {
	return walk.New(s.root,
		walk.WithLogger(s.logger),
		walk.WithSkip(s.cfg.Skip),
		walk.WithRecursive(recursive),
		walk.WithMetrics(s.metrics),
	)
}

// timeReader is the read side shared by the exiftool client and the native
// reader.
type timeReader interface {
	ReadTimeMetadata(paths ...string) ([]media.Record, error)
	Close() error
}

// openReader returns the configured metadata backend.
func (s *session) openReader() (timeReader, error) {
	if s.cfg.Backend == "native" {
		s.logger.Debug("using native EXIF reader")
		return native.NewReader(), nil
	}
	client, err := exiftool.Open(s.cfg.Exiftool, s.logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func closeReader(s *session, r timeReader) {
	if err := r.Close(); err != nil {
		s.logger.Warn("failed to close metadata reader", zap.Error(err))
	}
}

// finish writes reports and metrics and prints the closing summary.
func (s *session) finish(w *walk.Walker, reports walk.Reports) error {
	ledger := w.Ledger()

	written, err := ledger.WriteReports(s.root, reports)
	if err != nil {
		return err
	}
	for _, path := range written {
		s.logger.Debug("wrote report", zap.String("path", path))
	}

	if s.cfg.MetricsFile != "" {
		if err := s.metrics.WriteTextfile(s.cfg.MetricsFile, time.Now()); err != nil {
			s.logger.Warn("failed to write metrics", zap.String("path", s.cfg.MetricsFile), zap.Error(err))
		}
	}

	fmt.Println()
	fmt.Printf("Updated:   %d\n", len(ledger.Updated))
	fmt.Printf("Unchanged: %d\n", ledger.Unchanged)
	fmt.Printf("Ignored:   %d\n", len(ledger.Ignored))
	fmt.Printf("Failed:    %d\n", len(ledger.Failed))
	s.logger.Info("finished",
		zap.Int("updated", len(ledger.Updated)),
		zap.Int("failed", len(ledger.Failed)),
		zap.Duration("elapsed", time.Since(s.started)),
	)
	return nil
}

func printBanner(title, root string) {
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Root: %s\n", root)
	fmt.Println()
}

// =============================================================================
// Update metadata by filename
// =============================================================================

func runUpdate(root string) error {
	s, err := newSession("update", root)
	if err != nil {
		return err
	}
	defer logger.Sync(s.logger)

	printBanner("Media Dater", root)

	// Writes always go through exiftool, whatever the read backend.
	client, err := exiftool.Open(s.cfg.Exiftool, s.logger)
	if err != nil {
		return err
	}
	defer closeReader(s, client)

	w := s.walker(true)
	if err := w.Run(updateHandler(reconcile.New(client, s.logger))); err != nil {
		return err
	}

	if err := s.finish(w, walk.UpdateReports(time.Now())); err != nil {
		return err
	}
	fmt.Println("\nDone!")
	return nil
}

// updateHandler adapts a Reconciler to the walker.
func updateHandler(r *reconcile.Reconciler) walk.Handler {
	return func(path string) (walk.Result, error) {
		out, err := r.Reconcile(path)
		if err != nil {
			return walk.Result{}, err
		}
		switch out.Status {
		case reconcile.StatusIgnored:
			return walk.Result{Status: walk.Ignored}, nil
		case reconcile.StatusCorrected:
			return walk.Result{Status: walk.Updated, Old: out.Old, New: out.New}, nil
		default:
			return walk.Result{Status: walk.Unchanged}, nil
		}
	}
}
