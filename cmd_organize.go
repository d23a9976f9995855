package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"media-dater/internal/logger"
	"media-dater/internal/organize"
	"media-dater/internal/walk"
)

func newOrganizeCmd() *cobra.Command {
	var execute bool

	cmd := &cobra.Command{
		Use:   "organize <root>",
		Short: "Rename top-level media by capture date and sort into done/ and to_check/",
		Long: "Read each top-level media file's capture date, rename it to YYYY-MM-DD-HHMMSS " +
			"and move it to done/, or to to_check/ when only the file modification time was available",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrganize(args[0], execute)
		},
	}

	cmd.Flags().BoolVarP(&execute, "execute", "x", false, "Actually move files (default is dry-run)")

	return cmd
}

func runOrganize(root string, execute bool) error {
	s, err := newSession("organize", root)
	if err != nil {
		return err
	}
	defer logger.Sync(s.logger)

	printBanner("Media Organizer", root)
	if !execute {
		fmt.Println("[DRY RUN MODE - use --execute or -x to actually move files]")
		fmt.Println()
	}

	reader, err := s.openReader()
	if err != nil {
		return err
	}
	defer closeReader(s, reader)

	org := organize.New(root, reader, execute, s.logger)
	w := s.walker(false)
	if err := w.Run(org.Organize); err != nil {
		return err
	}

	for _, p := range org.Plans() {
		if p.Duplicate {
			fmt.Printf("  %s (duplicate of %s)\n", p.Source, p.Dest)
			continue
		}
		fmt.Printf("  %s\n", p.Source)
		fmt.Printf("    → %s\n", p.Dest)
	}
	fmt.Println()
	fmt.Print(org.Summary())

	if !execute {
		return nil
	}

	now := time.Now()
	stamp := walk.ReportStamp(now)
	if err := org.WriteReport(filepath.Join(root, organize.OrganizedReport(stamp))); err != nil {
		return err
	}
	if err := s.finish(w, walk.Reports{
		Failed:  stamp + "_failures_organize.csv",
		Ignored: stamp + "_ignored_organize.csv",
	}); err != nil {
		return err
	}
	fmt.Println("\nDone!")
	return nil
}
