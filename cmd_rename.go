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

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <root>",
		Short: "Rename YYYY-MM-DD_name files to YYYY-MM-DD-name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(args[0])
		},
	}
}

func runRename(root string) error {
	s, err := newSession("rename", root)
	if err != nil {
		return err
	}
	defer logger.Sync(s.logger)

	fmt.Printf("Walking through %s\n", root)

	w := s.walker(true)
	if err := w.Run(organize.RenameDatePrefix); err != nil {
		return err
	}

	for _, c := range w.Ledger().Updated {
		fmt.Printf("%s -> %s\n", c.Path, filepath.Join(filepath.Dir(c.Path), c.New))
	}

	if err := s.finish(w, walk.RenameReports(time.Now())); err != nil {
		return err
	}
	fmt.Println("\nDone!")
	return nil
}
