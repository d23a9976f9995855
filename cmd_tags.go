package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"media-dater/internal/logger"
	"media-dater/internal/survey"
	"media-dater/internal/walk"
)

func newTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags <root>",
		Short: "Survey which time tags each media kind carries",
		Long:  "Read time metadata for every media file and write the distinct tag sets per kind, with an example file each, to " + survey.FileName,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTags(args[0])
		},
	}
}

func runTags(root string) error {
	s, err := newSession("tags", root)
	if err != nil {
		return err
	}
	defer logger.Sync(s.logger)

	printBanner("Media Tag Survey", root)

	reader, err := s.openReader()
	if err != nil {
		return err
	}
	defer closeReader(s, reader)

	sv := survey.New(root, reader)
	w := s.walker(true)
	if err := w.Run(sv.Visit); err != nil {
		return err
	}

	path, err := sv.Write(root)
	if err != nil {
		return err
	}
	s.logger.Info("wrote survey", zap.String("path", path))

	if err := s.finish(w, walk.Reports{}); err != nil {
		return err
	}
	fmt.Println("\nDone!")
	return nil
}
