package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"freequilt/internal/app/catalog"
	"freequilt/internal/app/storage"
)

func newPatternCmd(a *app) *cobra.Command {
	patternCmd := &cobra.Command{
		Use:   "pattern",
		Short: "Manage pattern files",
	}

	uploadCmd := &cobra.Command{
		Use:   "upload <id> <file>",
		Short: "Upload the PDF of a catalog pattern to S3",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := catalog.Load()
			if err != nil {
				return err
			}

			pattern, ok := index.Get(args[0])
			if !ok {
				return fmt.Errorf("pattern %q not found", args[0])
			}

			cfg, err := a.loadConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if !cfg.S3Enabled() {
				return fmt.Errorf("S3_BUCKET_NAME is not set")
			}

			files, err := a.openFiles(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			key := storage.PatternKey(pattern.ID)
			if err := files.Upload(cmd.Context(), key, "application/pdf", f); err != nil {
				return fmt.Errorf("upload %s: %w", key, err)
			}

			info, err := files.Stat(cmd.Context(), key)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%d bytes) for %q\n", info.Key, info.ContentLength, pattern.Title)
			return nil
		},
	}

	patternCmd.AddCommand(uploadCmd)
	return patternCmd
}
