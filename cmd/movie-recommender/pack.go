// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/movie-recommender/internal/catalog"
)

var packCmd = &cobra.Command{
	Use:   "pack <output>",
	Short: "Convert catalog artifacts into a bundle or binary matrix",
	Long: `Pack loads the configured catalog and writes it back out in another
format, chosen by the output extension:

  .db               SQLite bundle holding movies and matrix rows
  .simx, .simx.gz   binary similarity matrix (float32 or float64)

The catalog is validated on the way in, so a successful pack is always
loadable.`,
	Args: cobra.ExactArgs(1),
	RunE: runPack,
}

func runPack(cmd *cobra.Command, args []string) error {
	out := args[0]
	cfg, err := appConfig()
	if err != nil {
		return err
	}
	c, err := catalog.Load(context.Background(), cfg.Catalog)
	if err != nil {
		return err
	}

	switch {
	case strings.HasSuffix(out, ".db"):
		if err := catalog.WriteBundle(context.Background(), out, c); err != nil {
			return err
		}
	case strings.HasSuffix(out, ".simx"), strings.HasSuffix(out, ".simx.gz"):
		dtype, _ := cmd.Flags().GetInt("dtype")
		if dtype != catalog.DTypeFloat32 && dtype != catalog.DTypeFloat64 {
			return fmt.Errorf("unsupported --dtype %d: use 4 (float32) or 8 (float64)", dtype)
		}
		if err := catalog.WriteMatrixFile(out, c.Matrix(), uint8(dtype)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported output %q: use .db, .simx or .simx.gz", out)
	}

	fmt.Fprintf(os.Stdout, "Packed %d movies into %s\n", c.Len(), out)
	return nil
}

func init() {
	packCmd.Flags().Int("dtype", catalog.DTypeFloat32, "matrix element size in bytes for .simx output: 4 or 8")
	rootCmd.AddCommand(packCmd)
}
