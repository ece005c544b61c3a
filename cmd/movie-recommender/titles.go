// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/movie-recommender/internal/catalog"
)

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "List catalog titles",
	Long: `Titles prints every catalog title in catalog order. With --duplicates it
prints only titles that occur more than once; queries for those resolve to
the first occurrence.`,
	RunE: runTitles,
}

func runTitles(cmd *cobra.Command, args []string) error {
	cfg, err := appConfig()
	if err != nil {
		return err
	}
	c, err := catalog.NewStore(cfg.Catalog).Catalog()
	if err != nil {
		return err
	}

	dupsOnly, _ := cmd.Flags().GetBool("duplicates")
	titles := c.Titles()
	if dupsOnly {
		titles = c.DuplicateTitles()
	}
	for _, t := range titles {
		fmt.Fprintln(os.Stdout, t)
	}
	return nil
}

func init() {
	titlesCmd.Flags().Bool("duplicates", false, "list only titles that appear more than once")
	rootCmd.AddCommand(titlesCmd)
}
