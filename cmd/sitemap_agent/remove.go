package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/sitemap-creator/internal/storage"
)

var removeFlags configFlags

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Delete every stored sitemap document of a site",
	RunE:  runRemove,
}

func init() {
	removeFlags.register(removeCmd)
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, _ []string) error {
	cfg, err := removeFlags.resolve(cmd)
	if err != nil {
		return err
	}

	store, dir, err := openStore(cfg)
	if err != nil {
		return err
	}

	n, err := storage.RemoveAll(store)
	if err != nil {
		return fmt.Errorf("failed to remove sitemaps from %s: %w", dir, err)
	}
	fmt.Printf("Removed %d sitemap document(s) from %s\n", n, dir)
	return nil
}
