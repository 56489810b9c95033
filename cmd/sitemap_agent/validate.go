package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/sitemap-creator/internal/config"
	"github.com/jonathan/sitemap-creator/internal/schemas"
)

var validateConfigPath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long:  `Checks a JSON or YAML config file against the config schema and value constraints.`,
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateConfigPath, "config", "", "Path to the config file")
	_ = validateCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(validateConfigPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %s\n", validateConfigPath)
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			for _, field := range verr.Fields() {
				fmt.Fprintf(os.Stderr, "  - %s\n", field)
			}
		}
		return err
	}
	fmt.Printf("Validation passed: %s\n", validateConfigPath)
	return nil
}
