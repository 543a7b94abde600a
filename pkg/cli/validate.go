package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/getfakerest/fakerest/pkg/cliconfig"
	"github.com/getfakerest/fakerest/pkg/config"

	"github.com/spf13/cobra"
)

var (
	validateFile    string
	validateSchema  bool
	validateVerbose bool
)

// validateReport is the JSON shape of a validation run.
type validateReport struct {
	Path     string         `json:"path"`
	Valid    bool           `json:"valid"`
	Errors   []config.Issue `json:"errors"`
	Warnings []config.Issue `json:"warnings"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file without starting a server.

Unlike serve, validation reports every problem it can find in one pass.
Errors would stop a server from loading the file; warnings point at routes
that load fine but cannot behave as written (shadowed paths, missing files,
out-of-registry status codes).

With --schema, the file is additionally checked against the config JSON
Schema, which catches misspelled keys and wrong value types that lenient
decoding would silently drop.`,
	Example: `  # Validate the discovered fakerest.yaml
  fakerest validate

  # Validate a specific file, structurally too
  fakerest validate --config mocks.yaml --schema

  # Machine-readable result for CI
  fakerest validate --config mocks.yaml --json`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFile, "config", "f", "", "Path to configuration file (YAML or JSON)")
	validateCmd.Flags().BoolVar(&validateSchema, "schema", false, "Also check structure against the config JSON Schema")
	validateCmd.Flags().BoolVarP(&validateVerbose, "verbose", "v", false, "Show the resolved document summary")
}

func runValidate(_ *cobra.Command, _ []string) error {
	path := validateFile
	if path == "" {
		path = cliconfig.GetConfigFileFromEnv()
	}
	if path == "" {
		found, err := config.DiscoverConfigFile()
		if err != nil {
			return err
		}
		path = found
	}

	doc, result, err := config.CheckFile(path)
	if err != nil {
		return err
	}

	if validateSchema {
		issues, err := schemaIssues(path)
		if err != nil {
			return err
		}
		result.Errors = append(result.Errors, issues...)
	}

	report := validateReport{
		Path:     path,
		Valid:    result.IsValid(),
		Errors:   result.Errors,
		Warnings: result.Warnings,
	}
	// Keep the JSON shape stable: empty lists, never null.
	if report.Errors == nil {
		report.Errors = []config.Issue{}
	}
	if report.Warnings == nil {
		report.Warnings = []config.Issue{}
	}

	printResult(report, func() { printValidateText(report, doc) })

	if !report.Valid {
		return fmt.Errorf("validation failed with %d error(s)", len(report.Errors))
	}
	return nil
}

// schemaIssues re-reads the file and runs the structural check. Env expansion
// happens first so ${VAR} placeholders do not trip type checks.
func schemaIssues(path string) ([]config.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	expanded := []byte(config.ExpandEnvVars(string(data)))

	err = config.ValidateSchema(expanded)
	if err == nil {
		return nil, nil
	}
	var se *config.SchemaError
	if errors.As(err, &se) {
		return se.Issues, nil
	}
	return nil, err
}

func printValidateText(report validateReport, doc *config.Document) {
	if validateVerbose && doc != nil {
		fmt.Printf("File:    %s\n", report.Path)
		fmt.Printf("Version: %s\n", doc.Version)
		fmt.Printf("Routes:  %d\n", len(doc.Routes))
		srv := doc.Server.WithDefaults()
		fmt.Printf("Server:  %s:%d (errorMode %s)\n", srv.Host, srv.Port, srv.ErrorMode)
		fmt.Println()
	}

	switch {
	case !report.Valid:
		fmt.Printf("Validation failed (%d error(s)):\n", len(report.Errors))
		for _, issue := range report.Errors {
			fmt.Printf("  - %s: %s\n", issue.Path, issue.Message)
		}
	case len(report.Warnings) > 0:
		fmt.Printf("Configuration is valid with %d warning(s).\n", len(report.Warnings))
	default:
		fmt.Println("Configuration is valid.")
	}

	if len(report.Warnings) > 0 {
		fmt.Println()
		fmt.Println("Warnings:")
		for _, issue := range report.Warnings {
			fmt.Printf("  - %s: %s\n", issue.Path, issue.Message)
		}
	}
}
