package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/getfakerest/fakerest/pkg/config"
	"github.com/getfakerest/fakerest/pkg/route"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	initOutput  string
	initForce   bool
	initFormat  string
	initNoInput bool
)

// initResult is the JSON shape of a successful init.
type initResult struct {
	Created string `json:"created"`
	Routes  int    `json:"routes"`
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter configuration file",
	Long: `Create a starter configuration file with example routes.

When stdin is a terminal, init asks for the first route interactively.
Pass --no-input (or pipe stdin) to write the default scaffold instead,
which is what CI and scripts want.`,
	Example: `  # Interactive setup, writes fakerest.yaml
  fakerest init

  # Non-interactive scaffold with a custom name
  fakerest init --no-input -o mocks.yaml

  # JSON config
  fakerest init --format json -o mocks.json

  # Overwrite an existing file
  fakerest init --force`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initOutput, "output", "o", "fakerest.yaml", "Output filename")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing config file")
	initCmd.Flags().StringVar(&initFormat, "format", "", "Output format: yaml or json (default: inferred from filename)")
	initCmd.Flags().BoolVar(&initNoInput, "no-input", false, "Skip the interactive form and write the default scaffold")
}

func runInit(_ *cobra.Command, _ []string) error {
	format := strings.ToLower(initFormat)
	if format == "" {
		if strings.ToLower(filepath.Ext(initOutput)) == ".json" {
			format = "json"
		} else {
			format = "yaml"
		}
	}
	if format != "yaml" && format != "json" {
		return fmt.Errorf("invalid format: %s (must be yaml or json)", format)
	}

	if _, err := os.Stat(initOutput); err == nil && !initForce {
		return fmt.Errorf("file already exists: %s\n\nUse --force to overwrite", initOutput)
	}

	doc := defaultScaffold()
	if !initNoInput && stdinIsTerminal() {
		formed, err := runInitForm()
		if err != nil {
			return err
		}
		doc = formed
	}

	var data []byte
	var err error
	if format == "json" {
		data, err = config.ToJSON(doc)
	} else {
		data, err = scaffoldYAML(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to generate config: %w", err)
	}

	if err := os.WriteFile(initOutput, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	printResult(initResult{Created: initOutput, Routes: len(doc.Routes)}, func() {
		fmt.Printf("Created %s\n", initOutput)
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Printf("  fakerest serve --config %s\n", initOutput)
		fmt.Printf("  curl http://localhost:8080%s\n", doc.Routes[0].Path)
	})
	return nil
}

// defaultScaffold is the config written without the interactive form.
func defaultScaffold() *config.Document {
	return &config.Document{
		Version: "1.0",
		Server: &config.ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Routes: []route.Route{
			{
				Path:          "/hello",
				Method:        route.MethodGet,
				StatusCode:    200,
				ResultType:    route.ResultDirect,
				Result:        `{"message": "Hello from fakerest!"}`,
				ResultHeaders: []string{"Content-Type: application/json"},
			},
			{
				Path:          "/health",
				Method:        route.MethodGet,
				StatusCode:    200,
				ResultType:    route.ResultDirect,
				Result:        `{"status": "ok"}`,
				ResultHeaders: []string{"Content-Type: application/json"},
			},
		},
	}
}

// runInitForm asks for the first route and builds a single-route config.
func runInitForm() (*config.Document, error) {
	formPath := "/hello"
	formMethod := "GET"
	formStatus := "200"
	formBody := `{"message": "Hello from fakerest!"}`

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What is the URL path to match?").
				Placeholder("/api/v1/users").
				Value(&formPath).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("path is required")
					}
					if !strings.HasPrefix(s, "/") {
						return errors.New("path must start with /")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("What HTTP method should it respond to?").
				Options(
					huh.NewOption("GET", "GET"),
					huh.NewOption("POST", "POST"),
					huh.NewOption("PUT", "PUT"),
					huh.NewOption("PATCH", "PATCH"),
					huh.NewOption("OPTION", "OPTION"),
					huh.NewOption("DELETE", "DELETE"),
				).
				Value(&formMethod),
			huh.NewInput().
				Title("What status code should it return?").
				Value(&formStatus).
				Validate(func(s string) error {
					if _, err := strconv.Atoi(s); err != nil {
						return errors.New("status code must be a number")
					}
					return nil
				}),
			huh.NewText().
				Title("Response body").
				Placeholder(`{"status": "ok"}`).
				Value(&formBody),
		),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}

	status, _ := strconv.Atoi(formStatus)
	return &config.Document{
		Version: "1.0",
		Server: &config.ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Routes: []route.Route{
			{
				Path:          formPath,
				Method:        route.Method(formMethod),
				StatusCode:    status,
				ResultType:    route.ResultDirect,
				Result:        formBody,
				ResultHeaders: []string{"Content-Type: application/json"},
			},
		},
	}, nil
}

// scaffoldYAML renders the config with a header comment block.
func scaffoldYAML(doc *config.Document) ([]byte, error) {
	yamlData, err := config.ToYAML(doc)
	if err != nil {
		return nil, err
	}

	header := `# ` + initOutput + `
# Generated by: fakerest init
#
# Start server: fakerest serve --config ` + initOutput + `
# Try a route:  curl http://localhost:8080` + doc.Routes[0].Path + `

`
	return append([]byte(header), yamlData...), nil
}

// stdinIsTerminal reports whether stdin is an interactive terminal. Piped
// or redirected stdin means no form.
func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
