package cli

import (
	"fmt"
	"strings"

	"github.com/getfakerest/fakerest/internal/httpwire"
	"github.com/getfakerest/fakerest/pkg/cli/internal/output"
	"github.com/getfakerest/fakerest/pkg/cliconfig"
	"github.com/getfakerest/fakerest/pkg/config"

	"github.com/spf13/cobra"
)

var routesFile string

// routeSummary is one row of the resolved route table. Status is the
// effective code a request will actually get, after unknown and unset codes
// degrade to 200.
type routeSummary struct {
	Path       string   `json:"path"`
	Method     string   `json:"method"`
	Status     int      `json:"status"`
	ResultType string   `json:"resultType,omitempty"`
	Result     string   `json:"result,omitempty"`
	Headers    []string `json:"headers,omitempty"`
	Queries    []string `json:"queries,omitempty"`
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Show the resolved route table",
	Long: `Show the route table a server would serve from, in match order.

Routes from routeFiles globs are expanded and appended after the inline
ones, exactly as serve would see them. The STATUS column shows the
effective status code: unset and out-of-registry codes both answer 200.`,
	Example: `  # Table for the discovered fakerest.yaml
  fakerest routes

  # Specific file, as JSON
  fakerest routes --config mocks.yaml --json`,
	RunE: runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)

	routesCmd.Flags().StringVarP(&routesFile, "config", "f", "", "Path to configuration file (YAML or JSON)")
}

func runRoutes(_ *cobra.Command, _ []string) error {
	path := routesFile
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

	doc, err := config.LoadDocument(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	routes := doc.Table().Routes()
	summaries := make([]routeSummary, 0, len(routes))
	for _, rt := range routes {
		summaries = append(summaries, routeSummary{
			Path:       rt.Path,
			Method:     string(rt.Method),
			Status:     httpwire.StatusFromCode(rt.StatusCode).Code,
			ResultType: string(rt.ResultType),
			Result:     rt.Result,
			Headers:    rt.Headers,
			Queries:    rt.Queries,
		})
	}

	printList(summaries, func() { printRoutesTable(summaries) })
	return nil
}

func printRoutesTable(summaries []routeSummary) {
	if len(summaries) == 0 {
		fmt.Println("No routes configured")
		return
	}

	w := output.Table()
	fmt.Fprintln(w, "#\tMETHOD\tPATH\tSTATUS\tTYPE\tRESULT")
	for i, s := range summaries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			i, s.Method, s.Path, s.Status, s.ResultType, truncateResult(s.Result, 40))
	}
	_ = w.Flush()
}

// truncateResult keeps table rows readable for long inline bodies.
func truncateResult(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
