package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Manage raw metric rows used for analysis",
}

var metricsImportCmd = &cobra.Command{
	Use:   "import <test-id> <file.csv>",
	Short: "Import metric rows from a CSV file",
	Long: `Import metric rows for a test from a CSV file.

The header must name variation, date, visitors and conversions columns;
revenue and segment are optional.

Examples:
  abadmin metrics import 5d0c... rows.csv --org acme
  abadmin metrics import 5d0c... rows.csv --org acme --replace`,
	Args: cobra.ExactArgs(2),
	RunE: runMetricsImport,
}

var (
	metricsOrg     string
	metricsReplace bool
)

func init() {
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.AddCommand(metricsImportCmd)

	metricsImportCmd.Flags().StringVar(&metricsOrg, "org", "", "Organization slug")
	metricsImportCmd.Flags().BoolVar(&metricsReplace, "replace", false, "Discard previously imported rows first")
}

func runMetricsImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	testID, path := args[0], args[1]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	ws, err := openOrg(ctx, app.Services, metricsOrg)
	if err != nil {
		return err
	}
	res, err := app.Services.Analysis.ImportRows(ctx, operator(), ws.Org.ID, testID, f, metricsReplace)
	if err != nil {
		return fmt.Errorf("failed to import metrics: %w", err)
	}

	verb := "Imported"
	if res.Replaced {
		verb = "Replaced previous rows and imported"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d rows for test %s\n", verb, res.Imported, testID)
	return nil
}
