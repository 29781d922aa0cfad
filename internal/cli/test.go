package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abadmin/internal/util"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Inspect A/B tests",
}

var testListCmd = &cobra.Command{
	Use:   "list",
	Short: "List an organization's tests",
	Long: `List an organization's tests, newest first, one page at a time.

Examples:
  abadmin test list --org acme
  abadmin test list --org acme --status running --page 2`,
	Args: cobra.NoArgs,
	RunE: runTestList,
}

var (
	testOrg    string
	testStatus string
	testPage   int
)

func init() {
	rootCmd.AddCommand(testCmd)
	testCmd.AddCommand(testListCmd)

	testListCmd.Flags().StringVar(&testOrg, "org", "", "Organization slug")
	testListCmd.Flags().StringVarP(&testStatus, "status", "s", "", "Only tests in this status (draft, running, paused, completed, archived)")
	testListCmd.Flags().IntVar(&testPage, "page", 1, "Page number")
}

func runTestList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	ws, err := openOrg(ctx, app.Services, testOrg)
	if err != nil {
		return err
	}
	page, err := app.Services.Tests.List(ctx, operator(), ws.Org.ID, testStatus, testPage)
	if err != nil {
		return fmt.Errorf("failed to list tests: %w", err)
	}
	if len(page.Tests) == 0 {
		fmt.Fprintln(out, "No tests found")
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, "NAME\tSTATUS\tMETRIC\tVERSION\tSTART\tEND\tID")
	for _, t := range page.Tests {
		fmt.Fprintf(w, "%s\t%s\t%s\tv%d\t%s\t%s\t%s\n",
			t.Name, t.Status, t.PrimaryMetric, t.LatestVersion,
			util.FormatDate(t.StartDate), util.FormatDate(t.EndDate), t.ID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nPage %d of %d (%d tests)\n", page.Page, max(page.TotalPages, 1), page.Total)
	return nil
}

