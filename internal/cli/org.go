package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/service"
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Manage organizations",
}

var orgCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an organization",
	Long: `Create an organization with the default roles. The given user becomes its Owner.

Examples:
  abadmin org create "Acme" --owner-id 7f7c... --owner-email ada@acme.io`,
	Args: cobra.ExactArgs(1),
	RunE: runOrgCreate,
}

var orgListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all organizations",
	Args:  cobra.NoArgs,
	RunE:  runOrgList,
}

var (
	orgOwnerID    string
	orgOwnerEmail string
)

func init() {
	rootCmd.AddCommand(orgCmd)
	orgCmd.AddCommand(orgCreateCmd)
	orgCmd.AddCommand(orgListCmd)

	orgCreateCmd.Flags().StringVar(&orgOwnerID, "owner-id", "", "User id of the first Owner")
	orgCreateCmd.Flags().StringVar(&orgOwnerEmail, "owner-email", "", "Email of the first Owner")
	_ = orgCreateCmd.MarkFlagRequired("owner-id")
	_ = orgCreateCmd.MarkFlagRequired("owner-email")
}

func runOrgCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	owner := &auth.Principal{UserID: orgOwnerID, Email: orgOwnerEmail, IsSuperAdmin: true}
	org, err := app.Services.Organizations.Create(ctx, owner, service.OrganizationInput{Name: args[0]})
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created organization %s (slug %s, id %s)\n", org.Name, org.Slug, org.ID)
	return nil
}

func runOrgList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	orgs, err := app.Services.Organizations.ListForUser(ctx, operator())
	if err != nil {
		return fmt.Errorf("failed to list organizations: %w", err)
	}
	if len(orgs) == 0 {
		fmt.Fprintln(out, "No organizations found")
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, "SLUG\tNAME\tID\tCREATED")
	for _, org := range orgs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", org.Slug, org.Name, org.ID, org.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}
