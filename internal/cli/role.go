package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abadmin/internal/domain"
)

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Inspect roles and assign them to members",
}

var roleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List an organization's roles",
	Long: `List an organization's roles with their permissions.

Examples:
  abadmin role list --org acme`,
	Args: cobra.NoArgs,
	RunE: runRoleList,
}

var roleAssignCmd = &cobra.Command{
	Use:   "assign <user-id> <role>",
	Short: "Assign a role to a member",
	Long: `Assign a role to a member. The role is matched by name (case-insensitive) or id.

Examples:
  abadmin role assign 7f7c... Admin --org acme`,
	Args: cobra.ExactArgs(2),
	RunE: runRoleAssign,
}

var roleOrg string

func init() {
	rootCmd.AddCommand(roleCmd)
	roleCmd.AddCommand(roleListCmd)
	roleCmd.AddCommand(roleAssignCmd)

	roleCmd.PersistentFlags().StringVar(&roleOrg, "org", "", "Organization slug")
}

func runRoleList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	ws, err := openOrg(ctx, app.Services, roleOrg)
	if err != nil {
		return err
	}
	roles, err := app.Services.Roles.List(ctx, operator(), ws.Org.ID)
	if err != nil {
		return fmt.Errorf("failed to list roles: %w", err)
	}

	w := newTable(cmd.OutOrStdout())
	fmt.Fprintln(w, "NAME\tSYSTEM\tPERMISSIONS\tID")
	for _, r := range roles {
		perms := make([]string, 0, len(domain.AllPermissions))
		for _, p := range r.Permissions.List() {
			perms = append(perms, string(p))
		}
		system := "no"
		if r.IsSystem {
			system = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, system, orDash(strings.Join(perms, ",")), r.ID)
	}
	return w.Flush()
}

func runRoleAssign(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	userID, roleRef := args[0], args[1]

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	ws, err := openOrg(ctx, app.Services, roleOrg)
	if err != nil {
		return err
	}
	roles, err := app.Services.Roles.List(ctx, operator(), ws.Org.ID)
	if err != nil {
		return fmt.Errorf("failed to list roles: %w", err)
	}

	var role *domain.Role
	for _, r := range roles {
		if r.ID == roleRef || strings.EqualFold(r.Name, roleRef) {
			role = r
			break
		}
	}
	if role == nil {
		return fmt.Errorf("role %q not found in %s", roleRef, ws.Org.Slug)
	}

	if err := app.Services.Members.AssignRole(ctx, operator(), ws.Org.ID, userID, role.ID); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Assigned %s to %s in %s\n", role.Name, userID, ws.Org.Slug)
	return nil
}
