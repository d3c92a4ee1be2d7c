package commands

import (
	"github.com/spf13/cobra"
)

// LoginCmd creates the login command
func LoginCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> [password]",
		Short: "Sign in",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 2 {
				password = args[1]
			}

			user, err := app.Accounts.Authenticate(app.Ctx, args[0], password)
			if err != nil {
				return err
			}
			if err := app.Session.Login(app.Ctx, user); err != nil {
				return err
			}
			app.ResetEditor()

			app.printf("✓ Signed in as %s (%s)\n", user.Name, user.Role)
			return nil
		},
	}
}

// LogoutCmd creates the logout command
func LogoutCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Session.Logout(app.Ctx); err != nil {
				return err
			}
			app.ResetEditor()
			app.printf("✓ Signed out\n")
			return nil
		},
	}
}

// WhoAmICmd creates the whoami command
func WhoAmICmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.Session.CurrentUser(app.Ctx)
			if err != nil {
				return err
			}
			if user == nil {
				app.printf("Not signed in\n")
				return nil
			}
			app.printf("%s <%s> id %s, %s\n", user.Name, user.Email, user.ID, user.Role)
			return nil
		},
	}
}
