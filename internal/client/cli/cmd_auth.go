package cli

import (
	"github.com/spf13/cobra"
)

const (
	groupAccount  = "account"
	groupProjects = "projects"
)

func newLoginCommand(rt *runtime) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Log in and store the session",
		GroupID: groupAccount,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.app.Login(cmd.Context(), email)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email (prompted when empty)")
	return cmd
}

func newRegisterCommand(rt *runtime) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:     "register",
		Short:   "Create an account",
		GroupID: groupAccount,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.app.Register(cmd.Context(), email)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email (prompted when empty)")
	return cmd
}

func newLogoutCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		Short:   "Forget the stored session",
		GroupID: groupAccount,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.app.Logout(cmd.Context())
		},
	}
}

func newWhoAmICommand(rt *runtime) *cobra.Command {
	var fetch bool
	cmd := &cobra.Command{
		Use:     "whoami",
		Short:   "Show the logged-in user and token expiry",
		GroupID: groupAccount,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.app.WhoAmI(cmd.Context(), fetch)
		},
	}
	cmd.Flags().BoolVar(&fetch, "fetch", false, "reload the profile from the server")
	return cmd
}

func newAccountCommand(rt *runtime) *cobra.Command {
	var (
		email    string
		password bool
	)
	cmd := &cobra.Command{
		Use:     "account",
		Short:   "Change your email or password",
		GroupID: groupAccount,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.app.UpdateMe(cmd.Context(), email, password)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "new email")
	cmd.Flags().BoolVar(&password, "password", false, "prompt for a new password")
	return cmd
}

func newUsersCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Short:   "Manage users (admin)",
		GroupID: groupAccount,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all users",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return rt.app.ListUsers(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "get <user-id>",
			Short: "Show one user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return rt.app.ShowUser(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:       "role <user-id> <USER|ADMIN>",
			Short:     "Change a user's role",
			Args:      cobra.ExactArgs(2),
			ValidArgs: []string{"USER", "ADMIN"},
			RunE: func(cmd *cobra.Command, args []string) error {
				return rt.app.SetRole(cmd.Context(), args[0], args[1])
			},
		},
	)
	return cmd
}

func newPingCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.app.Ping(cmd.Context())
		},
	}
}

func newNotificationsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notify"},
		Short:   "List and send notifications, change notification settings",
		GroupID: groupAccount,
	}

	newInputCommand := func(use, short string, send bool) *cobra.Command {
		var in notificationInput
		c := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return rt.app.CreateNotification(cmd.Context(), in, send)
			},
		}
		c.Flags().StringVar(&in.title, "title", "", "notification title")
		c.Flags().StringVar(&in.message, "message", "", "notification body")
		c.Flags().StringVar(&in.kind, "type", "system", "registration, system or email")
		_ = c.MarkFlagRequired("title")
		return c
	}

	var (
		email, system, registration bool
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Change notification settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var u settingsUpdate
			if cmd.Flags().Changed("email") {
				u.email = &email
			}
			if cmd.Flags().Changed("system") {
				u.system = &system
			}
			if cmd.Flags().Changed("registration") {
				u.registration = &registration
			}
			return rt.app.UpdateNotificationSettings(cmd.Context(), u)
		},
	}
	set.Flags().BoolVar(&email, "email", false, "email notifications")
	set.Flags().BoolVar(&system, "system", false, "system notifications")
	set.Flags().BoolVar(&registration, "registration", false, "registration notifications")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List your notifications",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return rt.app.ListNotifications(cmd.Context())
			},
		},
		newInputCommand("create", "Store a notification", false),
		newInputCommand("send", "Store and deliver a notification", true),
		&cobra.Command{
			Use:   "settings",
			Short: "Show notification settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return rt.app.NotificationSettings(cmd.Context())
			},
		},
		set,
	)
	return cmd
}
