package cli

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/vmgen/internal/client/config"
	"github.com/spf13/cobra"
)

// runtime carries the App between cobra's pre-run hook and the commands.
type runtime struct {
	app    *App
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func (rt *runtime) close() error {
	if rt.app == nil {
		return nil
	}
	err := rt.app.Close()
	rt.app = nil
	return err
}

// needsApp is false for help and shell completion, which must work without
// touching the session database.
func needsApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return cmd.Runnable()
}

func newRootCommand(in io.Reader, out, errOut io.Writer) (*cobra.Command, *runtime) {
	rt := &runtime{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "vmgen",
		Short: "Client for the VM template generator",
		Long: `vmgen manages template-generation projects: upload a JSON schema and an
XSD (or XML) schema, and the backend maps fields between them and builds a
Velocity template.

Configuration is read from defaults, a .env file, the environment
(VMGEN_BACKEND_LOCAL, VMGEN_API_BASE_URL, VMGEN_LOCAL_URL), an optional
JSON or YAML file (-c) and finally the flags below.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !needsApp(cmd) || rt.app != nil {
				return nil
			}
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			app, err := NewApp(cmd.Context(), cfg, rt.in, rt.out, rt.errOut)
			if err != nil {
				return err
			}
			rt.app = app
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	config.BindFlags(root.PersistentFlags())

	root.AddGroup(
		&cobra.Group{ID: groupAccount, Title: "Account:"},
		&cobra.Group{ID: groupProjects, Title: "Projects:"},
	)
	root.AddCommand(
		newLoginCommand(rt),
		newRegisterCommand(rt),
		newLogoutCommand(rt),
		newWhoAmICommand(rt),
		newAccountCommand(rt),
		newUsersCommand(rt),
		newNotificationsCommand(rt),
		newProjectsCommand(rt),
		newFilesCommand(rt),
		newGenerateCommand(rt),
		newCompleteCommand(rt),
		newEditCommand(rt),
		newPingCommand(rt),
	)
	return root, rt
}

// Execute runs the command line in args and releases the App afterwards.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	root, rt := newRootCommand(in, out, errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, rt.close())
}
