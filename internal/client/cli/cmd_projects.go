package cli

import (
	"github.com/spf13/cobra"
)

func newProjectsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "Manage projects",
		GroupID: groupProjects,
	}

	var lo listOptions
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.app.ListProjects(cmd.Context(), lo)
		},
	}
	list.Flags().StringVar(&lo.status, "status", "", "DRAFT, IN_PROGRESS, COMPLETED or ARCHIVED")
	list.Flags().StringVarP(&lo.search, "search", "s", "", "search in names and descriptions")
	list.Flags().StringVar(&lo.sortBy, "sort", "", "created_at, total_size, name or status")
	list.Flags().StringVar(&lo.sortOrder, "order", "", "asc or desc")
	list.Flags().IntVar(&lo.page, "page", 1, "page number, starting at 1")
	list.Flags().IntVar(&lo.size, "size", 0, "page size (default 100)")

	var name, description string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an empty draft project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.app.CreateProject(cmd.Context(), name, description)
		},
	}
	create.Flags().StringVarP(&name, "name", "n", "", "project name")
	create.Flags().StringVarP(&description, "description", "d", "", "project description")
	_ = create.MarkFlagRequired("name")

	var uName, uDesc, uStatus string
	update := &cobra.Command{
		Use:   "update <project-id>",
		Short: "Change a project's name, description or status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u projectUpdate
			if cmd.Flags().Changed("name") {
				u.name = &uName
			}
			if cmd.Flags().Changed("description") {
				u.description = &uDesc
			}
			if cmd.Flags().Changed("status") {
				u.status = &uStatus
			}
			return rt.app.UpdateProject(cmd.Context(), args[0], u)
		},
	}
	update.Flags().StringVarP(&uName, "name", "n", "", "new name")
	update.Flags().StringVarP(&uDesc, "description", "d", "", "new description")
	update.Flags().StringVar(&uStatus, "status", "", "new status")

	var force bool
	del := &cobra.Command{
		Use:     "delete <project-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a project and its files",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.app.DeleteProject(cmd.Context(), args[0], force)
		},
	}
	del.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")

	cmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "show <project-id>",
			Short: "Show a project and its files",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return rt.app.ShowProject(cmd.Context(), args[0])
			},
		},
		create,
		update,
		del,
		&cobra.Command{
			Use:   "mappings <project-id>",
			Short: "Show the field mappings of a generated project",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return rt.app.ShowMappings(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "files <project-id>",
			Short: "List a project's files",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return rt.app.ProjectFiles(cmd.Context(), args[0])
			},
		},
	)
	return cmd
}

func newFilesCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "files",
		Aliases: []string{"file", "f"},
		Short:   "Upload, inspect, download and delete project files",
		GroupID: groupProjects,
	}

	var fileType string
	upload := &cobra.Command{
		Use:   "upload <project-id> <path>",
		Short: "Upload a file to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.app.UploadFile(cmd.Context(), args[0], args[1], fileType)
		},
	}
	upload.Flags().StringVarP(&fileType, "type", "t", "", "JSON_SCHEMA, XSD_SCHEMA or TEST_DATA (default from the extension)")

	var name, dir string
	download := &cobra.Command{
		Use:   "download <file-id>",
		Short: "Download a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.app.DownloadFile(cmd.Context(), args[0], name, dir)
		},
	}
	download.Flags().StringVarP(&name, "name", "n", "", "local file name (default: the server's name)")
	download.Flags().StringVarP(&dir, "dir", "o", "", "target directory (default: --download-dir)")

	var force bool
	del := &cobra.Command{
		Use:     "delete <file-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.app.DeleteFile(cmd.Context(), args[0], force)
		},
	}
	del.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")

	cmd.AddCommand(
		upload,
		&cobra.Command{
			Use:   "info <file-id>",
			Short: "Show file metadata",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return rt.app.ShowFile(cmd.Context(), args[0])
			},
		},
		download,
		del,
	)
	return cmd
}

func newGenerateCommand(rt *runtime) *cobra.Command {
	var o generateOptions
	cmd := &cobra.Command{
		Use:   "generate <name> <file>...",
		Short: "Create a project from local files and generate its template",
		Long: `generate creates a project from a JSON schema and an XSD or XML schema
(plus optional .txt test data), lets the backend map the fields and build a
Velocity template, and downloads the template.`,
		Example: "  vmgen generate invoices schema.json invoice.xsd",
		GroupID: groupProjects,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.app.Generate(cmd.Context(), args[0], args[1:], o)
		},
	}
	cmd.Flags().StringVarP(&o.description, "description", "d", "", "project description")
	cmd.Flags().StringVarP(&o.dir, "dir", "o", "", "directory for the template (default: --download-dir)")
	cmd.Flags().BoolVar(&o.noDownload, "no-download", false, "do not download the template")
	return cmd
}

func newCompleteCommand(rt *runtime) *cobra.Command {
	var o completeOptions
	cmd := &cobra.Command{
		Use:     "complete",
		Short:   "Generate a template from two schemas without storing a project",
		GroupID: groupProjects,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.app.Complete(cmd.Context(), o)
		},
	}
	cmd.Flags().StringVar(&o.jsonPath, "json", "", "JSON schema file")
	cmd.Flags().StringVar(&o.xsdPath, "xsd", "", "XSD schema file")
	cmd.Flags().StringVar(&o.testDataPath, "test-data", "", "JSON test data for the preview")
	cmd.Flags().BoolVar(&o.preview, "preview", false, "ask for a rendered preview")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write the template to this file instead of stdout")
	_ = cmd.MarkFlagRequired("json")
	_ = cmd.MarkFlagRequired("xsd")
	return cmd
}

func newEditCommand(rt *runtime) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:     "edit [project-id]",
		Short:   "Edit a project interactively (a new one without an id)",
		GroupID: groupProjects,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			return rt.app.Edit(cmd.Context(), id, dir)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "o", "", "directory for generated templates (default: --download-dir)")
	return cmd
}
