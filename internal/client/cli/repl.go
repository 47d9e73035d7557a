package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// editSession is the command surface of the edit loop. editCommands backs
// it with a services.Editor; tests provide a lightweight stub.
type editSession interface {
	Add(ctx context.Context, paths []string) error
	Remove(ctx context.Context, ref string) error
	List() error
	Status() error
	SetName(name string)
	SetDescription(desc string)
	Save(ctx context.Context) error
	Generate(ctx context.Context) error
	Dirty() bool
}

const editHelp = `Commands:
  add <path>...     add local files (.json, .xsd, .xml, .txt)
  rm <id|name>      remove a file
  ls                list files
  status            show name, validation and whether generation is possible
  name <text>       set the project name
  desc [text]       set the description (empty clears it)
  save              save the project
  generate          generate the template and download it
  help              show this help
  exit | quit       leave the editor`

// runREPL reads commands from scanner until EOF or exit and dispatches them
// to s. Handler errors are printed and the loop goes on. Leaving with
// unsaved name or description changes needs a second exit.
func runREPL(ctx context.Context, s editSession, statusFn func() string, scanner *bufio.Scanner, w io.Writer) {
	warned := false
	for {
		fmt.Fprintf(w, "vmgen %s> ", statusFn())
		if !scanner.Scan() {
			fmt.Fprintln(w)
			return
		}
		cmd, rest, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		rest = strings.TrimSpace(rest)
		if cmd == "" {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		var err error
		switch cmd {
		case "help", "?":
			fmt.Fprintln(w, editHelp)

		case "add":
			paths := strings.Fields(rest)
			if len(paths) == 0 {
				fmt.Fprintln(w, "Usage: add <path>...")
				continue
			}
			err = s.Add(ctx, paths)

		case "rm", "remove":
			if rest == "" {
				fmt.Fprintln(w, "Usage: rm <id|name>")
				continue
			}
			err = s.Remove(ctx, rest)

		case "ls", "list":
			err = s.List()

		case "status":
			err = s.Status()

		case "name":
			if rest == "" {
				fmt.Fprintln(w, "Usage: name <text>")
				continue
			}
			s.SetName(rest)

		case "desc", "description":
			s.SetDescription(rest)

		case "save":
			err = s.Save(ctx)

		case "generate", "gen":
			err = s.Generate(ctx)

		case "exit", "quit":
			if s.Dirty() && !warned {
				warned = true
				fmt.Fprintln(w, "Unsaved name or description changes. Run save, or exit again to discard them.")
				continue
			}
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if err != nil {
			fmt.Fprintln(w, "Error:", err)
		}
	}
}
