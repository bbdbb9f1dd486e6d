package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/learnpath/internal/model"
	"github.com/rcliao/learnpath/internal/store"
)

func init() {
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Read and write learning log entries",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List entries, most recently updated first",
		Args:  cobra.NoArgs,
		Run:   runLogList,
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an entry",
		Args:  cobra.ExactArgs(1),
		Run:   runLogShow,
	}

	add := &cobra.Command{
		Use:   "add [body]",
		Short: "Add an entry",
		Long:  "Add an entry. The body can be a positional arg, --body or piped via stdin.",
		Run:   runLogAdd,
	}
	add.Flags().StringP("title", "t", "", "Entry title (default: Untitled)")
	add.Flags().StringP("body", "b", "", "Entry body")

	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an entry's title or body",
		Args:  cobra.ExactArgs(1),
		Run:   runLogEdit,
	}
	edit.Flags().StringP("title", "t", "", "New title")
	edit.Flags().StringP("body", "b", "", "New body")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		Run:   runLogRm,
	}

	logCmd.AddCommand(list, show, add, edit, rm)
	RootCmd.AddCommand(logCmd)
}

func runLogList(cmd *cobra.Command, args []string) {
	e := setup(cmd.Context())
	defer e.Close()

	entries := e.store.GetAllLogEntries(cmd.Context())
	output(cmd.OutOrStdout(), entries, func(w io.Writer) {
		if len(entries) == 0 {
			fmt.Fprintln(w, "no entries")
		}
		for _, en := range entries {
			fmt.Fprintf(w, "%s  %-30s %s\n", en.ID, en.Title, time.UnixMilli(en.UpdatedAt).Format(time.DateTime))
		}
	})
}

func mustLogEntry(e *env, cmd *cobra.Command, id string) model.LogEntry {
	entry, ok := e.store.GetLogEntry(cmd.Context(), id)
	if !ok {
		exitErr("log", fmt.Errorf("not found: %s", id))
	}
	return entry
}

func runLogShow(cmd *cobra.Command, args []string) {
	e := setup(cmd.Context())
	defer e.Close()

	entry := mustLogEntry(e, cmd, args[0])
	output(cmd.OutOrStdout(), entry, func(w io.Writer) {
		fmt.Fprintf(w, "%s\n%s\n\n%s\n", entry.Title, time.UnixMilli(entry.UpdatedAt).Format(time.DateTime), entry.Body)
	})
}

func runLogAdd(cmd *cobra.Command, args []string) {
	title, _ := cmd.Flags().GetString("title")
	body, _ := cmd.Flags().GetString("body")

	if body == "" {
		if len(args) > 0 {
			body = strings.Join(args, " ")
		} else if stat, err := os.Stdin.Stat(); err == nil && stat.Mode()&os.ModeCharDevice == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			body = string(b)
		}
	}
	title, body = strings.TrimSpace(title), strings.TrimSpace(body)
	if title == "" && body == "" {
		exitErr("log add", fmt.Errorf("a title or body is required"))
	}
	if title == "" {
		title = "Untitled"
	}

	e := setup(cmd.Context())
	defer e.Close()

	id := e.store.SaveLogEntry(cmd.Context(), model.LogEntry{Title: title, Body: body})
	e.checkWrite("log add")

	entry, _ := e.store.GetLogEntry(cmd.Context(), id)
	output(cmd.OutOrStdout(), entry, func(w io.Writer) { fmt.Fprintf(w, "added %s\n", id) })
}

func runLogEdit(cmd *cobra.Command, args []string) {
	var u store.LogUpdate
	if cmd.Flags().Changed("title") {
		t, _ := cmd.Flags().GetString("title")
		u.Title = &t
	}
	if cmd.Flags().Changed("body") {
		b, _ := cmd.Flags().GetString("body")
		u.Body = &b
	}
	if u.Title == nil && u.Body == nil {
		exitErr("log edit", fmt.Errorf("pass --title and/or --body"))
	}

	e := setup(cmd.Context())
	defer e.Close()

	id := mustLogEntry(e, cmd, args[0]).ID
	e.store.UpdateLogEntry(cmd.Context(), id, u)
	e.checkWrite("log edit")

	entry, _ := e.store.GetLogEntry(cmd.Context(), id)
	output(cmd.OutOrStdout(), entry, func(w io.Writer) { fmt.Fprintf(w, "updated %s\n", id) })
}

func runLogRm(cmd *cobra.Command, args []string) {
	e := setup(cmd.Context())
	defer e.Close()

	id := mustLogEntry(e, cmd, args[0]).ID
	e.store.DeleteLogEntry(cmd.Context(), id)
	e.checkWrite("log rm")

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q}`+"\n", id)
}
