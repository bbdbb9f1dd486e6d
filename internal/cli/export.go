package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/learnpath/internal/export"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export plans and log entries",
		Long:  "Export the stored data as JSON (the format read by import) or as an xlsx workbook with --format xlsx.",
		Args:  cobra.NoArgs,
		Run:   runExport,
	}

	cmd.Flags().StringP("out", "o", "", "Write to file instead of stdout (required for xlsx)")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	out, _ := cmd.Flags().GetString("out")

	e := setup(cmd.Context())
	defer e.Close()

	blob := e.store.Export(cmd.Context())

	var w io.Writer = cmd.OutOrStdout()
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			exitErr("export", err)
		}
		defer f.Close()
		w = f
	}

	switch formatFlag {
	case "xlsx":
		if out == "" {
			exitErr("export", fmt.Errorf("--out is required for xlsx"))
		}
		if err := export.WriteXLSX(w, blob); err != nil {
			exitErr("export", err)
		}
	default:
		b, err := json.MarshalIndent(blob, "", "  ")
		if err != nil {
			exitErr("export", err)
		}
		fmt.Fprintln(w, string(b))
	}

	if out != "" {
		fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"plans":%d,"log_entries":%d,"out":%q}`+"\n", len(blob.Plans), len(blob.LogEntries), out)
	}
}
