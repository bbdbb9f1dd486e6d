package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/learnpath/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import plans and log entries from JSON",
		Long:  "Import data produced by export, from a file or stdin. Records merge by id with the newer copy winning unless --replace is set.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	cmd.Flags().Bool("replace", false, "Replace all stored data instead of merging")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	replace, _ := cmd.Flags().GetBool("replace")

	var r io.Reader = os.Stdin
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open", err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		exitErr("read input", err)
	}

	var blob model.Blob
	if err := json.Unmarshal(data, &blob); err != nil {
		exitErr("parse json", err)
	}

	e := setup(cmd.Context())
	defer e.Close()

	res, err := e.store.Import(cmd.Context(), blob, replace)
	if err != nil {
		exitErr("import", err)
	}
	e.checkWrite("import")

	output(cmd.OutOrStdout(), res, func(w io.Writer) {
		fmt.Fprintf(w, "imported %d plans and %d log entries, skipped %d\n", res.Plans, res.LogEntries, res.Skipped)
	})
}
