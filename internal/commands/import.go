package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/importer"
)

func newImportCommand() *cobra.Command {
	var format string
	var keep bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Post every action CSV waiting in import/",
		Long: `Import scans <dir>/import/ for CSV files, posts each row as a transaction,
and moves fully processed files to import/processed/. A file that fails to
parse or post is left in place so it can be fixed and retried.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			e, err := openLedger(dir)
			if err != nil {
				return err
			}

			parser := importer.DefaultRegistry().Get(format)
			if parser == nil {
				return fmt.Errorf("unknown import format %q", format)
			}

			files, err := importer.Scan(e.dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println("nothing to import")
				return nil
			}

			for _, file := range files {
				n, err := importFile(e, parser, file)
				if err != nil {
					return fmt.Errorf("%s: %w", file.Name, err)
				}
				if !keep {
					if err := importer.MarkProcessed(e.dir, file.Name); err != nil {
						return err
					}
				}
				fmt.Printf("%s: posted %d transactions\n", file.Name, n)
			}

			e.autoCommit("import action files")
			return nil
		},
	}

	dirFlag(cmd)
	cmd.Flags().StringVar(&format, "format", "actions", "import file format")
	cmd.Flags().BoolVar(&keep, "keep", false, "leave processed files in import/")

	return cmd
}

func importFile(e *env, parser importer.Parser, file importer.FileInfo) (int, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	actions, err := parser.Parse(f)
	if err != nil {
		return 0, err
	}

	for i, a := range actions {
		if _, err := e.svc.Post(a); err != nil {
			return i, fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return len(actions), nil
}
