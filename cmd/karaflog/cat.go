package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/five82/karaflog/internal/app"
)

func newCatCmd() *cobra.Command {
	var opts app.CatOptions

	cmd := &cobra.Command{
		Use:   "cat [flags] FILE",
		Short: "Print the records of a log file and exit",
		Long: `Parse a whole Karaf log file once and print the records that pass the
filters, colored by level when writing to a terminal. Use - to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, name, err := openInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer func() { _ = in.Close() }()

			opts.Name = name
			_, err = app.Cat(cmd.OutOrStdout(), in, opts)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Level, "level", "", "lowest level shown: trace, debug, info, warn, error")
	flags.StringVar(&opts.Filter, "filter", "", "only print records matching this regular expression")
	flags.StringVar(&opts.Search, "search", "", "only print records containing this text (case-insensitive)")
	return cmd
}

// openInput opens path, or stdin for "-".
func openInput(path string, stdin io.Reader) (io.ReadCloser, string, error) {
	if path == "-" {
		return io.NopCloser(stdin), "stdin", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	return f, path, nil
}
