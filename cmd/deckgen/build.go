package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"deck_srv/internal/statusreport"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newBuildCmd(root *rootOptions) *cobra.Command {
	var (
		file   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a deck from a JSON request",
		Long:  "Build a deck from a JSON request file (or stdin with -f -) and print the result as JSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readRequest(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			b, err := root.builder(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var res statusreport.Result
			if output != "" {
				req, err := statusreport.DecodeRequest(raw)
				if err != nil {
					res = statusreport.Failed(err)
				} else {
					req.OutputPath = output
					res = b.Build(req)
				}
			} else {
				res = statusreport.Invoke(b, raw)
			}

			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}

			if !res.Success {
				fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("Fatal: %s", res.Error))
				return res.Err()
			}
			fmt.Fprintln(cmd.ErrOrStderr(), color.GreenString("✨DONE✨ %s (%d slides)", res.FilePath, res.SlidesCreated))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Request JSON file, - for stdin")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .pptx path (overrides output_path)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func readRequest(stdin io.Reader, file string) ([]byte, error) {
	if file == "" {
		return nil, errors.New("request file is required")
	}
	if file == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	return raw, nil
}
