package main

import (
	"encoding/json"
	"io"

	"deck_srv/internal/statusreport"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	brand   string
	accent  string
	prefix  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "deckgen",
		Short:         "Build branded weekly status report decks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaults := statusreport.DefaultBrand()
	cmd.PersistentFlags().StringVar(&opts.brand, "brand", defaults.Name, "Brand label on every slide")
	cmd.PersistentFlags().StringVar(&opts.accent, "accent", "#"+defaults.Palette.Accent.Hex(), "Accent color as #RRGGBB")
	cmd.PersistentFlags().StringVar(&opts.prefix, "prefix", defaults.FilePrefix, "Prefix of generated file names")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log build progress to stderr")

	cmd.AddCommand(newBuildCmd(opts), newSchemaCmd(opts))
	return cmd
}

// builder creates the deck builder for the brand flags.
func (o *rootOptions) builder(stderr io.Writer) (*statusreport.Builder, error) {
	brand, err := statusreport.NewBrand(o.brand, o.prefix, o.accent)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetLevel(logrus.WarnLevel)
	if o.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return statusreport.NewBuilder(brand, logger), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
