package cli

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	formguard "github.com/goliatone/go-formguard"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	var sets []string
	var output string
	cmd := &cobra.Command{
		Use:   "check PAGE",
		Short: "Submit a page headlessly and report field validation",
		Long: `check fills the first public form of PAGE with the --set values,
dispatches submit through the gate and reports every required field.
It exits non-zero when the submission is blocked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load(cmd)
			if err != nil {
				return err
			}
			values, err := parseSets(sets)
			if err != nil {
				return err
			}
			page, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open page: %w", err)
			}
			defer page.Close()

			replay, err := formguard.ReplayPage(page, values, controllerOptions(cfg, newValidator(cfg), logger)...)
			if err != nil {
				return err
			}
			writeReport(cmd.OutOrStdout(), replay.Attempt, root.noColor)

			if output != "" {
				if err := os.WriteFile(output, []byte(replay.Document.String()), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
			}
			if !replay.Proceed {
				return ErrBlocked
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as name=value (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the resulting page, with annotations, to this file")
	return cmd
}

// parseSets turns name=value pairs into form values. Repeated names append,
// which is how checkbox groups are filled.
func parseSets(sets []string) (url.Values, error) {
	values := url.Values{}
	for _, set := range sets {
		name, value, ok := strings.Cut(set, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.New("--set expects name=value, got " + set)
		}
		values.Add(name, value)
	}
	return values, nil
}
