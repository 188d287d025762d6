package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	formguard "github.com/goliatone/go-formguard"
	"github.com/goliatone/go-formguard/internal/tui"
	"github.com/goliatone/go-formguard/pkg/controller"
	"github.com/goliatone/go-formguard/pkg/dom"
)

// newDriver is swapped in tests.
var newDriver = tui.NewSurveyDriver

func newFillCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill PAGE",
		Short: "Fill a page's public form interactively, then submit it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load(cmd)
			if err != nil {
				return err
			}
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open page: %w", err)
			}
			defer file.Close()
			doc, err := dom.Parse(file)
			if err != nil {
				return fmt.Errorf("parse page: %w", err)
			}

			validator := newValidator(cfg)
			ctrl := controller.New(controllerOptions(cfg, validator, logger)...)
			if err := ctrl.Init(doc); err != nil {
				return err
			}
			defer ctrl.Teardown()

			form := formguard.PublicForm(doc, ctrl.Gate().FormClass())
			if form == nil {
				return formguard.ErrNoPublicForm
			}
			filler := &tui.Filler{Driver: newDriver(), Validator: validator, Logger: logger}
			values, err := filler.Fill(cmd.Context(), doc, form)
			if errors.Is(err, tui.ErrAborted) {
				return nil
			}
			if err != nil {
				return err
			}

			replay, err := formguard.Submit(doc, ctrl.Gate(), values)
			if err != nil {
				return err
			}
			writeReport(cmd.OutOrStdout(), replay.Attempt, root.noColor)
			if !replay.Proceed {
				return ErrBlocked
			}
			return nil
		},
	}
	return cmd
}
