package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formguard/internal/formsource"
)

func newRenderCmd(root *rootOptions) *cobra.Command {
	var openapiPath, operation string
	var validate bool
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a public-form page from an OpenAPI operation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := root.load(cmd)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(openapiPath)
			if err != nil {
				return fmt.Errorf("read %s: %w", openapiPath, err)
			}
			forms, err := formsource.FormsFromOpenAPI(cmd.Context(), data, formsource.OpenAPIOptions{Validate: validate})
			if err != nil {
				return err
			}

			form, ok := forms[operation]
			if !ok {
				if operation == "" && len(forms) == 1 {
					for _, only := range forms {
						form = only
					}
				} else {
					return fmt.Errorf("%w: %q (available: %s)", formsource.ErrUnknownForm, operation, strings.Join(formIDs(forms), ", "))
				}
			}

			renderer, err := newRenderer(cfg)
			if err != nil {
				return err
			}
			return renderer.RenderForm(cmd.OutOrStdout(), form)
		},
	}
	cmd.Flags().StringVar(&openapiPath, "openapi", "", "OpenAPI document (JSON or YAML)")
	cmd.Flags().StringVar(&operation, "operation", "", "operationId to render; optional when the document has one form")
	cmd.Flags().BoolVar(&validate, "validate", false, "Validate the OpenAPI document before rendering")
	_ = cmd.MarkFlagRequired("openapi")
	return cmd
}

func formIDs(forms map[string]formsource.Form) []string {
	ids := make([]string, 0, len(forms))
	for id := range forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
