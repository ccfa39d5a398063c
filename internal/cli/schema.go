package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) schemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the parameter catalog as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.schema.ToYAML()
			if err != nil {
				return fmt.Errorf("cannot serialize schema: %w", err)
			}
			fmt.Fprint(a.stdout, string(data))
			return nil
		},
	}
}
