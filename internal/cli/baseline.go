package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"cinderapi/internal/baseline"
)

func (a *app) baselineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage stored plan baselines",
		Long: `Baselines are saved with "compile --baseline NAME" and compared with
"compile --detect-drift NAME". They hold redacted directive states and
digests of secrets, never the secrets themselves.`,
	}

	var jsonOutput bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored baselines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBaselineList(jsonOutput)
		},
	}
	list.Flags().BoolVar(&jsonOutput, "json", false, "print as JSON")

	show := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a stored baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBaselineShow(args[0])
		},
	}

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBaselineDelete(args[0])
		},
	}

	cmd.AddCommand(list, show, del)
	return cmd
}

func (a *app) store() *baseline.Store {
	return baseline.NewStore(baseline.ResolveDir(a.environ))
}

func notFound(name string, err error) error {
	if errors.Is(err, baseline.ErrBaselineNotFound) {
		return &exitError{code: ExitBaselineNotFound, err: fmt.Errorf("baseline not found: %s", name)}
	}
	return err
}

func (a *app) runBaselineList(jsonOutput bool) error {
	summaries, err := a.store().List()
	if err != nil {
		return fmt.Errorf("cannot list baselines: %w", err)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			return fmt.Errorf("cannot serialize baselines: %w", err)
		}
		fmt.Fprintln(a.stdout, string(data))
		return nil
	}

	if len(summaries) == 0 {
		fmt.Fprintln(a.stdout, "No baselines found")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(a.stdout, "%s  %s  %d directive(s)  %s\n",
			s.Name, s.PlanVersion, s.Directives, s.Timestamp.Format(time.RFC3339))
	}
	return nil
}

func (a *app) runBaselineShow(name string) error {
	b, err := a.store().Load(name)
	if err != nil {
		return notFound(name, err)
	}

	fmt.Fprintf(a.stdout, "Baseline:    %s\n", b.Name)
	fmt.Fprintf(a.stdout, "PlanVersion: %s\n", b.PlanVersion)
	if b.Source != "" {
		fmt.Fprintf(a.stdout, "Source:      %s\n", b.Source)
	}
	fmt.Fprintf(a.stdout, "Created:     %s\n", b.Timestamp.Format(time.RFC3339))

	ids := make([]string, 0, len(b.States))
	for id := range b.States {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(a.stdout, "  %s %s\n", id, b.States[id])
	}
	return nil
}

func (a *app) runBaselineDelete(name string) error {
	if err := a.store().Delete(name); err != nil {
		return notFound(name, err)
	}
	fmt.Fprintf(a.stdout, "Deleted baseline: %s\n", name)
	return nil
}
