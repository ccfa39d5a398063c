package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cinderapi/internal/artifact"
	"cinderapi/internal/baseline"
	"cinderapi/internal/compiler"
	"cinderapi/internal/drift"
)

type compileOptions struct {
	params         string
	format         string
	output         string
	processorCount int
	baseline       string
	detectDrift    string
	driftJSON      bool
}

func (a *app) compileCommand() *cobra.Command {
	opts := &compileOptions{}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Validate parameters and print the compiled plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCompile(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.params, "params", "p", "", "parameter file, YAML or TOML (env "+EnvParams+")")
	flags.StringVarP(&opts.format, "format", "f", "json", "plan output format: json or yaml")
	flags.StringVarP(&opts.output, "output", "o", "", "write the plan to this file instead of stdout")
	flags.IntVar(&opts.processorCount, "processor-count", a.facts.ProcessorCount, "processor count used when service_workers is unset")
	flags.StringVar(&opts.baseline, "baseline", "", "save the compiled plan as a named baseline")
	flags.StringVar(&opts.detectDrift, "detect-drift", "", "compare the compiled plan against a named baseline")
	flags.BoolVar(&opts.driftJSON, "drift-json", false, "report drift as JSON")

	return cmd
}

// compilePlan resolves, validates and compiles the parameters into a
// versioned plan artifact.
func (a *app) compilePlan(paramsPath string, processorCount int) (artifact.PlanArtifact, string, error) {
	ps, path, err := a.loadParameters(paramsPath)
	if err != nil {
		return artifact.PlanArtifact{}, path, err
	}

	plan, err := compiler.Compile(a.schema, ps, compiler.Facts{ProcessorCount: processorCount})
	if err != nil {
		return artifact.PlanArtifact{}, path, a.reportValidation(err)
	}

	if _, err := plan.Ordered(); err != nil {
		return artifact.PlanArtifact{}, path, fmt.Errorf("compiled plan cannot be ordered: %w", err)
	}

	art, err := artifact.GenerateArtifact(plan)
	if err != nil {
		return artifact.PlanArtifact{}, path, fmt.Errorf("cannot serialize plan: %w", err)
	}

	for _, d := range plan.Directives {
		a.logger.Debug("directive", "id", d.ID(), "directive", d)
	}
	a.logger.Info("compiled plan",
		"directives", len(plan.Directives),
		"service", plan.Service != nil,
		"migration", plan.Migration != nil,
		"validation", plan.Validation != nil,
		"planVersion", art.PlanVersion,
	)
	return art, path, nil
}

func (a *app) runCompile(opts *compileOptions) error {
	if opts.format != "json" && opts.format != "yaml" {
		return fmt.Errorf("unsupported format %q: use json or yaml", opts.format)
	}
	for _, name := range []string{opts.baseline, opts.detectDrift} {
		if name == "" {
			continue
		}
		if err := baseline.CheckName(name); err != nil {
			return err
		}
	}

	art, path, err := a.compilePlan(opts.params, opts.processorCount)
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := art.WriteToFile(opts.output); err != nil {
			return fmt.Errorf("cannot write plan: %s: %w", opts.output, err)
		}
		fmt.Fprintf(a.stderr, "planVersion: %s\n", art.PlanVersion)
	} else {
		var data []byte
		if opts.format == "yaml" {
			data, err = art.ToYAML()
		} else {
			data, err = art.ToJSON()
		}
		if err != nil {
			return fmt.Errorf("cannot serialize plan: %w", err)
		}
		fmt.Fprintln(a.stdout, string(data))
	}

	store := baseline.NewStore(baseline.ResolveDir(a.environ))

	if opts.detectDrift != "" {
		if err := a.reportDrift(store, opts, art); err != nil {
			return err
		}
	}

	if opts.baseline != "" {
		b, err := baseline.New(opts.baseline, art, path, time.Now())
		if err != nil {
			return err
		}
		if err := store.Save(b); err != nil {
			return fmt.Errorf("cannot save baseline: %w", err)
		}
		a.logger.Info("saved baseline", "name", b.Name, "dir", store.Dir)
	}

	return nil
}

// reportDrift compares art against the named baseline. A missing baseline
// is not an error: there is nothing to drift from yet.
func (a *app) reportDrift(store *baseline.Store, opts *compileOptions, art artifact.PlanArtifact) error {
	b, err := store.Load(opts.detectDrift)
	if errors.Is(err, baseline.ErrBaselineNotFound) {
		a.logger.Warn("baseline not found, skipping drift detection", "name", opts.detectDrift)
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot load baseline: %w", err)
	}

	current, err := b.Recapture(art)
	if err != nil {
		return err
	}
	report := drift.Detect(b, current)
	if !report.HasDrift {
		a.logger.Info("no drift", "baseline", b.Name)
		return nil
	}

	switch {
	case opts.driftJSON:
		out, err := drift.FormatJSON(report)
		if err != nil {
			return fmt.Errorf("cannot format drift report: %w", err)
		}
		fmt.Fprintln(a.stderr, out)
	case a.ci:
		fmt.Fprint(a.stderr, drift.FormatCI(report))
	default:
		fmt.Fprint(a.stderr, drift.FormatCLI(report))
	}
	return nil
}
