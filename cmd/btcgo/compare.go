package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/rgehrsitz/btcgo/internal/breakeven"
	"github.com/rgehrsitz/btcgo/internal/compare"
	"github.com/rgehrsitz/btcgo/internal/transform"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare [plan-file]",
	Short: "Compare a plan against template variants or across scenarios",
	Long: `Compare a retirement plan against variants produced by templates, or
run it under the bull, base and bear scenarios side by side.

Examples:
  btcgo compare --with retire_later_5,double_dca --price 100000
  btcgo compare plan.yaml --scenarios --format csv
  btcgo compare plan.yaml --apply postpone_retirement:years=3 --with swr_3pct
  btcgo compare --list-templates`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if list, _ := cmd.Flags().GetBool("list-templates"); list {
			fmt.Fprint(cmd.OutOrStdout(), transform.GetTemplateHelp(transform.CreateBuiltInTemplates()))
			return
		}

		byScenario, _ := cmd.Flags().GetBool("scenarios")
		templatesStr, _ := cmd.Flags().GetString("with")
		templateNames := transform.ParseTemplateList(templatesStr)
		if !byScenario && len(templateNames) == 0 {
			log.Fatal("--with flag is required to specify templates to compare (or use --scenarios or --list-templates)")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			log.Fatal(err)
		}
		plan, err := buildPlan(cmd, cfg, args)
		if err != nil {
			log.Fatal(err)
		}
		specs, _ := cmd.Flags().GetStringArray("apply")
		if len(specs) > 0 {
			registry := transform.NewTransformRegistry()
			transforms := make([]transform.PlanTransform, 0, len(specs))
			for _, spec := range specs {
				t, err := registry.ParseTransformSpec(spec)
				if err != nil {
					log.Fatal(err)
				}
				transforms = append(transforms, t)
			}
			if plan, err = transform.ApplyTransforms(plan, transforms); err != nil {
				log.Fatal(err)
			}
		}

		compareEngine := compare.NewCompareEngine(newEngine(cmd, cfg))
		ctx := context.Background()

		var comparisonSet *compare.ComparisonSet
		if byScenario {
			comparisonSet, err = compareEngine.CompareScenarios(ctx, plan)
		} else {
			baseName, _ := cmd.Flags().GetString("base")
			comparisonSet, err = compareEngine.Compare(ctx, plan, compare.CompareOptions{
				BaseName:  baseName,
				Templates: templateNames,
			})
		}
		if err != nil {
			log.Fatalf("Comparison failed: %v", err)
		}
		if len(args) > 0 {
			comparisonSet.ConfigPath = args[0]
		}

		outputFormat, _ := cmd.Flags().GetString("format")
		switch strings.ToLower(outputFormat) {
		case "csv":
			formatter := &compare.CSVFormatter{}
			out, err := formatter.Format(comparisonSet)
			if err != nil {
				log.Fatalf("Failed to format CSV: %v", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)

		case "json":
			outcomes, _ := cmd.Flags().GetBool("outcomes")
			formatter := &compare.JSONFormatter{Pretty: true, IncludeOutcomes: outcomes}
			out, err := formatter.Format(comparisonSet)
			if err != nil {
				log.Fatalf("Failed to format JSON: %v", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)

		case "table", "console", "":
			formatter := &compare.TableFormatter{}
			if compact, _ := cmd.Flags().GetBool("compact"); compact {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCompact(comparisonSet))
			} else {
				fmt.Fprint(cmd.OutOrStdout(), formatter.Format(comparisonSet))
			}

		default:
			log.Fatalf("Unknown output format: %s (valid: table, csv, json)", outputFormat)
		}
	},
}

var breakEvenCmd = &cobra.Command{
	Use:   "break-even [plan-file]",
	Short: "Solve for the BTC needed or the income a plan can sustain",
	Long: `Search for the value that makes a plan exactly last to life expectancy.

Targets:
  required_btc    bitcoin needed today to fund the target income
  max_withdrawal  highest yearly income (today's money) the current stack funds

Examples:
  btcgo break-even --target required_btc --price 100000
  btcgo break-even plan.yaml --target max_withdrawal --all-scenarios`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		targetStr, _ := cmd.Flags().GetString("target")
		target, err := breakeven.ParseSolveTarget(targetStr)
		if err != nil {
			log.Fatal(err)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			log.Fatal(err)
		}
		plan, err := buildPlan(cmd, cfg, args)
		if err != nil {
			log.Fatal(err)
		}

		maxIter, _ := cmd.Flags().GetInt("max-iterations")
		tolerance, err := decimalFlag(cmd, "tolerance")
		if err != nil {
			log.Fatal(err)
		}
		opts := breakeven.DefaultSolverOptions()
		if maxIter > 0 {
			opts.MaxIterations = maxIter
		}
		if tolerance.IsPositive() {
			opts.Tolerance = tolerance
		}
		solver := breakeven.NewSolver(newEngine(cmd, cfg), opts)
		ctx := context.Background()

		outputFormat, _ := cmd.Flags().GetString("format")
		asJSON := strings.EqualFold(outputFormat, "json")
		table := &breakeven.TableFormatter{}
		jsonFmt := &breakeven.JSONFormatter{}

		var out string
		if all, _ := cmd.Flags().GetBool("all-scenarios"); all {
			sweep, err := solver.SolveAcrossScenarios(ctx, plan, target)
			if err != nil {
				log.Fatal(err)
			}
			if asJSON {
				out, err = jsonFmt.FormatSweep(sweep)
			} else {
				out = table.FormatSweep(sweep)
			}
			if err != nil {
				log.Fatal(err)
			}
		} else {
			result, err := solver.Solve(ctx, breakeven.Request{
				Plan:          plan,
				Target:        target,
				MaxIterations: opts.MaxIterations,
				Tolerance:     opts.Tolerance,
			})
			if err != nil {
				log.Fatal(err)
			}
			if asJSON {
				out, err = jsonFmt.Format(result)
			} else {
				out = table.Format(result)
			}
			if err != nil {
				log.Fatal(err)
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
	},
}

func initCompareCommands() {
	addPlanFlags(compareCmd)
	compareCmd.Flags().String("base", "", "Label for the unmodified plan (default: the plan name)")
	compareCmd.Flags().String("with", "", "Comma-separated list of templates to compare")
	compareCmd.Flags().Bool("scenarios", false, "Compare the plan under bull, base and bear instead of templates")
	compareCmd.Flags().StringArray("apply", nil, "Transforms applied to the base plan first, e.g. set_inflation:rate=0.04")
	compareCmd.Flags().Bool("list-templates", false, "List all available comparison templates")
	compareCmd.Flags().Bool("compact", false, "One line per variant in table output")
	compareCmd.Flags().Bool("outcomes", false, "Include each variant's full simulation in JSON output")

	addPlanFlags(breakEvenCmd)
	breakEvenCmd.Flags().String("target", string(breakeven.TargetRequiredBTC), "What to solve for (required_btc, max_withdrawal)")
	breakEvenCmd.Flags().Bool("all-scenarios", false, "Solve under every scenario")
	breakEvenCmd.Flags().Int("max-iterations", 0, "Solver iteration limit (default 100)")
	breakEvenCmd.Flags().Float64("tolerance", 0, "Relative convergence tolerance (default 1e-6)")

	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(breakEvenCmd)
}
