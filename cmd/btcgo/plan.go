package main

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/rgehrsitz/btcgo/internal/calculation"
	"github.com/rgehrsitz/btcgo/internal/config"
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/rgehrsitz/btcgo/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var retireCmd = &cobra.Command{
	Use:   "retire [plan-file]",
	Short: "Plan accumulation until retirement and drawdown after it",
	Long: `Run a retirement plan under one or all price scenarios.

The plan file is YAML with the same keys as the defaults section of the
configuration; omitted keys keep their defaults. Flags override both.

Examples:
  btcgo retire --price 100000
  btcgo retire plan.yaml --scenario bear --macro hostile_reg --price 100000
  btcgo retire --current-btc 0.5 --target-income 60000 --format csv`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			log.Fatal(err)
		}
		plan, err := buildPlan(cmd, cfg, args)
		if err != nil {
			log.Fatal(err)
		}
		engine := newEngine(cmd, cfg)

		scenario, _ := cmd.Flags().GetString("scenario")
		var outcomes []*domain.RetirementOutcome
		if scenario == "" || strings.EqualFold(scenario, "all") {
			outcomes, err = engine.RunScenarios(plan)
		} else {
			var out *domain.RetirementOutcome
			out, err = engine.RunRetirementPlan(plan)
			outcomes = append(outcomes, out)
		}
		if err != nil {
			log.Fatal(err)
		}
		if err := render(cmd, output.RetirementReport(outcomes...)); err != nil {
			log.Fatal(err)
		}
	},
}

// addPlanFlags registers the plan override flags shared by retire, compare
// and break-even.
func addPlanFlags(cmd *cobra.Command) {
	cmd.Flags().String("scenario", "", "Scenario to run (bull, base, bear)")
	cmd.Flags().Float64("current-btc", 0, "Bitcoin held today")
	cmd.Flags().Float64("contribution", 0, "Fiat contributed each period until retirement")
	cmd.Flags().String("frequency", "", "Contribution frequency (weekly, monthly, yearly)")
	cmd.Flags().Int("age", 0, "Current age")
	cmd.Flags().Int("retire-age", 0, "Retirement age")
	cmd.Flags().Int("life-expectancy", 0, "Age the drawdown must last to")
	cmd.Flags().Float64("target-income", 0, "Yearly income in retirement, in today's money")
	cmd.Flags().Float64("inflation", 0, "Annual inflation rate, e.g. 0.03")
	cmd.Flags().Float64("swr", 0, "Safe withdrawal rate, e.g. 0.04")
	cmd.Flags().String("policy", "", "Withdrawal policy (fixed_real, percent_of_balance)")
	cmd.Flags().StringSlice("macro", nil, "Macro event ids applied to their scenario")
}

// buildPlan loads the optional plan file over the configured defaults,
// applies the changed override flags and prices the result.
func buildPlan(cmd *cobra.Command, cfg *domain.Configuration, args []string) (*domain.RetirementPlan, error) {
	plan := cfg.Defaults.DeepCopy()
	if len(args) > 0 {
		var err error
		if plan, err = config.NewInputParser().LoadPlan(args[0], cfg.Defaults); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	decimals := map[string]*decimal.Decimal{
		"current-btc":   &plan.CurrentBTC,
		"contribution":  &plan.ContributionFiat,
		"target-income": &plan.TargetAnnualIncome,
		"inflation":     &plan.InflationRate,
		"swr":           &plan.SafeWithdrawalRate,
	}
	for name, field := range decimals {
		if !flags.Changed(name) {
			continue
		}
		v, err := decimalFlag(cmd, name)
		if err != nil {
			return nil, err
		}
		*field = v
	}
	ints := map[string]*int{
		"age":             &plan.CurrentAge,
		"retire-age":      &plan.RetirementAge,
		"life-expectancy": &plan.LifeExpectancy,
	}
	for name, field := range ints {
		if flags.Changed(name) {
			*field, _ = flags.GetInt(name)
		}
	}

	if flags.Changed("frequency") {
		s, _ := flags.GetString("frequency")
		freq, err := domain.ParseContributionFrequency(s)
		if err != nil {
			return nil, err
		}
		plan.Frequency = freq
	}
	if flags.Changed("policy") {
		s, _ := flags.GetString("policy")
		policy, err := domain.ParseWithdrawalPolicy(s)
		if err != nil {
			return nil, err
		}
		plan.WithdrawalPolicy = policy
	}
	if s, _ := flags.GetString("scenario"); s != "" && !strings.EqualFold(s, "all") {
		name, err := domain.ParseScenarioName(s)
		if err != nil {
			return nil, err
		}
		plan.Scenario = name
	}
	if flags.Changed("macro") {
		plan.MacroEvents, _ = flags.GetStringSlice("macro")
	}

	price, err := referencePrice(cmd, cfg, "")
	if err != nil {
		return nil, err
	}
	plan.ReferencePrice = price
	if plan.StartYear == 0 {
		plan.StartYear = time.Now().Year()
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

var satsCmd = &cobra.Command{
	Use:   "sats",
	Short: "Project a yearly sats stacking table",
	Long: `Stack sats every year until a target age. Contributions are fixed in
sats at today's price and grow by --increase each year.

Examples:
  btcgo sats --contribution 6000 --target-age 55 --price 100000
  btcgo sats --contribution 500 --frequency monthly --scenario bear --price 100000`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			log.Fatal(err)
		}
		req, err := satsRequest(cmd, cfg)
		if err != nil {
			log.Fatal(err)
		}
		if req.ReferencePrice, err = referencePrice(cmd, cfg, ""); err != nil {
			log.Fatal(err)
		}

		res, err := newEngine(cmd, cfg).RunSats(req)
		if err != nil {
			log.Fatal(err)
		}
		if err := render(cmd, output.SatsReport(res)); err != nil {
			log.Fatal(err)
		}
	},
}

// satsRequest builds a stacking request from the flags. Unset ages and
// amounts come from the plan defaults; the price grows at --growth or at the
// scenario's annual rate.
func satsRequest(cmd *cobra.Command, cfg *domain.Configuration) (calculation.SatsProjectionRequest, error) {
	flags := cmd.Flags()
	defaults := cfg.Defaults
	req := calculation.SatsProjectionRequest{
		CurrentAge:   defaults.CurrentAge,
		TargetAge:    defaults.RetirementAge,
		Contribution: defaults.ContributionFiat,
		Frequency:    defaults.Frequency,
	}
	if flags.Changed("age") {
		req.CurrentAge, _ = flags.GetInt("age")
	}
	if flags.Changed("target-age") {
		req.TargetAge, _ = flags.GetInt("target-age")
	}

	var err error
	if flags.Changed("contribution") {
		if req.Contribution, err = decimalFlag(cmd, "contribution"); err != nil {
			return req, err
		}
	}
	if req.InitialFiat, err = decimalFlag(cmd, "initial"); err != nil {
		return req, err
	}
	if req.AnnualIncrease, err = decimalFlag(cmd, "increase"); err != nil {
		return req, err
	}
	if flags.Changed("frequency") {
		s, _ := flags.GetString("frequency")
		if req.Frequency, err = domain.ParseContributionFrequency(s); err != nil {
			return req, err
		}
	}

	if flags.Changed("growth") {
		req.PriceGrowth, err = decimalFlag(cmd, "growth")
		return req, err
	}
	s, _ := flags.GetString("scenario")
	name, err := domain.ParseScenarioName(s)
	if err != nil {
		return req, err
	}
	spec, err := cfg.ScenarioSet().Get(name)
	if err != nil {
		return req, err
	}
	req.PriceGrowth = spec.EffectiveGrowthRate()
	return req, nil
}

var yieldCmd = &cobra.Command{
	Use:   "yield",
	Short: "Simulate a fixed periodic yield on a bitcoin stack",
	Long: `Simulate a fixed yield paid in bitcoin, reinvested fully, partially or
not at all, along a scenario's projected prices.

Examples:
  btcgo yield --initial 50000 --rate 0.01 --periods 10 --price 50000
  btcgo yield --initial 10000 --contribution 200 --reinvest partial:0.5 --scenario bull`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			log.Fatal(err)
		}
		engine := newEngine(cmd, cfg)
		simCfg, err := yieldConfig(cmd, cfg, engine)
		if err != nil {
			log.Fatal(err)
		}
		price, err := referencePrice(cmd, cfg, "")
		if err != nil {
			log.Fatal(err)
		}

		res, err := engine.RunYield(simCfg, price)
		if err != nil {
			log.Fatal(err)
		}
		if err := render(cmd, output.YieldReport(res)); err != nil {
			log.Fatal(err)
		}
	},
}

// yieldConfig builds the simulation from the flags over the yield defaults.
// Without --scenario the price stays flat.
func yieldConfig(cmd *cobra.Command, cfg *domain.Configuration, engine *calculation.CalculationEngine) (domain.YieldSimConfig, error) {
	flags := cmd.Flags()
	defaults := cfg.Yield
	simCfg := domain.YieldSimConfig{
		SimulationConfig: domain.SimulationConfig{
			HorizonPeriods: defaults.HorizonPeriods,
		},
		PeriodicYieldRate: defaults.PeriodicYieldRate,
	}

	var err error
	if simCfg.InitialCapitalFiat, err = decimalFlag(cmd, "initial"); err != nil {
		return simCfg, err
	}
	if simCfg.PeriodicContributionFiat, err = decimalFlag(cmd, "contribution"); err != nil {
		return simCfg, err
	}
	if flags.Changed("rate") {
		if simCfg.PeriodicYieldRate, err = decimalFlag(cmd, "rate"); err != nil {
			return simCfg, err
		}
	}
	if flags.Changed("periods") {
		simCfg.HorizonPeriods, _ = flags.GetInt("periods")
	}

	freq := string(defaults.Frequency)
	if flags.Changed("frequency") {
		freq, _ = flags.GetString("frequency")
	}
	if simCfg.ContributionFrequency, err = domain.ParseContributionFrequency(freq); err != nil {
		return simCfg, err
	}
	reinvest := defaults.Reinvest
	if flags.Changed("reinvest") {
		reinvest, _ = flags.GetString("reinvest")
	}
	if simCfg.Reinvest, err = domain.ParseReinvestPolicy(reinvest); err != nil {
		return simCfg, err
	}

	if s, _ := flags.GetString("scenario"); s != "" {
		name, err := domain.ParseScenarioName(s)
		if err != nil {
			return simCfg, err
		}
		if simCfg.Scenario, err = engine.Scenario(name); err != nil {
			return simCfg, err
		}
	}
	return simCfg, nil
}

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the configured price scenarios and macro events",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			log.Fatal(err)
		}
		if err := render(cmd, scenariosReport(cfg)); err != nil {
			log.Fatal(err)
		}
	},
}

func scenariosReport(cfg *domain.Configuration) *output.Report {
	r := output.NewReport("PRICE SCENARIOS")
	set := cfg.ScenarioSet()

	specs := output.Table{
		Title:   "Scenarios",
		Columns: []string{"Scenario", "Annual Growth", "Anchors", "Description"},
	}
	for _, name := range domain.AllScenarioNames() {
		spec, err := set.Get(name)
		if err != nil {
			continue
		}
		anchors := make([]string, 0, len(spec.Anchors))
		for _, a := range spec.SortedAnchors() {
			anchors = append(anchors, strconv.Itoa(a.Year)+" "+output.FormatCurrency(a.Price))
		}
		specs.Rows = append(specs.Rows, []string{
			name.Title(),
			output.FormatPercentage(spec.EffectiveGrowthRate()),
			strings.Join(anchors, ", "),
			spec.Description,
		})
	}
	r.Tables = append(r.Tables, specs)

	events := output.Table{
		Title:   "Macro events",
		Columns: []string{"ID", "Scenario", "Impact", "Label"},
	}
	for _, ev := range set.Events {
		events.Rows = append(events.Rows, []string{ev.ID, ev.Scenario.Title(), "×" + ev.Impact.String(), ev.Label})
	}
	r.Tables = append(r.Tables, events)
	return r
}

func initPlanCommands() {
	addPlanFlags(retireCmd)

	satsCmd.Flags().Int("age", 0, "Current age (default: plan default)")
	satsCmd.Flags().Int("target-age", 0, "Age to stack until (default: plan retirement age)")
	satsCmd.Flags().Float64("contribution", 0, "Fiat contributed each period (default: plan contribution)")
	satsCmd.Flags().Float64("initial", 0, "Fiat converted to sats today")
	satsCmd.Flags().String("frequency", "", "Contribution frequency (weekly, monthly, yearly)")
	satsCmd.Flags().Float64("increase", 0, "Yearly contribution increase, e.g. 0.05")
	satsCmd.Flags().Float64("growth", 0, "Yearly BTC price growth (default: the scenario's rate)")
	satsCmd.Flags().String("scenario", string(domain.ScenarioBase), "Scenario whose growth rate prices the stack")

	yieldCmd.Flags().Float64("initial", 0, "Fiat converted to BTC at the start")
	yieldCmd.Flags().Float64("contribution", 0, "Fiat bought every period")
	yieldCmd.Flags().Float64("rate", 0, "Yield per period, e.g. 0.004 (default: configuration)")
	yieldCmd.Flags().Int("periods", 0, "Number of periods (default: configuration)")
	yieldCmd.Flags().String("frequency", "", "Period length (weekly, monthly, yearly)")
	yieldCmd.Flags().String("reinvest", "", "Reinvestment policy (full, none, partial:<fraction>)")
	yieldCmd.Flags().String("scenario", "", "Scenario projecting the price (default: flat)")

	rootCmd.AddCommand(retireCmd)
	rootCmd.AddCommand(satsCmd)
	rootCmd.AddCommand(yieldCmd)
	rootCmd.AddCommand(scenariosCmd)
}
