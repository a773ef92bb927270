// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config and the portfolio
// snapshot it points at.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iwvelando/rental-portfolio/internal/paydown"
	"github.com/iwvelando/rental-portfolio/internal/portfolio"
	"github.com/iwvelando/rental-portfolio/internal/refinance"
	"github.com/iwvelando/rental-portfolio/internal/reports"
	"github.com/iwvelando/rental-portfolio/pkg/constants"
	"github.com/iwvelando/rental-portfolio/pkg/finance"
	"github.com/iwvelando/rental-portfolio/pkg/records"
	"github.com/iwvelando/rental-portfolio/pkg/validation"
	"github.com/spf13/viper"
)

// EnvPrefix scopes environment overrides, e.g. PORTFOLIO_PAYDOWN_EXTRAPAYMENT.
const EnvPrefix = "PORTFOLIO"

// Configuration holds all configuration for rental-portfolio.
type Configuration struct {
	Logging     LoggingConfig         `yaml:"logging,omitempty" mapstructure:"logging"`
	Output      OutputConfig          `yaml:"output,omitempty" mapstructure:"output"`
	Portfolio   PortfolioConfig       `yaml:"portfolio" mapstructure:"portfolio"`
	Report      reports.ReportRequest `yaml:"report" mapstructure:"report"`
	Assumptions portfolio.Assumptions `yaml:"assumptions,omitempty" mapstructure:"assumptions"`
	IRR         finance.IRRSettings   `yaml:"irr,omitempty" mapstructure:"irr"`
	Refinance   RefinanceConfig       `yaml:"refinance,omitempty" mapstructure:"refinance"`
	Paydown     PaydownConfig         `yaml:"paydown,omitempty" mapstructure:"paydown"`
	Alerts      AlertsConfig          `yaml:"alerts,omitempty" mapstructure:"alerts"`

	// dir is the directory of the loaded config file; relative paths resolve
	// against it.
	dir string
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, json
}

// PortfolioConfig points at the snapshot file.
type PortfolioConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// RefinanceConfig holds grading thresholds and the scenarios evaluated for
// every mortgage. No scenarios means the default rate/term grid is used.
type RefinanceConfig struct {
	GoodBreakEvenFraction float64              `yaml:"goodBreakEvenFraction,omitempty" mapstructure:"goodBreakEvenFraction"`
	ClosingCosts          float64              `yaml:"closingCosts,omitempty" mapstructure:"closingCosts"`
	Scenarios             []refinance.Scenario `yaml:"scenarios,omitempty" mapstructure:"scenarios"`
}

// PaydownConfig controls the snowball/avalanche simulation.
type PaydownConfig struct {
	ExtraPayment float64 `yaml:"extraPayment,omitempty" mapstructure:"extraPayment"`
	MaxMonths    int     `yaml:"maxMonths,omitempty" mapstructure:"maxMonths"`
	Model        string  `yaml:"model,omitempty" mapstructure:"model"`       // sequential, rolling
	Strategy     string  `yaml:"strategy,omitempty" mapstructure:"strategy"` // strategy used for the payoff target
	TargetMonths int     `yaml:"targetMonths,omitempty" mapstructure:"targetMonths"`
}

// AlertsConfig sets how far ahead lease and insurance dates are reported.
type AlertsConfig struct {
	LeaseWindowDays     int `yaml:"leaseWindowDays,omitempty" mapstructure:"leaseWindowDays"`
	InsuranceWindowDays int `yaml:"insuranceWindowDays,omitempty" mapstructure:"insuranceWindowDays"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.dir = filepath.Dir(configPath)
	configuration.ApplyDefaults()
	return &configuration, nil
}

// ApplyDefaults fills unset values. Validation runs against the values the
// user supplied, so it only touches fields whose zero value has no meaning.
func (c *Configuration) ApplyDefaults() {
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
	if c.Report.Period == "" {
		c.Report.Period = reports.PeriodMonth
	}
	if c.Paydown.MaxMonths == 0 {
		c.Paydown.MaxMonths = constants.DefaultMaxPayoffMonths
	}
	if c.Paydown.Model == "" {
		c.Paydown.Model = string(paydown.ModelSequential)
	}
	if c.Paydown.Strategy == "" {
		c.Paydown.Strategy = string(paydown.Avalanche)
	}
	if c.Alerts.LeaseWindowDays <= 0 {
		c.Alerts.LeaseWindowDays = constants.DefaultLeaseWindowDays
	}
	if c.Alerts.InsuranceWindowDays <= 0 {
		c.Alerts.InsuranceWindowDays = constants.DefaultInsuranceWindowDays
	}
}

// PortfolioAssumptions returns the investment assumptions with the IRR
// solver settings merged in and defaults applied.
func (c *Configuration) PortfolioAssumptions() portfolio.Assumptions {
	assumptions := c.Assumptions
	assumptions.IRR = c.IRR
	return assumptions.Normalize()
}

// RefinancePolicy returns the configured grading policy.
func (c *Configuration) RefinancePolicy() refinance.Policy {
	return refinance.Policy{
		GoodBreakEvenFraction: c.Refinance.GoodBreakEvenFraction,
		DefaultClosingCosts:   c.Refinance.ClosingCosts,
	}.Normalize()
}

// PaydownModel parses the configured simulation model.
func (c *Configuration) PaydownModel() (paydown.Model, error) {
	return paydown.ParseModel(c.Paydown.Model)
}

// PaydownStrategy parses the strategy used for the payoff target.
func (c *Configuration) PaydownStrategy() (paydown.Strategy, error) {
	return paydown.ParseStrategy(c.Paydown.Strategy)
}

// ResolvePath resolves path against the directory of the config file.
func (c *Configuration) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

// LoadSnapshot reads the portfolio file named in the configuration.
func (c *Configuration) LoadSnapshot() (records.Snapshot, error) {
	if c.Portfolio.File == "" {
		return records.Snapshot{}, fmt.Errorf("portfolio.file is not set")
	}
	return LoadSnapshot(c.ResolvePath(c.Portfolio.File))
}

// LoadSnapshot reads a YAML portfolio snapshot from disk.
func LoadSnapshot(path string) (records.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return records.Snapshot{}, fmt.Errorf("error reading portfolio file %s: %w", path, err)
	}
	return records.DecodeYAML(data)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		warnings = append(warnings, err.Error())
	}
	if !reports.ValidPeriod(c.Report.Period) {
		warnings = append(warnings, fmt.Sprintf("Unknown report period %q", c.Report.Period))
	}
	if _, err := c.PaydownModel(); err != nil {
		warnings = append(warnings, err.Error())
	}
	if _, err := c.PaydownStrategy(); err != nil {
		warnings = append(warnings, err.Error())
	}

	scenarios := make([]validation.ScenarioConfig, 0, len(c.Refinance.Scenarios))
	for _, s := range c.Refinance.Scenarios {
		scenarios = append(scenarios, validation.ScenarioConfig{
			Name:         s.Name,
			Rate:         s.Rate,
			TermYears:    s.TermYears,
			ClosingCosts: s.ClosingCosts,
		})
	}

	validator := validation.ConfigValidator{
		Period:      strings.ToLower(strings.TrimSpace(c.Report.Period)),
		CustomStart: c.Report.CustomStart,
		CustomEnd:   c.Report.CustomEnd,
		Assumptions: validation.AssumptionConfig{
			DownPaymentRatio:  c.Assumptions.DownPaymentRatio,
			TaxBracket:        c.Assumptions.TaxBracket,
			DepreciationYears: c.Assumptions.DepreciationYears,
		},
		Scenarios: scenarios,
		Paydown: validation.PaydownConfig{
			ExtraPayment: c.Paydown.ExtraPayment,
			MaxMonths:    c.Paydown.MaxMonths,
			TargetMonths: c.Paydown.TargetMonths,
		},
	}
	return append(warnings, validator.ValidateAll()...)
}
