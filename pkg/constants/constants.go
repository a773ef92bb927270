// Package constants provides shared constants for the rental-portfolio application.
package constants

// MonthLayout is the month-bucket key format used by trend reports.
const MonthLayout = "2006-01"

// DateLayout is the canonical date format for records and report ranges.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// MonthsPerQuarter is the number of months in a calendar quarter
	MonthsPerQuarter = 3

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyPlaces is the number of decimal places kept for currency values
	CurrencyPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// DaysPerYear is the average year length used for holding-period math
	DaysPerYear = 365.25
)

// Investment assumptions. Every value is overridable through configuration.
const (
	// DefaultDownPaymentRatio is the assumed share of the purchase price paid in cash
	DefaultDownPaymentRatio = 0.20

	// DefaultTaxBracket is the marginal income tax rate applied to depreciation
	DefaultTaxBracket = 0.24

	// DefaultDepreciationYears is the residential rental recovery period
	DefaultDepreciationYears = 27.5

	// DefaultIRRHorizonYears caps the number of annual cash flows in an IRR vector
	DefaultIRRHorizonYears = 30
)

// IRR solver bounds
const (
	// DefaultIRRLowerBound is the lowest discount rate searched
	DefaultIRRLowerBound = -0.99

	// DefaultIRRUpperBound is the highest discount rate searched
	DefaultIRRUpperBound = 10.0

	// DefaultIRRMaxIterations is the bisection iteration budget
	DefaultIRRMaxIterations = 1000

	// DefaultIRRTolerance is the convergence tolerance on NPV and bracket width
	DefaultIRRTolerance = 1e-6
)

// MaxAmortizationMonths bounds the term of a generated amortization schedule (100 years)
const MaxAmortizationMonths = 1200

// Refinance policy defaults
const (
	// DefaultClosingCosts is applied to refinance scenarios that omit closing costs
	DefaultClosingCosts = 5000.0

	// DefaultGoodBreakEvenFraction is the share of the remaining term within which a
	// break-even is considered good
	DefaultGoodBreakEvenFraction = 0.5
)

// Debt paydown defaults
const (
	// DefaultMaxPayoffMonths is the simulation cap; anything longer is treated as
	// effectively unpayable
	DefaultMaxPayoffMonths = 600

	// DefaultOptimizerMaxIterations bounds the extra-payment search
	DefaultOptimizerMaxIterations = 60
)

// Alert windows
const (
	// DefaultLeaseWindowDays is how far ahead lease expirations are reported
	DefaultLeaseWindowDays = 60

	// DefaultInsuranceWindowDays is how far ahead insurance renewals are reported
	DefaultInsuranceWindowDays = 30
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (1 MB)
	DefaultMaxUploadSizeBytes int64 = 1024 * 1024

	// DefaultServiceName identifies the process in traces and metrics
	DefaultServiceName = "rental-portfolio"
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// BalanceEpsilon is treated as a fully repaid balance in simulations
	BalanceEpsilon = 0.005
)
