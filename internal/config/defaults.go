package config

const (
	defaultConfigPath    = "~/.config/entres/config.toml"
	projectConfigName    = "entres.toml"
	defaultMode          = ModeIncremental
	defaultThreshold     = 1.0
	defaultLinkage       = "best_evidence"
	defaultSelection     = SelectionFirst
	defaultPartitionSize = 500
	defaultOutputFormat  = OutputTable
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultComparator    = ComparatorExact
	defaultDerive        = DeriveValue
	defaultRatioMin      = 70
	defaultCosineMin     = 0.8
	defaultEndChars      = 3
	defaultTrueMatch     = 0.9
	defaultFalseMatch    = 0.1
)

// Resolver modes.
const (
	ModeIncremental = "incremental"
	ModePartitioned = "partitioned"
)

// Merge selection policies.
const (
	SelectionFirst = "first"
	SelectionBest  = "best"
)

// Input formats.
const (
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Field comparators.
const (
	ComparatorExact       = "exact"
	ComparatorFold        = "fold"
	ComparatorRatio       = "ratio"
	ComparatorTokenCosine = "token_cosine"
)

// Blocking-key derivations.
const (
	DeriveValue     = "value"
	DeriveFold      = "fold"
	DeriveFirstChar = "first_char"
	DeriveLastChar  = "last_char"
	DeriveEndChars  = "end_chars"
)

// Default returns a Config populated with repository defaults. It carries no
// fields; a usable configuration always defines at least one.
func Default() Config {
	return Config{
		Resolver: Resolver{
			Mode:          defaultMode,
			Threshold:     defaultThreshold,
			Linkage:       defaultLinkage,
			Selection:     defaultSelection,
			PartitionSize: defaultPartitionSize,
		},
		Output: Output{
			Format: defaultOutputFormat,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
