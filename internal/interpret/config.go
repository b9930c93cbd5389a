package interpret

const (
	DefaultConfidenceFloor = 0.2
	DefaultCurrencyUnit    = "USD"
	DefaultAgentName       = "Watson"
)

// Config holds the constants interpretation depends on. ConfidenceFloor is
// exclusive: an intent must score strictly above it to be acted on.
type Config struct {
	ConfidenceFloor float64
	DefaultCurrency string
	DefaultAgent    string
}

func DefaultConfig() Config {
	return Config{
		ConfidenceFloor: DefaultConfidenceFloor,
		DefaultCurrency: DefaultCurrencyUnit,
		DefaultAgent:    DefaultAgentName,
	}
}

func (c Config) withDefaults() Config {
	if c.ConfidenceFloor <= 0 {
		c.ConfidenceFloor = DefaultConfidenceFloor
	}
	if c.DefaultCurrency == "" {
		c.DefaultCurrency = DefaultCurrencyUnit
	}
	return c
}
