package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beancount/ast"
	"github.com/shopspring/decimal"
)

// validBookingMethods are the lot-matching strategies §4.3 defines. SIMPLE/FULL
// (the teacher's original two values) are accepted as aliases of STRICT and FIFO
// respectively, so existing option files keep working.
var validBookingMethods = map[string]string{
	"STRICT":  "STRICT",
	"NONE":    "NONE",
	"AVERAGE": "AVERAGE",
	"FIFO":    "FIFO",
	"LIFO":    "LIFO",
	"HIFO":    "HIFO",
	"SIMPLE":  "STRICT",
	"FULL":    "FIFO",
}

// Config holds parsed Beancount options and configuration.
// It's designed to be easily extended as more options are supported.
type Config struct {
	Tolerance     *ToleranceConfig
	BookingMethod string
	RootNames     RootNames
	Documents     []string
}

// NewConfig creates a Config with defaults from Beancount.
func NewConfig() *Config {
	return &Config{
		Tolerance:     NewToleranceConfig(),
		BookingMethod: "STRICT",
		RootNames:     DefaultRootNames(),
	}
}

// configFromAST extracts options from an AST and parses them into a Config.
// Handles the conversion from AST options to the format expected by configFromOptions.
func configFromAST(tree *ast.AST) (*Config, error) {
	options := make(map[string][]string)
	for _, opt := range tree.Options {
		options[opt.Name] = append(options[opt.Name], opt.Value)
	}
	return configFromOptions(options)
}

// configFromOptions parses options map into a Config.
// Supports:
//   - option "inferred_tolerance_default" "CURRENCY:TOLERANCE"
//   - option "inferred_tolerance_multiplier" "0.6"
//   - option "booking_method" "STRICT|NONE|AVERAGE|FIFO|LIFO|HIFO" (also SIMPLE/FULL aliases)
//   - option "name_assets" / "name_liabilities" / "name_equity" / "name_income" / "name_expenses"
//   - option "documents" "path/to/dir" (repeatable)
//
// The account_rounding, infer_tolerance_from_cost, and plugin_processing_mode options are
// recognized but ignored.
func configFromOptions(options map[string][]string) (*Config, error) {
	cfg := NewConfig()

	// Parse tolerance config
	var err error
	cfg.Tolerance, err = parseToleranceConfigFromOptions(options)
	if err != nil {
		return nil, err
	}

	// Parse booking method (use first value if multiple)
	if vals := options["booking_method"]; len(vals) > 0 {
		method, ok := validBookingMethods[strings.ToUpper(vals[0])]
		if !ok {
			return nil, fmt.Errorf("invalid booking_method %q, expected one of STRICT, NONE, AVERAGE, FIFO, LIFO, HIFO", vals[0])
		}
		cfg.BookingMethod = method
	}

	if vals := options["name_assets"]; len(vals) > 0 {
		cfg.RootNames.Assets = vals[0]
	}
	if vals := options["name_liabilities"]; len(vals) > 0 {
		cfg.RootNames.Liabilities = vals[0]
	}
	if vals := options["name_equity"]; len(vals) > 0 {
		cfg.RootNames.Equity = vals[0]
	}
	if vals := options["name_income"]; len(vals) > 0 {
		cfg.RootNames.Income = vals[0]
	}
	if vals := options["name_expenses"]; len(vals) > 0 {
		cfg.RootNames.Expenses = vals[0]
	}

	cfg.Documents = append(cfg.Documents, options["documents"]...)

	return cfg, nil
}

// parseToleranceConfigFromOptions parses tolerance options into ToleranceConfig.
// Supports:
//   - option "inferred_tolerance_default" "*:0.005"
//   - option "inferred_tolerance_default" "USD:0.003"
//   - option "inferred_tolerance_multiplier" "0.6"
//   - option "infer_tolerance_from_cost" "TRUE"
func parseToleranceConfigFromOptions(options map[string][]string) (*ToleranceConfig, error) {
	config := NewToleranceConfig()

	// Parse inferred_tolerance_multiplier (takes precedence over tolerance_multiplier)
	if vals := options["inferred_tolerance_multiplier"]; len(vals) > 0 {
		multiplier, err := decimal.NewFromString(vals[0])
		if err != nil {
			return nil, fmt.Errorf("invalid inferred_tolerance_multiplier %q: %w", vals[0], err)
		}
		config.multiplier = multiplier
	} else if vals := options["tolerance_multiplier"]; len(vals) > 0 {
		// Fallback for legacy option name
		multiplier, err := decimal.NewFromString(vals[0])
		if err != nil {
			return nil, fmt.Errorf("invalid tolerance_multiplier %q: %w", vals[0], err)
		}
		config.multiplier = multiplier
	}

	// Parse inferred_tolerance_default (can appear multiple times for per-currency tolerances)
	// Format: "CURRENCY:TOLERANCE" or "*:TOLERANCE"
	if vals := options["inferred_tolerance_default"]; len(vals) > 0 {
		for _, val := range vals {
			parts := strings.SplitN(val, ":", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("invalid inferred_tolerance_default format %q, expected CURRENCY:TOLERANCE", val)
			}

			currency := strings.TrimSpace(parts[0])
			toleranceStr := strings.TrimSpace(parts[1])

			tolerance, err := decimal.NewFromString(toleranceStr)
			if err != nil {
				return nil, fmt.Errorf("invalid tolerance value in %q: %w", val, err)
			}

			config.defaults[currency] = tolerance
		}
	}

	// Parse infer_tolerance_from_cost (use first value if multiple)
	if vals := options["infer_tolerance_from_cost"]; len(vals) > 0 {
		config.inferFromCost = strings.ToUpper(vals[0]) == "TRUE"
	}

	return config, nil
}

// contextKey is a private type to avoid key collisions in context.
type contextKey struct{}

// WithContext returns a new context with the Config attached.
func (c *Config) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ConfigFromContext retrieves the Config from context.
// Returns a default Config if not found.
func ConfigFromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(contextKey{}).(*Config); ok {
		return cfg
	}
	return NewConfig()
}
