package pipeline

import (
	"fmt"

	"entres/internal/config"
	"entres/internal/record"
	"entres/internal/textutil"
)

// SchemaName is the name given to schemas built from configuration.
const SchemaName = "record"

// BuildSchema derives the record schema described by cfg. Every field holds
// string values.
func BuildSchema(cfg *config.Config, opts ...record.SchemaOption) (*record.Schema, error) {
	if cfg == nil {
		return nil, Wrap(ErrConfiguration, "build", "schema", "config is nil", nil)
	}
	fields := make([]record.Field, 0, len(cfg.Fields))
	for _, fc := range cfg.Fields {
		f, err := buildField(fc)
		if err != nil {
			return nil, Wrap(ErrConfiguration, "build", "field "+fc.Name, "", err)
		}
		fields = append(fields, f)
	}

	keys := make([]record.BlockingKey, 0, len(cfg.BlockingKeys))
	for _, kc := range cfg.BlockingKeys {
		derive, err := deriveFunc(kc)
		if err != nil {
			return nil, Wrap(ErrConfiguration, "build", "blocking key "+kc.Name, "", err)
		}
		keys = append(keys, record.BlockingKey{Name: kc.Name, Derive: derive})
	}

	schema, err := record.NewSchema(SchemaName, fields, keys, opts...)
	if err != nil {
		return nil, Wrap(ErrConfiguration, "build", "schema", "", err)
	}
	return schema, nil
}

func buildField(fc config.Field) (record.Field, error) {
	opts := []record.FieldOption{record.WithProbabilities(fc.TrueMatchProbability, fc.FalseMatchProbability)}
	if fc.Exclude {
		opts = append(opts, record.Excluded())
	}
	minimum := fc.MinSimilarity
	switch fc.Comparator {
	case config.ComparatorExact:
		return record.NewExactField[string](fc.Name, opts...)
	case config.ComparatorFold:
		return record.NewField(fc.Name, textutil.EqualFold, opts...)
	case config.ComparatorRatio:
		return record.NewField(fc.Name, func(a, b string) bool {
			return textutil.Ratio(a, b) >= minimum
		}, opts...)
	case config.ComparatorTokenCosine:
		return record.NewField(fc.Name, func(a, b string) bool {
			return textutil.TokenCosine(a, b) >= minimum
		}, opts...)
	default:
		return nil, fmt.Errorf("unsupported comparator %q", fc.Comparator)
	}
}

func deriveFunc(kc config.BlockingKey) (func(record.Values) (string, bool), error) {
	field := kc.Field
	var transform func(string) string
	switch kc.Derive {
	case config.DeriveValue:
		transform = func(s string) string { return s }
	case config.DeriveFold:
		transform = textutil.Fold
	case config.DeriveFirstChar:
		transform = func(s string) string { return firstRunes(s, 1) }
	case config.DeriveLastChar:
		transform = func(s string) string { return lastRunes(s, 1) }
	case config.DeriveEndChars:
		n := kc.Length
		if n < 1 {
			return nil, fmt.Errorf("end_chars length must be positive, got %d", n)
		}
		transform = func(s string) string { return endRunes(s, n) }
	default:
		return nil, fmt.Errorf("unsupported derive %q", kc.Derive)
	}
	return func(v record.Values) (string, bool) {
		raw := v.String(field)
		if raw == "" {
			return "", false
		}
		out := transform(raw)
		return out, out != ""
	}, nil
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// endRunes joins the first and last n runes; short values are kept whole.
func endRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= 2*n {
		return s
	}
	return string(r[:n]) + string(r[len(r)-n:])
}
