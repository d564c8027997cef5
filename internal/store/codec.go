package store

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"pawfeed-backend/internal/models"

	"github.com/mitchellh/mapstructure"
)

// timeWire is the timestamp form records store: UTC RFC3339 with the
// fractional second padded to nine digits. Fixed width, so ordering the text
// (as both backends do) orders chronologically; RFC3339Nano would trim
// trailing zeros and misorder sub-second values.
const timeWire = "2006-01-02T15:04:05.000000000Z07:00"

// Decode maps a raw record onto a typed model. Timestamps are parsed from
// their RFC3339 wire form and references from "{collection}/{id}".
func Decode(rec Record, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
			refDecodeHook,
		),
		Result: out,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(rec)); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}

// Encode converts a typed model into a raw record via its JSON form, so
// timestamps and references use the same wire encoding the store queries by.
func Encode(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	for k, v := range rec {
		rec[k] = normalizeTimes(v)
	}
	return rec, nil
}

// normalizeTimes rewrites timestamp strings into the fixed-width wire form,
// recursing into nested values.
func normalizeTimes(v any) any {
	switch t := v.(type) {
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return ts.UTC().Format(timeWire)
		}
		return t
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeTimes(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = normalizeTimes(val)
		}
		return t
	default:
		return v
	}
}

// refDecodeHook converts "{collection}/{id}" strings into models.Ref. The
// empty string maps to the zero reference for legacy records.
func refDecodeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(models.Ref{}) {
		return data, nil
	}
	s := data.(string)
	if s == "" {
		return models.Ref{}, nil
	}
	return models.ParseRef(s)
}

// fieldValue renders a query value in the same textual form the record's
// JSON encoding uses, so field comparisons behave identically across
// backends.
func fieldValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case models.Ref:
		return t.String()
	case time.Time:
		return t.UTC().Format(timeWire)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}
