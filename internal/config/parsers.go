// Package config loads run configuration from flags and an optional config
// file, and validates it before any request is issued.
package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// lookupSetting returns the first candidate key present in settings. Keys are
// also tried lower-cased because viper normalizes them.
func lookupSetting(settings map[string]interface{}, candidates ...string) (interface{}, bool) {
	for _, key := range candidates {
		if val, ok := settings[key]; ok {
			return val, true
		}
		if val, ok := settings[strings.ToLower(key)]; ok {
			return val, true
		}
	}
	return nil, false
}

func asString(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}

func asInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case uint64:
		return int(v), nil
	case uint32:
		return int(v), nil
	case uint:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected whole number, got %v", v)
		}
		return int(v), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, nil
		}
		return strconv.Atoi(s)
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", value)
	}
}

func asFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, nil
		}
		return strconv.ParseFloat(s, 64)
	default:
		return 0, fmt.Errorf("unsupported float type %T", value)
	}
}

func asBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return false, nil
		}
		return strconv.ParseBool(s)
	default:
		return false, fmt.Errorf("unsupported boolean type %T", value)
	}
}

// asDuration accepts Go duration strings; bare numbers are seconds.
func asDuration(value interface{}) (time.Duration, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, nil
		}
		if secs, err := strconv.ParseFloat(s, 64); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
		return time.ParseDuration(s)
	default:
		secs, err := asFloat64(value)
		if err != nil {
			if n, intErr := asInt(value); intErr == nil {
				return time.Duration(n) * time.Second, nil
			}
			return 0, fmt.Errorf("unsupported duration type %T", value)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
}

// toStringKeyMap normalizes a decoded YAML/JSON object to lower-case string keys.
func toStringKeyMap(value interface{}) (map[string]interface{}, error) {
	result := map[string]interface{}{}
	switch v := value.(type) {
	case nil:
		return result, nil
	case map[string]interface{}:
		for key, val := range v {
			result[strings.ToLower(strings.TrimSpace(key))] = val
		}
	case map[interface{}]interface{}:
		for key, val := range v {
			str, err := asString(key)
			if err != nil {
				return nil, err
			}
			result[strings.ToLower(strings.TrimSpace(str))] = val
		}
	default:
		return nil, fmt.Errorf("expected map, got %T", value)
	}
	return result, nil
}

func parseLogConfig(raw interface{}, base LogConfig) (LogConfig, error) {
	fields, err := toStringKeyMap(raw)
	if err != nil {
		return base, err
	}
	out := base
	if v, ok := lookupSetting(fields, "level"); ok {
		s, _ := asString(v)
		out.Level = strings.ToLower(strings.TrimSpace(s))
	}
	if v, ok := lookupSetting(fields, "format"); ok {
		s, _ := asString(v)
		out.Format = strings.ToLower(strings.TrimSpace(s))
	}
	if v, ok := lookupSetting(fields, "file"); ok {
		s, _ := asString(v)
		out.File = strings.TrimSpace(s)
	}
	return out, nil
}

func parseTracingConfig(raw interface{}, base TracingConfig) (TracingConfig, error) {
	fields, err := toStringKeyMap(raw)
	if err != nil {
		return base, err
	}
	out := base
	if v, ok := lookupSetting(fields, "endpoint"); ok {
		s, _ := asString(v)
		out.Endpoint = strings.TrimSpace(s)
	}
	if v, ok := lookupSetting(fields, "protocol"); ok {
		s, _ := asString(v)
		out.Protocol = strings.ToLower(strings.TrimSpace(s))
	}
	if v, ok := lookupSetting(fields, "service_name", "servicename", "service-name"); ok {
		s, _ := asString(v)
		out.ServiceName = strings.TrimSpace(s)
	}
	if v, ok := lookupSetting(fields, "sample_rate", "samplerate", "sample-rate"); ok {
		rate, err := asFloat64(v)
		if err != nil {
			return base, fmt.Errorf("sample_rate: %w", err)
		}
		out.SampleRate = rate
	}
	if v, ok := lookupSetting(fields, "insecure"); ok {
		b, err := asBool(v)
		if err != nil {
			return base, fmt.Errorf("insecure: %w", err)
		}
		out.Insecure = b
	}
	return out, nil
}
