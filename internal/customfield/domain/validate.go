package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ValidateValue checks raw against the field's type and returns its
// canonical form. An empty raw value is returned unchanged; whether it is
// allowed is decided by ValidateRequired.
func ValidateValue(field *CustomField, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	switch field.Type {
	case FieldText:
		return raw, nil

	case FieldNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return "", fmt.Errorf("%s must be a number", field.Name)
		}
		return strconv.FormatFloat(n, 'f', -1, 64), nil

	case FieldDate:
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			return d.Format("2006-01-02"), nil
		}
		if d, err := time.Parse(time.RFC3339, raw); err == nil {
			return d.UTC().Format("2006-01-02"), nil
		}
		return "", fmt.Errorf("%s must be a date (YYYY-MM-DD)", field.Name)

	case FieldSelect:
		if !contains(field.Options, raw) {
			return "", fmt.Errorf("%s: %q is not one of the options", field.Name, raw)
		}
		return raw, nil

	case FieldMultiSelect:
		var picked []string
		if err := json.Unmarshal([]byte(raw), &picked); err != nil {
			return "", fmt.Errorf("%s must be a list of options", field.Name)
		}
		seen := make(map[string]bool, len(picked))
		out := make([]string, 0, len(picked))
		for _, p := range picked {
			if !contains(field.Options, p) {
				return "", fmt.Errorf("%s: %q is not one of the options", field.Name, p)
			}
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
		b, _ := json.Marshal(out)
		return string(b), nil

	case FieldCheckbox:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return "", fmt.Errorf("%s must be true or false", field.Name)
		}
		return strconv.FormatBool(b), nil

	case FieldURL:
		u, err := url.ParseRequestURI(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "", fmt.Errorf("%s must be an http(s) URL", field.Name)
		}
		return raw, nil
	}
	return "", fmt.Errorf("%s has unknown type %q", field.Name, field.Type)
}

// ValidateRequired reports the first required field without a value.
// Unchecked checkboxes count as answered.
func ValidateRequired(fields []*CustomField, values map[string]string) error {
	for _, f := range fields {
		if !f.Required || f.Type == FieldCheckbox {
			continue
		}
		v := strings.TrimSpace(values[f.ID])
		if v == "" || (f.Type == FieldMultiSelect && v == "[]") {
			return fmt.Errorf("%s is required", f.Name)
		}
	}
	return nil
}

// ValidateValues checks every submitted value against the board's fields and
// the required set, returning canonical values keyed by field ID. Values for
// fields that are not on the board are rejected.
func ValidateValues(fields []*CustomField, values map[string]string) (map[string]string, error) {
	byID := make(map[string]*CustomField, len(fields))
	for _, f := range fields {
		byID[f.ID] = f
	}

	out := make(map[string]string, len(values))
	for id, raw := range values {
		field, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("custom field %s does not belong to this board", id)
		}
		v, err := ValidateValue(field, raw)
		if err != nil {
			return nil, err
		}
		out[id] = v
	}

	if err := ValidateRequired(fields, out); err != nil {
		return nil, err
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
