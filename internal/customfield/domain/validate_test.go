package domain

import "testing"

func TestValidateValue(t *testing.T) {
	tests := []struct {
		name    string
		field   CustomField
		raw     string
		want    string
		wantErr bool
	}{
		{"number", CustomField{Type: FieldNumber}, "3.50", "3.5", false},
		{"number invalid", CustomField{Type: FieldNumber}, "three", "", true},
		{"number NaN", CustomField{Type: FieldNumber}, "NaN", "", true},
		{"number infinity", CustomField{Type: FieldNumber}, "-Inf", "", true},
		{"date", CustomField{Type: FieldDate}, "2024-03-09", "2024-03-09", false},
		{"date from timestamp", CustomField{Type: FieldDate}, "2024-03-09T10:00:00Z", "2024-03-09", false},
		{"date invalid", CustomField{Type: FieldDate}, "09/03/2024", "", true},
		{"select", CustomField{Type: FieldSelect, Options: StringArray{"a", "b"}}, "b", "b", false},
		{"select unknown", CustomField{Type: FieldSelect, Options: StringArray{"a", "b"}}, "c", "", true},
		{"multiselect dedupes", CustomField{Type: FieldMultiSelect, Options: StringArray{"a", "b"}}, `["a","b","a"]`, `["a","b"]`, false},
		{"multiselect unknown", CustomField{Type: FieldMultiSelect, Options: StringArray{"a"}}, `["z"]`, "", true},
		{"checkbox", CustomField{Type: FieldCheckbox}, "1", "true", false},
		{"url", CustomField{Type: FieldURL}, "https://example.com/x", "https://example.com/x", false},
		{"url without scheme", CustomField{Type: FieldURL}, "example.com", "", true},
		{"empty is passed through", CustomField{Type: FieldNumber}, "  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.field.Name = tt.name
			got, err := ValidateValue(&tt.field, tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateValue() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateValuesRequiredAndForeign(t *testing.T) {
	fields := []*CustomField{
		{ID: "f1", Name: "Estimate", Type: FieldNumber, Required: true},
		{ID: "f2", Name: "Approved", Type: FieldCheckbox, Required: true},
	}

	if _, err := ValidateValues(fields, map[string]string{}); err == nil {
		t.Error("missing required Estimate should fail")
	}
	if _, err := ValidateValues(fields, map[string]string{"f1": "2", "zz": "x"}); err == nil {
		t.Error("value for a field from another board should fail")
	}

	got, err := ValidateValues(fields, map[string]string{"f1": "2.0"})
	if err != nil {
		t.Fatalf("ValidateValues() error = %v", err)
	}
	if got["f1"] != "2" {
		t.Errorf("f1 = %q, want canonical 2", got["f1"])
	}
}
