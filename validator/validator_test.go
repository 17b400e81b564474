package validator

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type testName struct {
	Username string `validate:"min=4,max=15,required"`
}

func TestValidator_ValidateStruct(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		input    any
		wantTags []string
	}{
		{"Valid", testName{Username: "ValidName"}, nil},
		{"ShortestValid", testName{Username: "abcd"}, nil},
		{"LongestValid", testName{Username: "abcdefghijklmno"}, nil},
		{"TooShort", testName{Username: "abc"}, []string{"min"}},
		{"TooLong", testName{Username: "abcdefghijklmnop"}, []string{"max"}},
		{"EmptyFailsMinFirst", testName{}, []string{"min"}},
		{"Multibyte", testName{Username: "さくらさん"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateStruct(tt.input)
			var tags []string
			for _, e := range errs {
				if e.Field != "Username" {
					t.Errorf("Got field %q, want Username", e.Field)
				}
				if e.Message == "" {
					t.Error("Got empty message")
				}
				tags = append(tags, e.Tag)
			}
			if diff := cmp.Diff(tt.wantTags, tags); diff != "" {
				t.Errorf("ValidateStruct() tags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidator_Validate(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		value   any
		tag     string
		wantErr bool
	}{
		{"RequiredPresent", "value", "required", false},
		{"RequiredEmpty", "", "required", true},
		{"MinOK", "abcd", "min=4", false},
		{"MinFail", "abc", "min=4", true},
		{"MaxFail", "abcdefghijklmnop", "max=15", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.Validate(tt.value, tt.tag)
			if tt.wantErr && len(errs) == 0 {
				t.Error("Validate() expected errors but got none")
			}
			if !tt.wantErr && len(errs) > 0 {
				t.Errorf("Validate() got unexpected errors: %v", errs)
			}
		})
	}
}

func TestNew(t *testing.T) {
	v := New()
	if v == nil || v.cli == nil {
		t.Error("New() returned invalid validator")
	}
}
