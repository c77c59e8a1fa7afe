package util

import (
	"errors"
	"reflect"
	"testing"

	"github.com/eagleglass/airsim/pkg/core"
)

func TestTrimQuotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"no quotes", "fuel", "fuel"},
		{"double quoted", `"fuel"`, "fuel"},
		{"single quotes only", "'fuel'", "'fuel'"},
		{"only quotes", `""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TrimQuotes(tt.input)
			if result != tt.expected {
				t.Errorf("TrimQuotes(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseResourceList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []core.ResourceCount
		wantErr  bool
	}{
		{"empty", "", nil, false},
		{"blank", "   ", nil, false},
		{"single", "fuel:30", []core.ResourceCount{{Type: "fuel", Count: 30}}, false},
		{"several with spaces", " fuel : 30 , steel:20", []core.ResourceCount{{Type: "fuel", Count: 30}, {Type: "steel", Count: 20}}, false},
		{"quoted type", `"fuel":5`, []core.ResourceCount{{Type: "fuel", Count: 5}}, false},
		{"zero", "fuel:0", []core.ResourceCount{{Type: "fuel", Count: 0}}, false},
		{"missing count", "fuel", nil, true},
		{"missing type", ":4", nil, true},
		{"negative", "fuel:-1", nil, true},
		{"not a number", "fuel:lots", nil, true},
		{"trailing comma", "fuel:1,", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseResourceList(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidResourceList) {
					t.Fatalf("ParseResourceList(%q) error = %v, want ErrInvalidResourceList", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseResourceList(%q) unexpected error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("ParseResourceList(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFormatResourceList(t *testing.T) {
	list := []core.ResourceCount{{Type: "fuel", Count: 30}, {Type: "steel", Count: 20}}
	if got := FormatResourceList(list); got != "fuel:30, steel:20" {
		t.Errorf("FormatResourceList() = %q", got)
	}
	parsed, err := ParseResourceList(FormatResourceList(list))
	if err != nil || !reflect.DeepEqual(parsed, list) {
		t.Errorf("ParseResourceList(FormatResourceList()) = %v, %v", parsed, err)
	}
	if got := FormatResourceList(nil); got != "" {
		t.Errorf("FormatResourceList(nil) = %q, want empty", got)
	}
}
