package validation

import (
	"strings"
	"testing"
)

type sourceConfig struct {
	Input string `validate:"source"`
}

type tagConfig struct {
	Variant   string  `validate:"oneof=basic refined heuristic"`
	Threshold int     `validate:"gte=0"`
	Ratio     float64 `validate:"gt=1"`
	Job       string  `validate:"required"`
}

func TestSourceTag(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"", true},
		{"-", true},
		{"paths.txt", true},
		{"/data/ribs/2018-01-01.txt.sz", true},
		{"s3://ribs/2018/paths.txt", true},
		{"s3://ribs", false},
		{"s3:///paths.txt", false},
		{"nng+tcp://127.0.0.1:40899", true},
		{"nng+ipc:///tmp/collector.ipc", true},
		{"nng+inproc://collector", true},
		{"nng+tcp://", false},
		{"http://example.com/paths.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := Struct(&sourceConfig{Input: tt.input})
			if (err == nil) != tt.valid {
				t.Errorf("Struct(source=%q) error = %v, want valid=%v", tt.input, err, tt.valid)
			}
		})
	}
}

func TestStructTags(t *testing.T) {
	valid := tagConfig{Variant: "heuristic", Threshold: 1, Ratio: 60, Job: "asrel"}
	if err := Struct(&valid); err != nil {
		t.Fatalf("Struct(valid) = %v", err)
	}

	invalid := tagConfig{Variant: "gao", Threshold: -1, Ratio: 1}
	err := Struct(&invalid)
	if err == nil {
		t.Fatal("Expected error for invalid config")
	}

	msg := err.Error()
	for _, want := range []string{"Variant", "must be one of", "Threshold", "at least 0", "Ratio", "greater than 1", "Job", "required"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not contain %q", msg, want)
		}
	}
}

func TestStructNil(t *testing.T) {
	if err := Struct(nil); err == nil {
		t.Error("Expected error for nil value")
	}
}
