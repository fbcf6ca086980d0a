package manifest

import (
	"testing"

	"github.com/Masterminds/semver/v3"
)

func TestParseVersionFilter(t *testing.T) {
	tests := []struct {
		testName string // description of this test case
		// Named input parameters for target function.
		s        string
		match    []string
		mismatch []string
		wantErr  bool
	}{
		{
			testName: "major.minor matches any patch",
			s:        "8.4",
			match:    []string{"8.4.0", "8.4.15", "8.4.99"},
			mismatch: []string{"8.3.20", "8.5.0", "9.4.0"},
		},
		{
			testName: "full version is exact",
			s:        "8.4.15",
			match:    []string{"8.4.15"},
			mismatch: []string{"8.4.14", "8.4.16", "8.5.15"},
		},
		{
			testName: "patch zero is exact, not absent",
			s:        "8.4.0",
			match:    []string{"8.4.0"},
			mismatch: []string{"8.4.1", "8.4.15"},
		},
		{
			testName: "bare major matches any minor",
			s:        "8",
			match:    []string{"8.0.30", "8.4.15"},
			mismatch: []string{"7.4.33", "9.0.0"},
		},
		{
			testName: "not a version",
			s:        "latest",
			wantErr:  true,
		},
		{
			testName: "too many components",
			s:        "8.4.15.1",
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			got, gotErr := ParseVersionFilter(tt.s)
			if gotErr != nil {
				if !tt.wantErr {
					t.Errorf("ParseVersionFilter() failed: %v", gotErr)
				}
				return
			}
			if tt.wantErr {
				t.Fatal("ParseVersionFilter() succeeded unexpectedly")
			}

			for _, v := range tt.match {
				if !got.Match(semver.MustParse(v)) {
					t.Errorf("Match(%v) = false, want true", v)
				}
			}
			for _, v := range tt.mismatch {
				if got.Match(semver.MustParse(v)) {
					t.Errorf("Match(%v) = true, want false", v)
				}
			}
		})
	}
}
