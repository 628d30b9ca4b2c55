package policy

import (
	"strings"
	"testing"

	"mercator-hq/sdclint/pkg/lint/diagnostic"
)

func testTable() *Table {
	return &Table{
		Family:    "Twig test",
		Ignore:    []string{"ignore_me"},
		Allow:     []string{"allow_me"},
		Warn:      map[string]string{"warn_me": "This is a warning."},
		Forbid:    map[string]string{"forbid_me": "This is forbidden.", "bare": ""},
		Deprecate: map[string]string{"deprecate_me": "This is deprecated."},
	}
}

func TestTable_Classify(t *testing.T) {
	tests := []struct {
		name        string
		verdict     Verdict
		severity    diagnostic.Severity
		wantMessage string
	}{
		{"ignore_me", Ignore, 0, ""},
		{"allow_me", Allow, 0, ""},
		{"warn_me", Warn, diagnostic.Warning, "Careful with Twig test: 'warn_me'. This is a warning."},
		{"forbid_me", Forbid, diagnostic.Error, "Forbidden Twig test: 'forbid_me'. This is forbidden."},
		{"deprecate_me", Deprecate, diagnostic.Warning, "Deprecated Twig test: 'deprecate_me'. This is deprecated."},
		{"bare", Forbid, diagnostic.Error, "Forbidden Twig test: 'bare'."},
		{"gray_me", Unclassified, 0, ""},
	}

	table := testTable()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Classify(tt.name)
			if got.Verdict != tt.verdict {
				t.Errorf("Classify(%q).Verdict = %v, want %v", tt.name, got.Verdict, tt.verdict)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("Classify(%q).Message = %q, want %q", tt.name, got.Message, tt.wantMessage)
			}
			if got.Reportable() && got.Severity != tt.severity {
				t.Errorf("Classify(%q).Severity = %v, want %v", tt.name, got.Severity, tt.severity)
			}
		})
	}
}

func TestTable_ClassifyOrder(t *testing.T) {
	table := &Table{
		Family: "Twig filter",
		Ignore: []string{"x"},
		Allow:  []string{"x", "y"},
		Warn:   map[string]string{"x": "w", "y": "w", "z": "w"},
		Forbid: map[string]string{"x": "f", "y": "f", "z": "f"},
	}

	tests := map[string]Verdict{"x": Ignore, "y": Allow, "z": Warn}
	for name, want := range tests {
		if got := table.Classify(name).Verdict; got != want {
			t.Errorf("Classify(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestTable_Graylist(t *testing.T) {
	table := testTable()
	table.Graylist = true

	got := table.Classify("gray_me")
	if got.Verdict != Gray || got.Severity != diagnostic.Warning {
		t.Errorf("Classify(gray_me) = %+v", got)
	}
	if want := "Gray list Twig test: 'gray_me'."; got.Message != want {
		t.Errorf("Message = %q, want %q", got.Message, want)
	}

	if got := table.Classify("allow_me"); got.Reportable() {
		t.Errorf("Classify(allow_me) reportable under graylist: %+v", got)
	}
}

func TestTable_NilIsNeutral(t *testing.T) {
	var table *Table
	if got := table.Classify("anything"); got.Verdict != Unclassified || got.Reportable() {
		t.Errorf("nil Classify() = %+v", got)
	}
	if table.Len() != 0 {
		t.Errorf("nil Len() = %d", table.Len())
	}
}

func TestTable_Merge(t *testing.T) {
	base := testTable()
	graylist := true

	merged := base.Merge(Overlay{
		Allow:  []string{"forbid_me"},
		Forbid: map[string]string{"allow_me": "Not here."},
		Warn:   map[string]string{"new_one": ""},

		Graylist: &graylist,
	})

	if got := merged.Classify("forbid_me").Verdict; got != Allow {
		t.Errorf("merged forbid_me = %v, want allow", got)
	}
	if got := merged.Classify("allow_me"); got.Verdict != Forbid || !strings.HasSuffix(got.Message, "Not here.") {
		t.Errorf("merged allow_me = %+v", got)
	}
	if got := merged.Classify("new_one").Verdict; got != Warn {
		t.Errorf("merged new_one = %v, want warn", got)
	}
	if !merged.Graylist {
		t.Error("merged Graylist = false, want true")
	}
	if err := merged.Validate(); err != nil {
		t.Errorf("merged Validate() = %v", err)
	}

	// The base table is not modified.
	if got := base.Classify("forbid_me").Verdict; got != Forbid {
		t.Errorf("base forbid_me = %v after merge, want forbid", got)
	}
	if base.Graylist {
		t.Error("base Graylist changed by merge")
	}
}

func TestTable_Validate(t *testing.T) {
	table := &Table{
		Family: "Twig filter",
		Allow:  []string{"escape", "map"},
		Warn:   map[string]string{"escape": "", "map": "", "e": ""},
	}

	err := table.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want conflict error")
	}
	want := "Twig filter: names in more than one bucket: 'escape' (allow, warn); 'map' (allow, warn)"
	if err.Error() != want {
		t.Errorf("Validate() = %q, want %q", err.Error(), want)
	}

	if err := testTable().Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestOverlay_IsZero(t *testing.T) {
	if !(Overlay{}).IsZero() {
		t.Error("empty overlay IsZero() = false")
	}
	if (Overlay{Allow: []string{"x"}}).IsZero() {
		t.Error("overlay with allow IsZero() = true")
	}
}
