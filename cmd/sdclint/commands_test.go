package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/sdclint/pkg/cli"
)

func TestRunRules(t *testing.T) {
	t.Cleanup(func() { rulesFlags.format = "table" })

	tests := []struct {
		name   string
		format string
		args   []string
		want   []string
	}{
		{
			name:   "table",
			format: "table",
			want:   []string{"RULE", "filter", "forbid", "Variable names and unknown variables."},
		},
		{
			name:   "text",
			format: "text",
			want:   []string{"statement: Twig tags."},
		},
		{
			name:   "one table",
			format: "text",
			args:   []string{"filter"},
			want:   []string{"Twig filter names", "render: forbid (Please ensure you are not rendering content too early.)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, out := newCommand(t, "")
			rulesFlags.format = tt.format
			if err := runRules(cmd, tt.args); err != nil {
				t.Fatalf("runRules() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestRunRules_JSON(t *testing.T) {
	t.Cleanup(func() { rulesFlags.format = "table" })
	cmd, out := newCommand(t, "")
	rulesFlags.format = "json"

	if err := runRules(cmd, nil); err != nil {
		t.Fatalf("runRules() error = %v", err)
	}
	var got []jsonRule
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	byName := make(map[string]jsonRule)
	for _, r := range got {
		byName[r.Name] = r
	}
	if byName["filter"].Policy["forbid"] == 0 {
		t.Errorf("filter policy = %v, want forbidden names", byName["filter"].Policy)
	}
	if byName["conditional"].Policy != nil {
		t.Errorf("conditional policy = %v, want none", byName["conditional"].Policy)
	}
}

func TestRunRules_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown rule", args: []string{"nope"}},
		{name: "rule without table", args: []string{"conditional"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := newCommand(t, "")
			err := runRules(cmd, tt.args)
			if got := cli.ExitCode(err); got != cli.ExitUsage {
				t.Errorf("runRules() exit code = %d, want %d (error: %v)", got, cli.ExitUsage, err)
			}
		})
	}
}

func TestRunAST(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.twig")
	if err := os.WriteFile(path, []byte("{{ title|upper }}"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, arg := range []string{path, "-"} {
		cmd, out := newCommand(t, "{{ title|upper }}")
		if err := runAST(cmd, []string{arg}); err != nil {
			t.Fatalf("runAST(%s) error = %v", arg, err)
		}
		for _, want := range []string{"template", "filter", "name"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("runAST(%s) output missing %q:\n%s", arg, want, out.String())
			}
		}
	}
}

func TestRunAST_Errors(t *testing.T) {
	tests := []struct {
		name  string
		arg   string
		stdin string
	}{
		{name: "missing file", arg: filepath.Join(t.TempDir(), "missing.twig")},
		{name: "syntax error", arg: "-", stdin: "{{ title "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := newCommand(t, tt.stdin)
			err := runAST(cmd, []string{tt.arg})
			if got := cli.ExitCode(err); got != cli.ExitUsage {
				t.Errorf("runAST() exit code = %d, want %d (error: %v)", got, cli.ExitUsage, err)
			}
		})
	}
}

func TestApplyWatchFlags(t *testing.T) {
	t.Cleanup(func() { watchFlags = watchOptions{} })
	watchFlags = watchOptions{schedule: "@every 1h", metricsAddr: ":9090"}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	applyWatchFlags(cfg)
	if cfg.Watch.Schedule != "@every 1h" || cfg.Metrics.Address != ":9090" || !cfg.Metrics.Enabled {
		t.Errorf("applyWatchFlags() watch = %+v, metrics = %+v", cfg.Watch, cfg.Metrics)
	}
}
