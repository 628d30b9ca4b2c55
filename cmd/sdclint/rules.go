package main

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/sdclint/pkg/cli"
	"mercator-hq/sdclint/pkg/config"
	"mercator-hq/sdclint/pkg/lint/engine"
	"mercator-hq/sdclint/pkg/lint/policy"
	"mercator-hq/sdclint/pkg/project"
)

var rulesFlags struct {
	format string
}

var rulesCmd = &cobra.Command{
	Use:   "rules [rule]",
	Short: "List the lint rules and their name tables",
	Long: `Rules lists every enabled rule with the node kinds it inspects and a
summary of its name table. Policies from the configuration file are merged
in, so the output shows what a lint run would use.

Given a rule name, rules prints every name of that rule's table with its
bucket and hint.`,
	Example: `  sdclint rules
  sdclint rules filter --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().StringVarP(&rulesFlags.format, "format", "f", "table", "output format: table, text, json or csv")
}

func runRules(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(rulesFlags.format)
	if err != nil {
		return cli.NewUsageError("rules", err, "")
	}
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewUsageError("rules", err, "check the configuration file given with --config")
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewUsageError("rules", err, "")
	}
	v, err := project.NewValidator(&cfg.Lint, nil)
	if err != nil {
		return cli.NewUsageError("rules", err, "check the lint.policies and lint.disabled_rules settings")
	}
	defs := v.Registry().Definitions()

	var data any = rulesView(defs)
	if len(args) == 1 {
		i := slices.IndexFunc(defs, func(d engine.Definition) bool { return d.Name == args[0] })
		switch {
		case i < 0:
			return cli.NewUsageError("rules", fmt.Errorf("unknown rule %q", args[0]), "run 'sdclint rules' to list the rules")
		case defs[i].Policy == nil:
			return cli.NewUsageError("rules", fmt.Errorf("rule %q has no name table", args[0]), "")
		}
		data = newTableView(defs[i].Policy)
	}

	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data); err != nil {
		return cli.NewCommandError("rules", err)
	}
	return nil
}

// rulesView lists rule definitions.
type rulesView []engine.Definition

func (v rulesView) Columns() []string {
	return []string{"rule", "kinds", "policy", "description"}
}

func (v rulesView) Rows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, def := range v {
		kinds := make([]string, len(def.Kinds))
		for i, k := range def.Kinds {
			kinds[i] = string(k)
		}
		rows = append(rows, []string{def.Name, strings.Join(kinds, ","), policySummary(def.Policy), def.Description})
	}
	return rows
}

func (v rulesView) String() string {
	var sb strings.Builder
	for _, row := range v.Rows() {
		fmt.Fprintf(&sb, "%s: %s\n", row[0], row[3])
	}
	return sb.String()
}

type jsonRule struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Kinds       []string       `json:"kinds"`
	Policy      map[string]int `json:"policy,omitempty"`
}

func (v rulesView) MarshalJSON() ([]byte, error) {
	out := make([]jsonRule, 0, len(v))
	for _, def := range v {
		r := jsonRule{Name: def.Name, Description: def.Description, Kinds: []string{}}
		for _, k := range def.Kinds {
			r.Kinds = append(r.Kinds, string(k))
		}
		if def.Policy != nil {
			r.Policy = bucketCounts(def.Policy)
		}
		out = append(out, r)
	}
	return json.Marshal(out)
}

// policySummary counts the names per bucket, e.g. "allow 12, forbid 3".
func policySummary(t *policy.Table) string {
	if t == nil {
		return "-"
	}
	counts := bucketCounts(t)
	parts := make([]string, 0, len(counts))
	for _, name := range slices.Sorted(maps.Keys(counts)) {
		parts = append(parts, fmt.Sprintf("%s %d", name, counts[name]))
	}
	if t.Graylist {
		parts = append(parts, "graylist")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func bucketCounts(t *policy.Table) map[string]int {
	counts := make(map[string]int)
	for _, verdicts := range t.Buckets() {
		for _, v := range verdicts {
			counts[v.String()]++
		}
	}
	return counts
}

// tableView lists the names of one policy table.
type tableView struct {
	table *policy.Table
}

func newTableView(t *policy.Table) tableView {
	return tableView{table: t}
}

type tableEntry struct {
	Name    string `json:"name"`
	Verdict string `json:"verdict"`
	Hint    string `json:"hint,omitempty"`
}

func (v tableView) entries() []tableEntry {
	buckets := v.table.Buckets()
	var out []tableEntry
	for _, name := range slices.Sorted(maps.Keys(buckets)) {
		for _, verdict := range buckets[name] {
			out = append(out, tableEntry{Name: name, Verdict: verdict.String(), Hint: v.hint(name, verdict)})
		}
	}
	return out
}

func (v tableView) hint(name string, verdict policy.Verdict) string {
	switch verdict {
	case policy.Deprecate:
		return v.table.Deprecate[name]
	case policy.Warn:
		return v.table.Warn[name]
	case policy.Forbid:
		return v.table.Forbid[name]
	}
	return ""
}

func (v tableView) Columns() []string {
	return []string{"name", "verdict", "hint"}
}

func (v tableView) Rows() [][]string {
	var rows [][]string
	for _, e := range v.entries() {
		rows = append(rows, []string{e.Name, e.Verdict, e.Hint})
	}
	return rows
}

func (v tableView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s names (graylist: %t)\n", v.table.Family, v.table.Graylist)
	for _, e := range v.entries() {
		fmt.Fprintf(&sb, "  %s: %s", e.Name, e.Verdict)
		if e.Hint != "" {
			fmt.Fprintf(&sb, " (%s)", e.Hint)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (v tableView) MarshalJSON() ([]byte, error) {
	entries := v.entries()
	if entries == nil {
		entries = []tableEntry{}
	}
	return json.Marshal(struct {
		Family   string       `json:"family"`
		Graylist bool         `json:"graylist"`
		Names    []tableEntry `json:"names"`
	}{v.table.Family, v.table.Graylist, entries})
}
