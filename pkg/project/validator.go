package project

import (
	"fmt"

	"mercator-hq/sdclint/pkg/config"
	"mercator-hq/sdclint/pkg/lint/engine"
	"mercator-hq/sdclint/pkg/lint/rules"
	"mercator-hq/sdclint/pkg/lint/validator"
	"mercator-hq/sdclint/pkg/telemetry"
	"mercator-hq/sdclint/pkg/twig/ast"
)

// NewValidator builds the validator described by the lint section of the
// configuration. Rule panics are counted by the metrics of tel.
func NewValidator(cfg *config.LintConfig, tel *telemetry.Telemetry, extra ...validator.Option) (*validator.Validator, error) {
	if tel == nil {
		tel = telemetry.Nop()
	}

	reg, err := rules.Default(rules.Options{
		Policies: cfg.Policies,
		Disabled: cfg.DisabledRules,
	})
	if err != nil {
		return nil, fmt.Errorf("build rules: %w", err)
	}

	excerpt := cfg.ExcerptLength
	switch {
	case excerpt == 0:
		excerpt = config.DefaultExcerptLength
	case excerpt < 0:
		excerpt = 0
	}

	collector := tel.Metrics()
	opts := []validator.Option{
		validator.WithRegistry(reg),
		validator.WithLogger(tel.Logger().Slog()),
		validator.WithKnownVariables(cfg.KnownVariables...),
		validator.WithReportUnusedInputs(cfg.ReportUnusedInputs),
		validator.WithExcerptLength(excerpt),
		validator.WithDisabledRules(cfg.DisabledRules...),
		validator.WithEngineOptions(engine.WithFailureHook(func(rule string, _ *ast.Node, _ any) {
			collector.RecordRuleFailure(rule)
		})),
	}
	return validator.New(append(opts, extra...)...)
}
