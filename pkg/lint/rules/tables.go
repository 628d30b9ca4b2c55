package rules

import (
	"mercator-hq/sdclint/pkg/lint/policy"
)

// Hints shared by several entries.
const (
	hintSandboxed  = "Keep components sandboxed by avoiding functions calling Drupal application."
	hintExtension  = "Needs specific Twig extension. Business usage, not compatible with Design System principles."
	hintFunctional = "Functional programming may be overkill."
	hintEscape     = "Useless, Drupal already escape all variables."
	hintDevOnly    = "Development only."
	hintPHPObject  = "PHP object manipulation must be avoided."
)

// filterTable classifies filter names.
func filterTable() *policy.Table {
	return &policy.Table{
		Family: "Twig filter",
		Ignore: []string{
			// Escaping added by the runtime to every printed value.
			"drupal_escape",
		},
		Allow: []string{
			"abs", "add_class", "append", "batch", "capitalize", "clean_id",
			"default", "escape", "first", "has_attribute", "has_class", "items",
			"join", "keys", "last", "length", "lower", "map", "merge", "prepend",
			"remove_attribute", "remove_class", "replace", "reverse", "round",
			"safe", "set_attribute", "slice", "split", "striptags", "t", "trans",
			"title", "trim", "upper",
		},
		Warn: map[string]string{
			"clean_unique_id":  "",
			"convert_encoding": "Needs specific PHP extension.",
			"e":                hintEscape,
			"filter":           hintFunctional,
			"reduce":           hintFunctional,
		},
		Forbid: map[string]string{
			"placeholder":    hintSandboxed,
			"render":         "Please ensure you are not rendering content too early.",
			"without":        "Avoid 'without' filter on slots, which must stay opaque. Allowed with attributes objects until #3296456 is fixed.",
			"add_suggestion": hintSandboxed,
			"date":           hintPHPObject,
			"date_modify":    hintPHPObject,
			"format_date":    "Business related. Load config entities.",

			"country_name":     hintExtension,
			"currency_name":    hintExtension,
			"currency_symbol":  hintExtension,
			"data_uri":         hintExtension,
			"format_currency":  hintExtension,
			"format_datetime":  hintExtension,
			"format_number":    hintExtension,
			"format_time":      hintExtension,
			"html_to_markdown": hintExtension,
			"inky_to_html":     hintExtension,
			"inline_css":       hintExtension,
			"language_name":    hintExtension,
			"locale_name":      hintExtension,
			"markdown_to_html": hintExtension,
			"slug":             hintExtension,
			"timezone_name":    hintExtension,
			"u":                hintExtension,

			"test_filter": hintDevOnly,
		},
	}
}

// functionTable classifies function names.
func functionTable() *policy.Table {
	return &policy.Table{
		Family: "Twig function",
		Ignore: []string{
			// Wraps every printed value at compile time.
			"render_var",
		},
		Allow: []string{"create_attribute", "random", "range"},
		Warn: map[string]string{
			"source":          "Bad architecture, but sometimes needed for shared static files.",
			"component_story": "Not expected in real usage components.",
			"include":         "Use slots instead of hard embedding a component in the template with 'include'.",
		},
		Forbid: map[string]string{
			"active_theme":             hintSandboxed,
			"active_theme_path":        hintSandboxed,
			"attach_library":           "The asset library attachment would be more discoverable if declared in the component definition.",
			"attribute":                "Useless and confusing, see https://www.drupal.org/project/ui_suite_bootstrap/issues/3382230.",
			"constant":                 hintSandboxed,
			"date":                     "Too business & l10n related.",
			"file_url":                 "Should avoid using.",
			"link":                     "PHP URL object, or useless if URL string.",
			"path":                     hintSandboxed,
			"url":                      hintSandboxed,
			"block":                    "Use slots instead of hard embedding a component in the template with 'block'.",
			"parent":                   "Use slots instead of hard embedding a component in the template with 'parent'.",
			"pattern_preview":          "Legacy UI Patterns 1, not expected in real usage components.",
			"help_route_link":          "Bad architecture: Help Drupal module only.",
			"help_topic_link":          "Bad architecture: Help Drupal module only.",
			"dump":                     hintDevOnly,
			"devel_dump":               hintDevOnly,
			"kpr":                      hintDevOnly,
			"kint":                     hintDevOnly,
			"devel_message":            hintDevOnly,
			"dpm":                      hintDevOnly,
			"dsm":                      hintDevOnly,
			"add_component_context":    hintDevOnly,
			"validate_component_props": hintDevOnly,
			"sdc_additional_context":   "Deprecated and development only.",
			"sdc_validate_props":       "Deprecated and development only.",
			"country_names":            hintExtension,
			"country_timezones":        hintExtension,
			"currency_names":           hintExtension,
			"html_classes":             "Needs specific Twig extension.",
			"language_names":           hintExtension,
			"locale_names":             hintExtension,
			"script_names":             hintExtension,
			"template_from_string":     "Bad architecture.",
			"timezone_names":           hintExtension,
			"wp_dump":                  hintDevOnly,
			"query_type":               hintDevOnly,
			"query_executable":         hintDevOnly,
		},
		Deprecate: map[string]string{
			"pattern": "Replace with Twig function component().",
		},
	}
}

// variableTable classifies variable names.
func variableTable() *policy.Table {
	return &policy.Table{
		Family: "Twig variable",
		Forbid: map[string]string{
			"componentMetadata": "",
		},
	}
}
