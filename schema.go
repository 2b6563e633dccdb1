package gridkit

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/gridkit/pkg/gridmodel"
	"github.com/dmitrymomot/gridkit/pkg/rules"
)

// Schema is the YAML form of a grid definition: columns with their types and
// validation rules.
//
//	columns:
//	  - name: Name
//	    type: string
//	    rules:
//	      - required: true
//	      - minLen: 2
//	  - name: Age
//	    type: int
//	    rules:
//	      - range: {min: 18, max: 65}
type Schema struct {
	Columns []SchemaColumn `yaml:"columns"`
}

// SchemaColumn declares one column and its rules.
type SchemaColumn struct {
	Name     string       `yaml:"name"`
	Type     string       `yaml:"type"`
	ReadOnly bool         `yaml:"readOnly"`
	MinWidth float64      `yaml:"minWidth"`
	MaxWidth float64      `yaml:"maxWidth"`
	Rules    []SchemaRule `yaml:"rules"`
}

// SchemaRule declares one validation rule. Exactly one of the rule fields
// should be set per entry; Message and Priority override the builder
// defaults when present.
type SchemaRule struct {
	Required bool         `yaml:"required"`
	Range    *SchemaRange `yaml:"range"`
	MinLen   *int         `yaml:"minLen"`
	MaxLen   *int         `yaml:"maxLen"`
	Pattern  string       `yaml:"pattern"`
	OneOf    []string     `yaml:"oneOf"`
	Message  string       `yaml:"message"`
	Priority *int         `yaml:"priority"`
}

// SchemaRange is the bounds of a numeric range rule.
type SchemaRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// ParseSchema converts YAML into columns and rules ready for Initialize.
func ParseSchema(data []byte) ([]gridmodel.Column, []rules.Rule, error) {
	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, nil, fmt.Errorf("gridkit: parse schema: %w", err)
	}
	if len(schema.Columns) == 0 {
		return nil, nil, fmt.Errorf("gridkit: schema declares no columns")
	}

	var columns []gridmodel.Column
	var ruleset []rules.Rule
	for i, sc := range schema.Columns {
		if sc.Name == "" {
			return nil, nil, fmt.Errorf("gridkit: schema column %d has no name", i)
		}
		kind, err := gridmodel.KindFromString(sc.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("gridkit: column %q: %w", sc.Name, err)
		}
		columns = append(columns, gridmodel.Column{
			Name:     sc.Name,
			Kind:     kind,
			MinWidth: sc.MinWidth,
			MaxWidth: sc.MaxWidth,
			ReadOnly: sc.ReadOnly,
		})

		for _, sr := range sc.Rules {
			rule, err := sr.build(sc.Name)
			if err != nil {
				return nil, nil, fmt.Errorf("gridkit: column %q: %w", sc.Name, err)
			}
			ruleset = append(ruleset, rule)
		}
	}
	return columns, ruleset, nil
}

// LoadSchema reads and parses a schema file.
func LoadSchema(path string) ([]gridmodel.Column, []rules.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("gridkit: read schema %s: %w", path, err)
	}
	return ParseSchema(data)
}

func (sr SchemaRule) build(column string) (rules.Rule, error) {
	var rule rules.Rule
	switch {
	case sr.Required:
		rule = rules.Required(column)
	case sr.Range != nil:
		rule = rules.Range(column, sr.Range.Min, sr.Range.Max)
	case sr.MinLen != nil:
		rule = rules.MinLen(column, *sr.MinLen)
	case sr.MaxLen != nil:
		rule = rules.MaxLen(column, *sr.MaxLen)
	case sr.Pattern != "":
		// Compile here so a bad schema pattern reports instead of panicking
		// inside the Match builder.
		if _, err := regexp.Compile(sr.Pattern); err != nil {
			return rules.Rule{}, fmt.Errorf("invalid pattern %q: %w", sr.Pattern, err)
		}
		rule = rules.Match(column, sr.Pattern)
	case len(sr.OneOf) > 0:
		rule = rules.OneOf(column, sr.OneOf...)
	default:
		return rules.Rule{}, fmt.Errorf("rule entry sets no known rule field")
	}

	rule = rule.WithMessage(sr.Message)
	if sr.Priority != nil {
		rule = rule.WithPriority(*sr.Priority)
	}
	return rule, nil
}
