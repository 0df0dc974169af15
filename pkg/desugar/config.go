package desugar

import (
	"fmt"
	"os"

	"github.com/Warbo/python-decompiler/pkg/rewriter"
	"gopkg.in/yaml.v3"
)

// Config is a desugaring table: data-driven rewrite rules plus the names
// of the runtime hooks the built-in rewrites call.
type Config struct {
	Name        string                 `yaml:"name,omitempty"`
	Description string                 `yaml:"description,omitempty"`
	Rules       []rewriter.RewriteRule `yaml:"rules,omitempty"`
	Truth       TruthConfig            `yaml:"truth,omitempty"`
	Logic       LogicConfig            `yaml:"logic,omitempty"`
	Comparisons map[string]string      `yaml:"comparisons,omitempty"`
	Augmented   map[string]string      `yaml:"augmented,omitempty"`
	Items       ItemsConfig            `yaml:"items,omitempty"`
	Metadata    MetadataConfig         `yaml:"metadata,omitempty"`
	Options     OptionsConfig          `yaml:"options,omitempty"`
}

// TruthConfig names the truth coercion and the conditional hook:
// `bool(c).__if__(lambda: a, lambda: b)`.
type TruthConfig struct {
	Coerce string `yaml:"coerce,omitempty"`
	If     string `yaml:"if,omitempty"`
}

type LogicConfig struct {
	And string `yaml:"and,omitempty"`
	Or  string `yaml:"or,omitempty"`
}

// ItemsConfig names the item protocol used for subscripts and slices.
type ItemsConfig struct {
	Get   string `yaml:"get,omitempty"`
	Set   string `yaml:"set,omitempty"`
	Del   string `yaml:"del,omitempty"`
	Slice string `yaml:"slice,omitempty"`
}

// MetadataConfig lists the attributes assigned after each kind of
// definition. A nil list keeps the layer below; an empty list disables
// metadata for that kind.
type MetadataConfig struct {
	Function []string `yaml:"function,omitempty"`
	Class    []string `yaml:"class,omitempty"`
}

type OptionsConfig struct {
	ExpandDecorators *bool  `yaml:"expandDecorators,omitempty"`
	FlattenElifs     *bool  `yaml:"flattenElifs,omitempty"`
	TempPrefix       string `yaml:"tempPrefix,omitempty"`
}

func (o OptionsConfig) expandDecorators() bool {
	return o.ExpandDecorators != nil && *o.ExpandDecorators
}

func (o OptionsConfig) flattenElifs() bool {
	return o.FlattenElifs != nil && *o.FlattenElifs
}

// DefaultConfig parses DefaultDesugarRules.
func DefaultConfig() (*Config, error) {
	return LoadConfigFromString(DefaultDesugarRules)
}

// LoadConfig loads a desugaring table from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	config, err := LoadConfigFromString(string(data))
	if err != nil {
		return nil, fmt.Errorf("error in %s: %w", filename, err)
	}
	return config, nil
}

// LoadConfigFromString loads a Config from a YAML string.
func LoadConfigFromString(yamlContent string) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal([]byte(yamlContent), &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Layer returns a copy of c with over laid on top: over's rules are tried
// first, and every hook or option over sets replaces c's.
func (c *Config) Layer(over *Config) *Config {
	out := *c
	out.Rules = append([]rewriter.RewriteRule(nil), c.Rules...)
	out.Comparisons = mergeNames(c.Comparisons, nil)
	out.Augmented = mergeNames(c.Augmented, nil)
	if over == nil {
		return &out
	}
	if over.Name != "" {
		out.Name = over.Name
	}
	if over.Description != "" {
		out.Description = over.Description
	}
	out.Rules = append(append([]rewriter.RewriteRule(nil), over.Rules...), c.Rules...)
	pick(&out.Truth.Coerce, over.Truth.Coerce)
	pick(&out.Truth.If, over.Truth.If)
	pick(&out.Logic.And, over.Logic.And)
	pick(&out.Logic.Or, over.Logic.Or)
	pick(&out.Items.Get, over.Items.Get)
	pick(&out.Items.Set, over.Items.Set)
	pick(&out.Items.Del, over.Items.Del)
	pick(&out.Items.Slice, over.Items.Slice)
	pick(&out.Options.TempPrefix, over.Options.TempPrefix)
	out.Comparisons = mergeNames(c.Comparisons, over.Comparisons)
	out.Augmented = mergeNames(c.Augmented, over.Augmented)
	if over.Metadata.Function != nil {
		out.Metadata.Function = over.Metadata.Function
	}
	if over.Metadata.Class != nil {
		out.Metadata.Class = over.Metadata.Class
	}
	if over.Options.ExpandDecorators != nil {
		out.Options.ExpandDecorators = over.Options.ExpandDecorators
	}
	if over.Options.FlattenElifs != nil {
		out.Options.FlattenElifs = over.Options.FlattenElifs
	}
	return &out
}

func pick(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func mergeNames(base, over map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// Validate checks that every hook the built-in rewrites need is named.
func (c *Config) Validate() error {
	required := []struct{ what, value string }{
		{"truth.coerce", c.Truth.Coerce},
		{"truth.if", c.Truth.If},
		{"logic.and", c.Logic.And},
		{"logic.or", c.Logic.Or},
		{"items.get", c.Items.Get},
		{"items.set", c.Items.Set},
		{"items.del", c.Items.Del},
		{"items.slice", c.Items.Slice},
		{"options.tempPrefix", c.Options.TempPrefix},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("desugar config %q: %s is not set", c.Name, r.what)
		}
	}
	if err := checkMetadata("function", c.Metadata.Function); err != nil {
		return fmt.Errorf("desugar config %q: %w", c.Name, err)
	}
	if err := checkMetadata("class", c.Metadata.Class); err != nil {
		return fmt.Errorf("desugar config %q: %w", c.Name, err)
	}
	return nil
}

// RewriteConfig is the data-driven part of the table.
func (c *Config) RewriteConfig() *rewriter.RewriteConfig {
	return &rewriter.RewriteConfig{Name: c.Name, Description: c.Description, Rules: c.Rules}
}
