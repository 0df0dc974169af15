package rewriter

import (
	"fmt"
	"os"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"gopkg.in/yaml.v3"
)

// RewriteConfig is a YAML rule table for node-to-node rewriting.
type RewriteConfig struct {
	Name        string        `yaml:"name,omitempty"`
	Description string        `yaml:"description,omitempty"`
	Rules       []RewriteRule `yaml:"rules,omitempty"`
}

// RewriteRule represents a single rewrite rule with match conditions and an action.
type RewriteRule struct {
	Name   string       `yaml:"name,omitempty"`
	Match  Pattern      `yaml:"match"`
	Guard  *Pattern     `yaml:"unless,omitempty"`
	Action ActionConfig `yaml:"action"`
}

// ActionConfig defines what action to take when a match is found.
// This is used for YAML unmarshaling and then converted to concrete actions.
type ActionConfig struct {
	Method         *MethodConfig     `yaml:"method,omitempty"`
	FoldMethod     *FoldMethodConfig `yaml:"foldMethod,omitempty"`
	Call           *CallConfig       `yaml:"call,omitempty"`
	ReplaceByChild *string           `yaml:"replaceByChild,omitempty"`
	Fail           *string           `yaml:"fail,omitempty"`
}

type MethodConfig struct {
	Receiver string   `yaml:"receiver"`
	Name     string   `yaml:"name"`
	Args     []string `yaml:"args,omitempty"`
	Coerce   string   `yaml:"coerce,omitempty"`
}

type FoldMethodConfig struct {
	List string `yaml:"list"`
	Name string `yaml:"name"`
}

type CallConfig struct {
	Func string   `yaml:"func"`
	Args []string `yaml:"args,omitempty"`
}

func (ac ActionConfig) Validate() error {
	// Options are mutually exclusive; only one should be set.
	count := 0
	if ac.Method != nil {
		if ac.Method.Receiver == "" || ac.Method.Name == "" {
			return fmt.Errorf("invalid MethodConfig: 'receiver' and 'name' must be set")
		}
		count++
	}
	if ac.FoldMethod != nil {
		if ac.FoldMethod.List == "" || ac.FoldMethod.Name == "" {
			return fmt.Errorf("invalid FoldMethodConfig: 'list' and 'name' must be set")
		}
		count++
	}
	if ac.Call != nil {
		if ac.Call.Func == "" {
			return fmt.Errorf("invalid CallConfig: 'func' must be set")
		}
		count++
	}
	if ac.ReplaceByChild != nil {
		count++
	}
	if ac.Fail != nil {
		count++
	}
	if count == 0 {
		return fmt.Errorf("no action specified in ActionConfig: %+v", ac)
	}
	if count > 1 {
		return fmt.Errorf("multiple actions specified in ActionConfig; only one allowed: %+v", ac)
	}
	return nil
}

// ToAction converts an ActionConfig to a concrete NodeAction.
func (ac ActionConfig) ToAction() (NodeAction, error) {
	if err := ac.Validate(); err != nil {
		return nil, err
	}
	switch {
	case ac.Method != nil:
		return &MethodAction{Receiver: ac.Method.Receiver, Name: ac.Method.Name, Args: ac.Method.Args, Coerce: ac.Method.Coerce}, nil
	case ac.FoldMethod != nil:
		return &FoldMethodAction{List: ac.FoldMethod.List, Name: ac.FoldMethod.Name}, nil
	case ac.Call != nil:
		return &CallAction{Func: ac.Call.Func, Args: ac.Call.Args}, nil
	case ac.ReplaceByChild != nil:
		return &ReplaceByChildAction{Field: *ac.ReplaceByChild}, nil
	default:
		return &FailAction{Message: *ac.Fail}, nil
	}
}

// checkFields rejects actions that name fields the matched variant lacks.
func checkFields(tag ast.Tag, ac ActionConfig) error {
	var names []string
	switch {
	case ac.Method != nil:
		names = append([]string{ac.Method.Receiver}, ac.Method.Args...)
	case ac.FoldMethod != nil:
		names = []string{ac.FoldMethod.List}
	case ac.Call != nil:
		names = ac.Call.Args
	case ac.ReplaceByChild != nil:
		names = []string{*ac.ReplaceByChild}
	}
	for _, name := range names {
		if kind, ok := ast.HasField(tag, name); !ok || kind == ast.LeafField {
			return fmt.Errorf("%s has no node field %q", tag, name)
		}
	}
	return nil
}

// Compile turns the configuration into a rule set, effectively compiling
// the YAML into executable alternatives. Rules keep their file order within
// each tag.
func (rc *RewriteConfig) Compile() (*RuleSet[ast.Node], error) {
	rules := NewRuleSet[ast.Node](rc.Name)
	for i := range rc.Rules {
		rule := rc.Rules[i]
		if e := rule.Match.Validate(rule.Name); e != nil {
			return nil, fmt.Errorf("error in rule \"%s/%s\": %w", rc.Name, rule.Name, e)
		}
		action, err := rule.Action.ToAction()
		if err != nil {
			return nil, fmt.Errorf("error in rule \"%s/%s\": %w", rc.Name, rule.Name, err)
		}
		if err := checkFields(rule.Match.Tag, rule.Action); err != nil {
			return nil, fmt.Errorf("error in rule \"%s/%s\": %w", rc.Name, rule.Name, err)
		}
		alt := &Alternative[ast.Node]{
			Name:    rule.Name,
			Pattern: &rule.Match,
			Action:  asAction(action),
		}
		if rule.Guard != nil {
			unless := *rule.Guard
			unless.Tag = rule.Match.Tag
			if e := unless.Validate(rule.Name); e != nil {
				return nil, fmt.Errorf("error in rule \"%s/%s\": %w", rc.Name, rule.Name, e)
			}
			alt.Guards = []Guard{func(n ast.Node) bool { return !unless.Matches(n) }}
		}
		rules.Add(rule.Match.Tag, alt)
	}
	return rules, nil
}

// LoadRewriteConfig loads a rule table from a YAML file.
func LoadRewriteConfig(filename string) (*RewriteConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return LoadRewriteConfigFromString(string(data))
}

// LoadRewriteConfigFromString loads a RewriteConfig from a YAML string.
func LoadRewriteConfigFromString(yamlContent string) (*RewriteConfig, error) {
	var rewriteConfig RewriteConfig
	err := yaml.Unmarshal([]byte(yamlContent), &rewriteConfig)
	if err != nil {
		return nil, err
	}
	return &rewriteConfig, nil
}
