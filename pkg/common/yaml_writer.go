package common

import (
	"io"

	"gopkg.in/yaml.v3"
)

func PrintASTYAML(root *Node, indentDelta string, output io.Writer, options *PrintOptions) error {
	encoder := yaml.NewEncoder(output)
	defer encoder.Close()
	if options != nil && options.Indent > 0 {
		encoder.SetIndent(options.Indent)
	} else if len(indentDelta) > 0 {
		encoder.SetIndent(len(indentDelta))
	}
	return encoder.Encode(root)
}

func ReadASTYAML(input io.Reader) (*Node, error) {
	var root Node
	if err := yaml.NewDecoder(input).Decode(&root); err != nil {
		return nil, err
	}
	return &root, nil
}

// ReadAST reads a tree in the named format; anything but YAML is read as JSON.
func ReadAST(format string, input io.Reader) (*Node, error) {
	if format == "YAML" || format == "yaml" {
		return ReadASTYAML(input)
	}
	return ReadASTJSON(input)
}
