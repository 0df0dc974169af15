package common

import (
	"fmt"
	"io"
	"strings"
)

func PrintASTDOT(root *Node, indentDelta string, output io.Writer, options *PrintOptions) error {
	if options == nil {
		options = &PrintOptions{}
	}
	fmt.Fprintln(output, `digraph G {`)
	fmt.Fprintln(output, `  bgcolor="transparent";`)
	fmt.Fprintln(output, `  node [shape="box", style="filled", fontname="Ubuntu Mono"];`)

	counter := 0
	printNodeDOT(root, "", output, options, &counter)

	_, err := fmt.Fprintln(output, `}`)
	return err
}

func printNodeDOT(node *Node, parentID string, output io.Writer, options *PrintOptions, counter *int) {
	// Sequential identifiers keep the output stable between runs.
	nodeID := fmt.Sprintf("node_%d", *counter)
	*counter++

	label := node.Name
	for _, key := range []string{OptionValue, OptionName, OptionAttr, OptionOp} {
		if value, exists := node.Options[key]; exists {
			trimmedValue := TrimValue(key, value, options.TrimTokenOnOutput)
			label = fmt.Sprintf("%s: %s", node.Name, escapeDOTValue(trimmedValue))
			break
		}
	}

	fillColor := tagColors[node.Name]
	if fillColor == "" {
		fillColor = "lightgray"
	}

	fmt.Fprintf(output, "  \"%s\" [label=\"%s\", shape=\"box\", fillcolor=\"%s\"];\n", nodeID, label, fillColor)

	if parentID != "" {
		fmt.Fprintf(output, "  \"%s\" -> \"%s\";\n", parentID, nodeID)
	}

	for _, child := range node.Children {
		printNodeDOT(child, nodeID, output, options, counter)
	}
}

func escapeDOTValue(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `"`, `\"`)
}

var tagColors = map[string]string{
	"Module":   "lightpink",
	"Function": "#FFD8E1",
	"Class":    "#FFD8E1",
	"CallFunc": "lightgreen",
	"Name":     "Honeydew",
	"Getattr":  "PaleTurquoise",
	"Lambda":   "#C0FFC0",
	"Const":    "lightgoldenrodyellow",
}
