package render

import (
	"strings"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/rewriter"
)

// tuple renders `()`, `(x,)` and `(x, y)`; the one-element form needs its
// trailing comma.
func tuple(tag ast.Tag) []*alternative {
	return []*alternative{
		{
			Name:    "()",
			Pattern: lists(tag, "nodes", rewriter.Exactly(0)),
			Action: func(c ctx, n ast.Node) (string, error) {
				return "()", nil
			},
		},
		{
			Name:    "(x,)",
			Pattern: lists(tag, "nodes", rewriter.Exactly(1)),
			Action: func(c ctx, n ast.Node) (string, error) {
				f, _ := ast.FieldOf(n, "nodes")
				text, err := c.Item("nodes", 0, f.Nodes[0])
				return "(" + text + ",)", err
			},
		},
		{
			Name:    "(x, y)",
			Pattern: lists(tag, "nodes", rewriter.AtLeast(2)),
			Action: func(c ctx, n ast.Node) (string, error) {
				f, _ := ast.FieldOf(n, "nodes")
				text, err := joined(c, "nodes", f.Nodes)
				return "(" + text + ")", err
			},
		},
	}
}

func (r *Renderer) addExpressionRules(rs *rewriter.RuleSet[string]) {
	rs.Add(ast.TagName, &alternative{Name: "name", Action: func(c ctx, n ast.Node) (string, error) {
		return n.(*ast.Name).Name, nil
	}})
	rs.Add(ast.TagConst, &alternative{Name: "literal", Action: func(c ctx, n ast.Node) (string, error) {
		return Literal(n.(*ast.Const).Value), nil
	}})
	rs.Add(ast.TagGetattr, &alternative{Name: "e.attr", Action: func(c ctx, n ast.Node) (string, error) {
		g := n.(*ast.Getattr)
		recv, err := receiver(c, "expr", g.Expr)
		if err != nil {
			return "", err
		}
		return recv + "." + g.Attr, nil
	}})
	rs.Add(ast.TagCallFunc, &alternative{Name: "f(args, *a, **k)", Action: call})
	rs.Add(ast.TagKeyword, &alternative{Name: "k=v", Action: func(c ctx, n ast.Node) (string, error) {
		k := n.(*ast.Keyword)
		value, err := c.Child("expr", k.Expr)
		return k.Name + "=" + value, err
	}})
	rs.Add(ast.TagTuple, tuple(ast.TagTuple)...)
	rs.Add(ast.TagList, &alternative{Name: "[a, b]", Action: func(c ctx, n ast.Node) (string, error) {
		text, err := joined(c, "nodes", n.(*ast.List).Nodes)
		return "[" + text + "]", err
	}})
	rs.Add(ast.TagDict, &alternative{Name: "{k: v}", Action: func(c ctx, n ast.Node) (string, error) {
		text, err := joined(c, "items", ast.Nodes(n.(*ast.Dict).Items))
		return "{" + text + "}", err
	}})
	rs.Add(ast.TagDictItem, &alternative{Name: "k: v", Action: func(c ctx, n ast.Node) (string, error) {
		item := n.(*ast.DictItem)
		key, err := c.Child("key", item.Key)
		if err != nil {
			return "", err
		}
		value, err := c.Child("value", item.Value)
		return key + ": " + value, err
	}})
	rs.Add(ast.TagLambda, &alternative{Name: "lambda", Action: func(c ctx, n ast.Node) (string, error) {
		l := n.(*ast.Lambda)
		ps, err := params(c, l.Argnames, l.Defaults, l.Varargs, l.Kwargs)
		if err != nil {
			return "", err
		}
		body, err := c.Child("code", l.Code)
		if err != nil {
			return "", err
		}
		if ps == "" {
			return "lambda: " + body, nil
		}
		return "lambda " + ps + ": " + body, nil
	}})
}

// call renders the arguments in their given order, then *args, then
// **kwargs.
func call(c ctx, n ast.Node) (string, error) {
	cf := n.(*ast.CallFunc)
	fn, err := receiver(c, "func", cf.Func)
	if err != nil {
		return "", err
	}
	args, err := items(c, "args", cf.Args)
	if err != nil {
		return "", err
	}
	if star, ok := cf.StarArgs.Get(); ok {
		text, err := c.Child("starArgs", star)
		if err != nil {
			return "", err
		}
		args = append(args, "*"+text)
	}
	if dstar, ok := cf.DstarArgs.Get(); ok {
		text, err := c.Child("dstarArgs", dstar)
		if err != nil {
			return "", err
		}
		args = append(args, "**"+text)
	}
	return fn + "(" + strings.Join(args, ", ") + ")", nil
}
