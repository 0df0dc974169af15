package desugar

// DefaultDesugarRules is the built-in desugaring table. Rules listed under
// `rules` are data-driven rewrites compiled by the rewriter package; the
// other sections name the runtime hooks used by the rewrites that are
// written in Go.
const DefaultDesugarRules = `
name: desugar
description: Reduce operators and statements to method calls on the core vocabulary
rules:
  - name: a + b -> a.__add__(b)
    match:
      tag: Add
    action:
      method: { receiver: left, name: __add__, args: [right] }
  - name: a - b -> a.__sub__(b)
    match:
      tag: Sub
    action:
      method: { receiver: left, name: __sub__, args: [right] }
  - name: a * b -> a.__mul__(b)
    match:
      tag: Mul
    action:
      method: { receiver: left, name: __mul__, args: [right] }
  - name: a / b -> a.__truediv__(b)
    match:
      tag: Div
    action:
      method: { receiver: left, name: __truediv__, args: [right] }
  - name: a // b -> a.__floordiv__(b)
    match:
      tag: FloorDiv
    action:
      method: { receiver: left, name: __floordiv__, args: [right] }
  - name: a % b -> a.__mod__(b)
    match:
      tag: Mod
    action:
      method: { receiver: left, name: __mod__, args: [right] }
  - name: a ** b -> a.__pow__(b)
    match:
      tag: Power
    action:
      method: { receiver: left, name: __pow__, args: [right] }
  - name: a << b -> a.__lshift__(b)
    match:
      tag: LeftShift
    action:
      method: { receiver: left, name: __lshift__, args: [right] }
  - name: a >> b -> a.__rshift__(b)
    match:
      tag: RightShift
    action:
      method: { receiver: left, name: __rshift__, args: [right] }
  - name: a & b & ... -> a.__and__(b).__and__(...)
    match:
      tag: Bitand
      lists:
        nodes: { min: 1 }
    action:
      foldMethod: { list: nodes, name: __and__ }
  - name: a | b | ... -> a.__or__(b).__or__(...)
    match:
      tag: Bitor
      lists:
        nodes: { min: 1 }
    action:
      foldMethod: { list: nodes, name: __or__ }
  - name: a ^ b ^ ... -> a.__xor__(b).__xor__(...)
    match:
      tag: Bitxor
      lists:
        nodes: { min: 1 }
    action:
      foldMethod: { list: nodes, name: __xor__ }
  - name: -a -> a.__neg__()
    match:
      tag: UnarySub
    action:
      method: { receiver: expr, name: __neg__ }
  - name: +a -> a.__pos__()
    match:
      tag: UnaryAdd
    action:
      method: { receiver: expr, name: __pos__ }
  - name: ~a -> a.__invert__()
    match:
      tag: Invert
    action:
      method: { receiver: expr, name: __invert__ }
  - name: not a -> bool(a).__lognot__()
    match:
      tag: Not
    action:
      method: { receiver: expr, name: __lognot__, coerce: bool }

truth:
  coerce: bool
  if: __if__

logic:
  and: __logand__
  or: __logor__

comparisons:
  "<": __lt__
  ">": __gt__
  "==": __eq__
  "!=": __ne__
  "<=": __le__
  ">=": __ge__
  "in": __in__
  "not in": __notin__
  "is": __is__
  "is not": __isnot__

augmented:
  "+=": __add__
  "-=": __sub__
  "*=": __mul__
  "/=": __truediv__
  "//=": __floordiv__
  "%=": __mod__
  "**=": __pow__
  "<<=": __lshift__
  ">>=": __rshift__
  "&=": __and__
  "|=": __or__
  "^=": __xor__

items:
  get: __getitem__
  set: __setitem__
  del: __delitem__
  slice: slice

metadata:
  function: [__name__, __qualname__, __doc__, __module__]
  class: [__name__, __qualname__, __doc__, __module__]

options:
  expandDecorators: true
  flattenElifs: false
  tempPrefix: _t
`
