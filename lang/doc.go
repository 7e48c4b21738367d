// Package lang implements the fns scripting language: a lexer, a
// precedence-climbing parser producing a syntax tree, and a tree-walking
// evaluator over a chain of binding scopes.
//
// # Grammar
//
// Informal EBNF:
//
//	Program     → Statement* EOF
//	Statement   → ('let' | 'const') Identifier '=' Expression
//	            | Expression
//	Expression  → Identifier '=' Expression
//	            | Binary
//	Binary      → Unary (BinaryOp Unary)*   // precedence climbing
//	Unary       → ('-' | '+' | '!') Unary | Postfix
//	Postfix     → Primary ('.' Identifier)*
//	Primary     → Number | String | 'true' | 'false' | 'none'
//	            | Identifier | '(' Expression ')' | Object
//	Object      → '{' (Identifier ':' Expression (',' Identifier ':' Expression)*)? '}'
//
// Binary operators from loosest to tightest:
//
//	||
//	&&
//	== !=
//	< <= > >=
//	+ -
//	* /
//
// All binary operators are left-associative. Assignment is
// right-associative and looser than every binary operator. Strings are
// delimited by matching " or ' characters, have no escape sequences, and
// may span lines. Line comments begin with //.
//
// # Example
//
//	const tax = 0.08
//	let cart = { subtotal: 40, shipping: 5 }
//	let total = cart.subtotal * (1 + tax) + cart.shipping
//	total > 45 && "free gift"
//
// # Values
//
// Runtime values are Number (float64), String, Boolean, None, and *Object,
// an insertion-ordered mapping from names to values. The values none,
// false, 0, and "" are falsy; all others are truthy. The logical operators
// short-circuit and always produce a Boolean.
//
// # Scoping
//
// Scopes are chained, innermost shadows outermost:
//
//  1. Builtins (fns, math)
//  2. Host bindings (WithBindings, WithConstants) and program declarations
//
// Declarations bind in the innermost scope, replacing any binding of the
// same name there. Assignment updates the nearest
// existing binding and fails for constants.
package lang
