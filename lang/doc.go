// Package lang compiles localization resources into callable
// entities. A resource is a flat sequence of entity and macro
// definitions; compilation turns each definition into an immutable,
// reusable value that resolves to text on demand, against a context
// and variable set the caller supplies per call.
//
// # Model
//
// Entities carry a value, an optional default selector index, and
// named attributes. Values select among plural or variant branches
// through hash and array literals driven by an index cursor, and
// interpolate expressions into strings. Macros are parametric
// entries invoked from expressions. Nothing evaluates at compile
// time: every reference binds late, so the same compiled resource
// serves any context.
//
// # Grammar
//
// Informal EBNF:
//
//	Resource    → (Entity | Macro | Comment | Import)* EOF
//	Entity      → '<' Identifier Index? Value? Attribute* '>'
//	Macro       → '<' Identifier '(' ('$' Identifier)* ')' '{' Expression '}' '>'
//	Attribute   → Identifier Index? ':' Value
//	Index       → '[' Expression (',' Expression)* ']'
//	Value       → String | Hash | Array
//	Hash        → '{' '*'? Identifier ':' Value (',' '*'? Identifier ':' Value)* ','? '}'
//	Array       → '[' Value (',' Value)* ','? ']'
//	String      → '"' (chars | '{' Expression '}')* '"'
//	Comment     → '/*' text '*/'
//	Import      → 'import' '(' String ')'
//
// Expressions support conditional (?:), logical (&&, ||), equality,
// relational, additive, and multiplicative operators, unary -, +,
// and !, member access (entry.member, entry[expr]), attribute access
// (entry::attr), and macro calls. $name reads caller data, @name
// reads globals, and ~ is the enclosing entity. Index brackets must
// follow the identifier without whitespace; after whitespace, '['
// opens an array value.
//
// # Example
//
//	/* plural selection via a macro */
//	<plural($n) { $n == 1 ? "one" : "many" }>
//	<mailboxes[plural($count)] {
//	  one:   "You have one new message",
//	  *many: "You have { $count } new messages",
//	}
//	 title: "Mail">
//
// Resolving:
//
//	res, _ := lang.CompileString(ctx, source)
//	box, _ := res.Entity("mailboxes")
//	s, _ := box.Get(res.Context(nil, lang.CoreBuiltins()), lang.Vars{"count": 5})
//	// s == "You have 5 new messages"
//
// # Resolution
//
// Every public operation (Get, GetAttribute, GetAttributes,
// GetEntity, Macro.Call) roots a fresh resolution: its own locals,
// cycle guard, and step budget. Compiled values share no mutable
// state, so one resource may resolve concurrently from any number of
// goroutines. Reference cycles fail with ErrCyclicReference; any
// resolution that outlives the step budget fails with ErrStepLimit.
//
// Lookups that find no binding produce an undefined value carrying
// the symbol name, which fails with ErrTypeMismatch only when text
// is finally demanded of it. Selector lookups never fail: a missing
// or falsy key falls back to the branch marked '*', or the first
// branch when none is marked.
package lang
