package lang

import (
	"encoding/json"
	"iter"

	"github.com/ardnew/lent/log"
)

// Position identifies a location in source text.
type Position struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// AST is the parsed form of a localization resource: an ordered sequence of
// top-level definition nodes. It is the input contract of [Compile], and any
// producer that builds an equivalent tree can substitute for the parser in
// this package.
//
// An AST is immutable once parsed. The compiler never modifies it, so one
// tree can back any number of compiled resources.
type AST struct {
	Nodes []*Node
}

// All returns an iterator over all top-level nodes in the AST.
func (ast *AST) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, n := range ast.Nodes {
			if !yield(n) {
				return
			}
		}
	}
}

// Imports returns the resource paths named by import statements, in
// source order. The compiler does not load them; hosts that support
// imports parse each path and compile the concatenated trees.
func (ast *AST) Imports() []string {
	var paths []string
	for _, n := range ast.Nodes {
		if n.Kind == KindImport {
			paths = append(paths, n.Text)
		}
	}
	return paths
}

// Node is a single syntax-tree node, tagged by Kind.
// Only the fields documented for a node's Kind are meaningful; all others
// hold their zero value.
type Node struct {
	Kind Kind
	Pos  Position

	// Name holds identifier-like payloads: the referenced name for
	// KindIdentifier, KindVariable, and KindGlobal; the key for KindHashItem;
	// and the definition id for KindEntity, KindAttributeDef, and KindMacro.
	Name string

	// Text holds the content of KindString and KindComment nodes and the
	// resource path of KindImport nodes.
	Text string

	// Number holds the value of KindNumber nodes.
	Number float64

	// Op holds the operator token for KindUnary, KindBinary, and KindLogical.
	Op string

	// Default marks a KindHashItem as the explicit default branch.
	Default bool

	// Local marks a definition as private to its resource.
	Local bool

	// Params holds the ordered parameter names of a KindMacro definition.
	Params []string

	// List holds ordered children: elements of KindArray, items of KindHash,
	// parts of KindInterpolation, arguments of KindCall, and attribute
	// definitions of KindEntity.
	List []*Node

	// Index holds the default index expressions of a KindEntity or
	// KindAttributeDef definition.
	Index []*Node

	// X, Y, and Z hold operands. Unary: X. Binary and logical: X, Y.
	// Conditional: test X, consequent Y, alternate Z. Call: callee X.
	// Property and attribute access: base X, member Y. Definitions: value
	// or body X. Hash item: value X.
	X *Node
	Y *Node
	Z *Node
}

// Kind discriminates the closed set of syntax-node variants.
type Kind int

const (
	// KindInvalid is the zero Kind and matches no valid node.
	KindInvalid Kind = iota

	// KindIdentifier references another entry by name.
	KindIdentifier

	// KindThis references the entity whose resolution is in progress.
	KindThis

	// KindVariable references a per-call variable ($name).
	KindVariable

	// KindGlobal references a context global (@name).
	KindGlobal

	// KindNumber is a numeric literal.
	KindNumber

	// KindString is a string literal with no embedded expressions.
	KindString

	// KindArray is an ordered selector literal.
	KindArray

	// KindHash is a keyed selector literal.
	KindHash

	// KindHashItem is a single key-value branch of a hash.
	KindHashItem

	// KindInterpolation is a string with embedded expressions.
	KindInterpolation

	// KindUnary is a unary operator expression.
	KindUnary

	// KindBinary is a binary operator expression.
	KindBinary

	// KindLogical is a logical operator expression (&&, ||).
	KindLogical

	// KindConditional is a ternary conditional expression.
	KindConditional

	// KindCall is a callable invocation.
	KindCall

	// KindProperty is member access on a selector or entry (base.member).
	KindProperty

	// KindAttributeAccess is attribute access on an entity (base::member).
	KindAttributeAccess

	// KindEntity is a top-level entity definition.
	KindEntity

	// KindAttributeDef is an attribute definition owned by an entity.
	KindAttributeDef

	// KindMacro is a top-level macro definition.
	KindMacro

	// KindComment is a top-level comment.
	KindComment

	// KindImport is a top-level import directive.
	KindImport
)

// String returns a string representation of the node kind.
func (k Kind) String() string {
	switch k {
	case KindIdentifier:
		return "Identifier"

	case KindThis:
		return "This"

	case KindVariable:
		return "Variable"

	case KindGlobal:
		return "Global"

	case KindNumber:
		return "Number"

	case KindString:
		return "String"

	case KindArray:
		return "Array"

	case KindHash:
		return "Hash"

	case KindHashItem:
		return "HashItem"

	case KindInterpolation:
		return "Interpolation"

	case KindUnary:
		return "Unary"

	case KindBinary:
		return "Binary"

	case KindLogical:
		return "Logical"

	case KindConditional:
		return "Conditional"

	case KindCall:
		return "Call"

	case KindProperty:
		return "Property"

	case KindAttributeAccess:
		return "AttributeAccess"

	case KindEntity:
		return "Entity"

	case KindAttributeDef:
		return "AttributeDef"

	case KindMacro:
		return "Macro"

	case KindComment:
		return "Comment"

	case KindImport:
		return "Import"

	default:
		return "Invalid"
	}
}

// MarshalText implements encoding.TextMarshaler so kinds appear by name in
// JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// MarshalJSON implements json.Marshaler.
// Only the fields meaningful for the node's kind are emitted, which keeps
// syntax dumps compact.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"kind": n.Kind,
	}

	switch n.Kind {
	case KindIdentifier, KindVariable, KindGlobal:
		out["name"] = n.Name

	case KindThis:
		// Kind alone is sufficient.

	case KindNumber:
		out["number"] = n.Number

	case KindString, KindComment, KindImport:
		out["text"] = n.Text

	case KindArray:
		out["elements"] = n.List

	case KindHash:
		out["items"] = n.List

	case KindHashItem:
		out["key"] = n.Name
		out["value"] = n.X

		if n.Default {
			out["default"] = true
		}

	case KindInterpolation:
		out["parts"] = n.List

	case KindUnary:
		out["op"] = n.Op
		out["operand"] = n.X

	case KindBinary, KindLogical:
		out["op"] = n.Op
		out["left"] = n.X
		out["right"] = n.Y

	case KindConditional:
		out["test"] = n.X
		out["consequent"] = n.Y
		out["alternate"] = n.Z

	case KindCall:
		out["callee"] = n.X
		out["args"] = n.List

	case KindProperty, KindAttributeAccess:
		out["base"] = n.X
		out["member"] = n.Y

	case KindEntity:
		out["id"] = n.Name
		out["value"] = n.X

		if len(n.Index) > 0 {
			out["index"] = n.Index
		}

		if len(n.List) > 0 {
			out["attributes"] = n.List
		}

		if n.Local {
			out["local"] = true
		}

	case KindAttributeDef:
		out["id"] = n.Name
		out["value"] = n.X

		if n.Local {
			out["local"] = true
		}

	case KindMacro:
		out["id"] = n.Name
		out["params"] = n.Params
		out["body"] = n.X

		if n.Local {
			out["local"] = true
		}
	}

	return json.Marshal(out)
}

// DefaultStepLimit bounds the number of deferred-evaluation steps a single
// resolution may take before failing with [ErrStepLimit].
// Users may override it per resource with [WithStepLimit].
const DefaultStepLimit = 512

// options holds configuration shared by parsing and compilation.
type options struct {
	logger    log.Logger
	stepLimit int
}

// Option configures parsing or compilation behavior.
type Option func(*options)

// WithLogger sets the structured logger used for diagnostics.
// The default is the package-level logger from [log].
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStepLimit sets the maximum number of deferred-evaluation steps per
// resolution. Values less than one restore [DefaultStepLimit].
func WithStepLimit(limit int) Option {
	return func(o *options) {
		if limit < 1 {
			limit = DefaultStepLimit
		}

		o.stepLimit = limit
	}
}

// applyDefaults populates an options struct with default values.
func applyDefaults() options {
	return options{
		logger:    log.Default(),
		stepLimit: DefaultStepLimit,
	}
}

// applyOptions applies the given options over the defaults.
func applyOptions(opts ...Option) options {
	o := applyDefaults()

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
