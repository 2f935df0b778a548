package lang

import (
	"encoding/json"
	"testing"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindIdentifier, "Identifier"},
		{KindThis, "This"},
		{KindVariable, "Variable"},
		{KindGlobal, "Global"},
		{KindNumber, "Number"},
		{KindString, "String"},
		{KindArray, "Array"},
		{KindHash, "Hash"},
		{KindHashItem, "HashItem"},
		{KindInterpolation, "Interpolation"},
		{KindUnary, "Unary"},
		{KindBinary, "Binary"},
		{KindLogical, "Logical"},
		{KindConditional, "Conditional"},
		{KindCall, "Call"},
		{KindProperty, "Property"},
		{KindAttributeAccess, "AttributeAccess"},
		{KindEntity, "Entity"},
		{KindAttributeDef, "AttributeDef"},
		{KindMacro, "Macro"},
		{KindComment, "Comment"},
		{KindImport, "Import"},
		{KindInvalid, "Invalid"},
		{Kind(-1), "Invalid"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestKind_MarshalText(t *testing.T) {
	data, err := json.Marshal(KindEntity)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	if string(data) != `"Entity"` {
		t.Errorf("Marshal(KindEntity) = %s, want %q", data, "Entity")
	}
}

func TestNode_MarshalJSON_Entity(t *testing.T) {
	tree, err := ParseString(t.Context(), `<_e[$i] "v" a: "x">`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	data, err := json.Marshal(tree.Nodes[0])
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got["kind"] != "Entity" || got["id"] != "_e" || got["local"] != true {
		t.Errorf("entity fields = %v", got)
	}

	for _, key := range []string{"value", "index", "attributes"} {
		if _, ok := got[key]; !ok {
			t.Errorf("entity JSON missing %q: %v", key, got)
		}
	}
}

func TestNode_MarshalJSON_HashDefault(t *testing.T) {
	tree, err := ParseString(t.Context(), `<e { a: "1", *b: "2" }>`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	hash := tree.Nodes[0].X

	data, err := json.Marshal(hash)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got struct {
		Kind  string `json:"kind"`
		Items []struct {
			Key     string `json:"key"`
			Default bool   `json:"default"`
		} `json:"items"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got.Kind != "Hash" || len(got.Items) != 2 {
		t.Fatalf("hash JSON = %s", data)
	}

	if got.Items[0].Default || !got.Items[1].Default {
		t.Errorf("default markers = %v, want only the second item", got.Items)
	}
}

func TestNode_MarshalJSON_Macro(t *testing.T) {
	tree, err := ParseString(t.Context(), `<f($a, $b) { $a + $b }>`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	data, err := json.Marshal(tree.Nodes[0])
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got struct {
		Kind   string   `json:"kind"`
		ID     string   `json:"id"`
		Params []string `json:"params"`
		Body   struct {
			Kind string `json:"kind"`
			Op   string `json:"op"`
		} `json:"body"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got.Kind != "Macro" || got.ID != "f" {
		t.Errorf("macro fields = %s", data)
	}

	if len(got.Params) != 2 || got.Params[0] != "a" || got.Params[1] != "b" {
		t.Errorf("params = %v, want [a b]", got.Params)
	}

	if got.Body.Kind != "Binary" || got.Body.Op != "+" {
		t.Errorf("body = %+v, want a + expression", got.Body)
	}
}

func TestAST_All(t *testing.T) {
	tree, err := ParseString(t.Context(), `
		<a "1">
		<b "2">
		<c "3">
	`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var count int
	for range tree.All() {
		count++
	}

	if count != 3 {
		t.Errorf("All() yielded %d nodes, want 3", count)
	}

	// Early break stops the iteration.
	count = 0
	for range tree.All() {
		count++

		break
	}

	if count != 1 {
		t.Errorf("All() yielded %d nodes after break, want 1", count)
	}
}

func TestAST_Imports(t *testing.T) {
	tree, err := ParseString(t.Context(), `
		import("base.lent")
		<e "v">
		import("extra.lent")
	`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	got := tree.Imports()
	if len(got) != 2 || got[0] != "base.lent" || got[1] != "extra.lent" {
		t.Errorf("Imports() = %v, want [base.lent extra.lent]", got)
	}

	bare, err := ParseString(t.Context(), `<e "v">`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if got := bare.Imports(); len(got) != 0 {
		t.Errorf("Imports() = %v, want none", got)
	}
}

func TestOptions_StepLimitFloor(t *testing.T) {
	if o := applyOptions(WithStepLimit(0)); o.stepLimit != DefaultStepLimit {
		t.Errorf("stepLimit = %d, want DefaultStepLimit", o.stepLimit)
	}

	if o := applyOptions(WithStepLimit(77)); o.stepLimit != 77 {
		t.Errorf("stepLimit = %d, want 77", o.stepLimit)
	}

	if o := applyOptions(); o.stepLimit != DefaultStepLimit {
		t.Errorf("default stepLimit = %d, want DefaultStepLimit", o.stepLimit)
	}
}
