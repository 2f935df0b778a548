package lang

import (
	"errors"
	"testing"
)

func TestEntityGetAttribute_Basic(t *testing.T) {
	res := compileSource(t, `<contact "Contact" phone: "555-0100" email: "a@b.c">`)
	ent := getEntity(t, res, "contact")

	phone, err := ent.GetAttribute(nil, nil, "phone")
	if err != nil {
		t.Fatalf("GetAttribute(phone) error = %v", err)
	}

	if phone != "555-0100" {
		t.Errorf("GetAttribute(phone) = %q, want %q", phone, "555-0100")
	}

	email, err := ent.GetAttribute(nil, nil, "email")
	if err != nil {
		t.Fatalf("GetAttribute(email) error = %v", err)
	}

	if email != "a@b.c" {
		t.Errorf("GetAttribute(email) = %q, want %q", email, "a@b.c")
	}
}

func TestEntityGetAttribute_OwnIndex(t *testing.T) {
	res := compileSource(t, `
		<greet[$form] { *formal: "Hello" }
			short[$len]: { *full: "Hi there", brief: "Hi" }>
	`)
	ent := getEntity(t, res, "greet")

	got, err := ent.GetAttribute(nil, Vars{"len": "brief"}, "short")
	if err != nil {
		t.Fatalf("GetAttribute() error = %v", err)
	}

	if got != "Hi" {
		t.Errorf("GetAttribute() = %q, want %q", got, "Hi")
	}

	// Unbound key falls back to the attribute's default branch.
	got, err = ent.GetAttribute(nil, nil, "short")
	if err != nil {
		t.Fatalf("GetAttribute() error = %v", err)
	}

	if got != "Hi there" {
		t.Errorf("GetAttribute() = %q, want %q", got, "Hi there")
	}
}

func TestEntityGetAttribute_InheritsEntityIndex(t *testing.T) {
	res := compileSource(t, `
		<msg[$p] { *other: "O" }
			label: { one: "L1", *other: "LO" }>
	`)
	ent := getEntity(t, res, "msg")

	// An attribute without an index shares the entity's.
	got, err := ent.GetAttribute(nil, Vars{"p": "one"}, "label")
	if err != nil {
		t.Fatalf("GetAttribute() error = %v", err)
	}

	if got != "L1" {
		t.Errorf("GetAttribute() = %q, want %q", got, "L1")
	}

	got, err = ent.GetAttribute(nil, nil, "label")
	if err != nil {
		t.Fatalf("GetAttribute() error = %v", err)
	}

	if got != "LO" {
		t.Errorf("GetAttribute() = %q, want %q", got, "LO")
	}
}

func TestEntityGetAttribute_ExplicitIndexOverride(t *testing.T) {
	res := compileSource(t, `
		<msg[$p] { *other: "O" }
			label: { one: "L1", *other: "LO" }>
	`)

	got, err := getEntity(t, res, "msg").GetAttribute(nil, Vars{"p": "one"}, "label", "other")
	if err != nil {
		t.Fatalf("GetAttribute() error = %v", err)
	}

	if got != "LO" {
		t.Errorf("GetAttribute() = %q, want %q", got, "LO")
	}
}

func TestEntityGetAttribute_SharedThis(t *testing.T) {
	res := compileSource(t, `<disk "sda" dev: "/dev/{ ~ }" mnt: "{ ~ } mounted">`)
	ent := getEntity(t, res, "disk")

	dev, err := ent.GetAttribute(nil, nil, "dev")
	if err != nil {
		t.Fatalf("GetAttribute(dev) error = %v", err)
	}

	if dev != "/dev/sda" {
		t.Errorf("GetAttribute(dev) = %q, want %q", dev, "/dev/sda")
	}

	mnt, err := ent.GetAttribute(nil, nil, "mnt")
	if err != nil {
		t.Fatalf("GetAttribute(mnt) error = %v", err)
	}

	if mnt != "sda mounted" {
		t.Errorf("GetAttribute(mnt) = %q, want %q", mnt, "sda mounted")
	}
}

func TestEntityGetAttributes_SkipsLocal(t *testing.T) {
	res := compileSource(t, `<e "v" pub: "P" _priv: "X">`)
	ent := getEntity(t, res, "e")

	attrs, err := ent.GetAttributes(nil, nil)
	if err != nil {
		t.Fatalf("GetAttributes() error = %v", err)
	}

	if len(attrs) != 1 {
		t.Fatalf("GetAttributes() returned %d attributes, want 1", len(attrs))
	}

	if attrs["pub"] != "P" {
		t.Errorf("attrs[pub] = %q, want %q", attrs["pub"], "P")
	}

	// Local attributes stay addressable by name.
	priv, err := ent.GetAttribute(nil, nil, "_priv")
	if err != nil {
		t.Fatalf("GetAttribute(_priv) error = %v", err)
	}

	if priv != "X" {
		t.Errorf("GetAttribute(_priv) = %q, want %q", priv, "X")
	}
}

func TestEntityGetAttributes_FailureAborts(t *testing.T) {
	res := compileSource(t, `<e "v" good: "G" bad: "{ missing }">`)

	_, err := getEntity(t, res, "e").GetAttributes(res.Context(nil), nil)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetAttributes() error = %v, want ErrTypeMismatch", err)
	}
}

func TestEntityGetEntity_Snapshot(t *testing.T) {
	res := compileSource(t, `
		<about "About { brand }" title: "Title" _note: "internal">
		<brand "Firefox">
	`)

	snap, err := getEntity(t, res, "about").GetEntity(res.Context(nil), nil)
	if err != nil {
		t.Fatalf("GetEntity() error = %v", err)
	}

	if snap.ID != "about" {
		t.Errorf("Snapshot.ID = %q, want %q", snap.ID, "about")
	}

	if snap.Value != "About Firefox" {
		t.Errorf("Snapshot.Value = %q, want %q", snap.Value, "About Firefox")
	}

	if len(snap.Attributes) != 1 || snap.Attributes["title"] != "Title" {
		t.Errorf("Snapshot.Attributes = %v, want only title", snap.Attributes)
	}
}

func TestEntityAttributes_DeclarationOrder(t *testing.T) {
	res := compileSource(t, `<e "v" c: "1" a: "2" b: "3">`)

	var ids []string
	for a := range getEntity(t, res, "e").Attributes() {
		ids = append(ids, a.ID())
	}

	want := []string{"c", "a", "b"}
	if len(ids) != len(want) {
		t.Fatalf("Attributes() yielded %d attributes, want %d", len(ids), len(want))
	}

	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("Attributes()[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestEntity_Metadata(t *testing.T) {
	res := compileSource(t, "<first \"1\">\n<_second \"2\" _hint: \"h\">")

	first := getEntity(t, res, "first")
	if first.ID() != "first" || first.Local() || !first.HasValue() {
		t.Errorf("first: ID=%q Local=%v HasValue=%v", first.ID(), first.Local(), first.HasValue())
	}

	if first.Kind() != ValueEntity {
		t.Errorf("Kind() = %v, want ValueEntity", first.Kind())
	}

	if first.Pos().Line != 1 {
		t.Errorf("first.Pos().Line = %d, want 1", first.Pos().Line)
	}

	second := getEntity(t, res, "_second")
	if !second.Local() {
		t.Error("_second.Local() = false")
	}

	if second.Pos().Line != 2 {
		t.Errorf("_second.Pos().Line = %d, want 2", second.Pos().Line)
	}

	for a := range second.Attributes() {
		if a.ID() != "_hint" || !a.Local() {
			t.Errorf("attribute: ID=%q Local=%v", a.ID(), a.Local())
		}
	}
}
