package tree

import (
	"strings"
	"testing"
)

func TestCreateNode(t *testing.T) {
	tr := New("<root>", "0")

	if err := tr.CreateNode("[#1] Production", "1", "0"); err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	if err := tr.CreateNode("[#2] Prices", "2", "0"); err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	if err := tr.CreateNode("[GNPCA] Real GNP", "1/GNPCA", "1"); err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}

	if tr.Size() != 4 {
		t.Errorf("Size = %d, want 4", tr.Size())
	}
	n, ok := tr.Node("1/GNPCA")
	if !ok {
		t.Fatal("node 1/GNPCA not found")
	}
	if n.Parent == nil || n.Parent.ID != "1" {
		t.Error("parent link not set to owning category")
	}
}

func TestCreateNodeErrors(t *testing.T) {
	tr := New("<root>", "0")
	if err := tr.CreateNode("x", "1", "missing"); err == nil {
		t.Error("expected error for unknown parent")
	}
	if err := tr.CreateNode("x", "0", "0"); err == nil {
		t.Error("expected error for duplicate identifier")
	}
}

func TestAnonymousNodes(t *testing.T) {
	tr := New("<root>", "0")
	if err := tr.CreateNode("plus 400 additional series...", "", "0"); err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	if err := tr.CreateNode("plus 12 additional series...", "", "0"); err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	if tr.Size() != 3 {
		t.Errorf("Size = %d, want 3", tr.Size())
	}
}

func TestAppendLabel(t *testing.T) {
	tr := New("<root>", "0")
	if err := tr.CreateNode("[#1] Production", "1", "0"); err != nil {
		t.Fatal(err)
	}

	if err := tr.AppendLabel("1", ", contains 2/5 categories"); err != nil {
		t.Fatalf("AppendLabel failed: %v", err)
	}
	n, _ := tr.Node("1")
	if n.Label != "[#1] Production, contains 2/5 categories" {
		t.Errorf("label = %q", n.Label)
	}

	if err := tr.AppendLabel("missing", "x"); err == nil {
		t.Error("expected error for unknown node")
	}
}

func TestRenderOrderAndIndent(t *testing.T) {
	tr := New("<root>", "0")
	tr.CreateNode("first", "1", "0")
	tr.CreateNode("second", "2", "0")
	tr.CreateNode("nested", "1/a", "1")

	var sb strings.Builder
	if err := tr.Render(&sb); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	want := "<root>\n" +
		"    first\n" +
		"        nested\n" +
		"    second\n"
	if sb.String() != want {
		t.Errorf("render = %q, want %q", sb.String(), want)
	}
}
