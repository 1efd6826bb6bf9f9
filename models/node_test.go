package models_test

import (
	"testing"

	"github.com/aallbrig/hawkbot/models"
)

func TestNodeFullCommand(t *testing.T) {
	n := &models.Node{Name: "set", FullPath: []string{"config", "prefix", "set"}}
	if got := n.FullCommand(); got != "config prefix set" {
		t.Errorf("FullCommand() = %q, want %q", got, "config prefix set")
	}
}

func TestNodeFullCommandNoPath(t *testing.T) {
	n := &models.Node{Name: "ping"}
	if got := n.FullCommand(); got != "ping" {
		t.Errorf("FullCommand() = %q, want %q", got, "ping")
	}
}

func TestNodeIsLeaf(t *testing.T) {
	leaf := &models.Node{Name: "guess"}
	if !leaf.IsLeaf() {
		t.Error("expected leaf node")
	}
	parent := &models.Node{Name: "rquote", Children: []*models.Node{leaf}}
	if parent.IsLeaf() {
		t.Error("expected non-leaf node")
	}
}

func TestNodeFindAndLookup(t *testing.T) {
	tree := &models.Node{
		Name: "hawkbot",
		Children: []*models.Node{
			{Name: "config", Children: []*models.Node{
				{Name: "prefix", Children: []*models.Node{{Name: "set"}}},
			}},
		},
	}
	if found := tree.Find("config"); found == nil {
		t.Error("expected to find 'config'")
	}
	if found := tree.Find("nonexistent"); found != nil {
		t.Error("expected nil for nonexistent child")
	}
	if found := tree.Lookup("config", "prefix", "set"); found == nil || found.Name != "set" {
		t.Errorf("Lookup(config prefix set) = %v", found)
	}
	if found := tree.Lookup("config", "nope"); found != nil {
		t.Error("expected nil for missing path")
	}
}

func TestNodeWalk(t *testing.T) {
	tree := &models.Node{
		Name: "hawkbot",
		Children: []*models.Node{
			{Name: "ping"},
			{Name: "mstats", Children: []*models.Node{{Name: "plot"}}},
		},
	}
	var names []string
	tree.Walk(func(n *models.Node) { names = append(names, n.Name) })
	expected := []string{"hawkbot", "ping", "mstats", "plot"}
	if len(names) != len(expected) {
		t.Fatalf("Walk() visited %d nodes, want %d", len(names), len(expected))
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("Walk() visited[%d] = %q, want %q", i, names[i], name)
		}
	}
}

func TestNodeClone(t *testing.T) {
	orig := &models.Node{
		Name:     "generate",
		FullPath: []string{"generate"},
		Aliases:  []string{"gen"},
		Params:   []models.ParamInfo{{Name: "count", Kind: "count"}},
		Children: []*models.Node{{Name: "child"}},
	}
	clone := orig.Clone()
	if clone.Name != orig.Name {
		t.Errorf("Clone().Name = %q, want %q", clone.Name, orig.Name)
	}
	clone.Name = "modified"
	clone.Params[0].Name = "changed"
	clone.Aliases[0] = "g"
	if orig.Name == "modified" || orig.Params[0].Name == "changed" || orig.Aliases[0] == "g" {
		t.Error("modifying clone affected original")
	}
}

func TestNodeHasParams(t *testing.T) {
	n := &models.Node{Name: "gdrive", Params: []models.ParamInfo{{Name: "url"}}}
	if !n.HasParams() {
		t.Error("expected HasParams() = true")
	}
	empty := &models.Node{Name: "ping"}
	if empty.HasParams() {
		t.Error("expected HasParams() = false")
	}
}
