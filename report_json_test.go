package cildiff

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPrintDiffTreeJSONSchemaShape(t *testing.T) {
	left := BuildComparisonRoot(block("b", namedType("a_t")))
	right := BuildComparisonRoot(block("b", namedType("z_t")))
	tree := CompareRoots(left, right)

	var buf bytes.Buffer
	if err := PrintDiffTreeJSON(&buf, tree, false); err != nil {
		t.Fatalf("PrintDiffTreeJSON returned an error: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("expected valid JSON, got decode error: %v (body: %s)", err, buf.String())
	}
	for _, key := range []string{"left", "right", "diffs", "children"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("expected top-level key %q in the JSON report, got keys %v", key, keysOf(doc))
		}
	}

	diffs := doc["diffs"].([]interface{})
	if len(diffs) != 2 {
		t.Fatalf("expected 2 diff entries (one delete, one add), got %d", len(diffs))
	}
	for _, raw := range diffs {
		d := raw.(map[string]interface{})
		if d["side"] != "LEFT" && d["side"] != "RIGHT" {
			t.Fatalf("expected side to be LEFT or RIGHT, got %v", d["side"])
		}
		if d["description"] != nil {
			t.Fatalf("expected an empty description to serialize as JSON null, got %v", d["description"])
		}
		node := d["node"].(map[string]interface{})
		if node["flavor"] != "type" {
			t.Fatalf("expected the changed node's flavor to be \"type\", got %v", node["flavor"])
		}
	}
}

func TestPrintDiffTreeJSONPrettyIndents(t *testing.T) {
	left := BuildComparisonRoot(namedType("a_t"))
	right := BuildComparisonRoot(namedType("a_t"))
	tree := CompareRoots(left, right)

	var buf bytes.Buffer
	if err := PrintDiffTreeJSON(&buf, tree, true); err != nil {
		t.Fatalf("PrintDiffTreeJSON returned an error: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("\n  ")) {
		t.Fatal("expected pretty output to contain indentation")
	}
}

func TestPrintDiffTreeJSONIdenticalInputsHaveEmptyArrays(t *testing.T) {
	left := BuildComparisonRoot(namedType("a_t"))
	right := BuildComparisonRoot(namedType("a_t"))
	tree := CompareRoots(left, right)

	var buf bytes.Buffer
	if err := PrintDiffTreeJSON(&buf, tree, false); err != nil {
		t.Fatalf("PrintDiffTreeJSON returned an error: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("expected valid JSON, got decode error: %v", err)
	}

	want := map[string]interface{}{
		"diffs":    []interface{}{},
		"children": []interface{}{},
	}
	got := map[string]interface{}{
		"diffs":    doc["diffs"],
		"children": doc["children"],
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("identical inputs produced a non-empty diffs/children shape (-want +got):\n%s", diff)
	}
}

func keysOf(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
