package transform

import "testing"

func TestMergeShouldPreserveSiblingTopLevelKeys(t *testing.T) {
	dst := Config{"fillBackground": true}
	src := Config{"restore": true}

	out := Merge(dst, src)

	if out["restore"] != true {
		t.Errorf("Expected restore=true, got %v", out["restore"])
	}
	if out["fillBackground"] != true {
		t.Errorf("Expected fillBackground=true, got %v", out["fillBackground"])
	}
	if len(out) != 2 {
		t.Errorf("Expected 2 keys, got %d", len(out))
	}
}

func TestMergeNestedShouldTakeNewerScalarAndKeepSiblings(t *testing.T) {
	dst := Config{"recolor": map[string]any{"to": "blue", "prompt": "car"}}
	src := Config{"recolor": map[string]any{"to": "red"}}

	out := Merge(dst, src)

	recolor, ok := out["recolor"].(map[string]any)
	if !ok {
		t.Fatalf("Expected recolor to stay a map, got %T", out["recolor"])
	}
	if recolor["to"] != "red" {
		t.Errorf("Expected newer scalar to win, got to=%v", recolor["to"])
	}
	if recolor["prompt"] != "car" {
		t.Errorf("Expected sibling key preserved, got prompt=%v", recolor["prompt"])
	}
}

func TestMergeShouldNotMutateInputs(t *testing.T) {
	dst := Config{"recolor": map[string]any{"to": "blue"}}
	src := Config{"recolor": map[string]any{"to": "red"}}

	_ = Merge(dst, src)

	if dst["recolor"].(map[string]any)["to"] != "blue" {
		t.Error("Merge mutated dst")
	}
	if src["recolor"].(map[string]any)["to"] != "red" {
		t.Error("Merge mutated src")
	}
}

func TestMergeScalarOverMapShouldTakeNewerValue(t *testing.T) {
	dst := Config{"remove": map[string]any{"prompt": "tree"}}
	src := Config{"remove": false}

	out := Merge(dst, src)

	if out["remove"] != false {
		t.Errorf("Expected scalar replacement, got %v", out["remove"])
	}
}

func TestMergeEmptyDstShouldCopySrc(t *testing.T) {
	out := Merge(nil, Config{"restore": true})

	if out["restore"] != true {
		t.Errorf("Expected restore=true, got %v", out["restore"])
	}
}
