package transform

import "testing"

const testBase = "https://img.example.com/render"

func TestURLShouldIncludeSizeAndAssetID(t *testing.T) {
	got := URL(testBase, "asset123", 1000, 1334, Config{"fillBackground": true})
	want := "https://img.example.com/render/w_1000,h_1334/b_gen_fill/asset123"

	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestURLWithoutDimensionsShouldSkipSizeSegment(t *testing.T) {
	got := URL(testBase, "asset123", 0, 0, Config{"restore": true})
	want := "https://img.example.com/render/e_gen_restore/asset123"

	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestURLRemoveShouldEncodePromptAndFlags(t *testing.T) {
	cfg := Config{"remove": map[string]any{
		"prompt":       "street sign",
		"removeShadow": true,
		"multiple":     true,
	}}

	got := URL(testBase, "a1", 0, 0, cfg)
	want := "https://img.example.com/render/e_gen_remove:prompt_street%20sign;remove-shadow_true;multiple_true/a1"

	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestURLRecolorShouldIncludeTargetColor(t *testing.T) {
	cfg := Config{"recolor": map[string]any{"prompt": "car", "to": "red"}}

	got := URL(testBase, "a1", 0, 0, cfg)
	want := "https://img.example.com/render/e_gen_recolor:prompt_car;to-color_red/a1"

	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestURLAccumulatedConfigShouldEmitSegmentsInFixedOrder(t *testing.T) {
	cfg := Config{"removeBackground": true, "restore": true}

	got := URL(testBase, "a1", 500, 500, cfg)
	want := "https://img.example.com/render/w_500,h_500/e_gen_restore/e_background_removal/a1"

	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
