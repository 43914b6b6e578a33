package providers

import "testing"

// TestCatalogMarksDefault selects the provider default when nothing is set.
func TestCatalogMarksDefault(t *testing.T) {
	models := Catalog("", "")
	if len(models) == 0 {
		t.Fatal("expected gemini models")
	}

	selected := 0
	for _, m := range models {
		if m.Provider != ProviderGemini {
			t.Fatalf("unexpected provider %q", m.Provider)
		}
		if m.Selected {
			selected++
			if m.ID != DefaultGeminiModel {
				t.Fatalf("selected %q, want %q", m.ID, DefaultGeminiModel)
			}
		}
	}
	if selected != 1 {
		t.Fatalf("selected count = %d, want 1", selected)
	}
}

// TestCatalogFiltersByProvider returns only openai models for openai.
func TestCatalogFiltersByProvider(t *testing.T) {
	models := Catalog("OpenAI", "gpt-4o-transcribe")
	for _, m := range models {
		if m.Provider != ProviderOpenAI {
			t.Fatalf("unexpected provider %q", m.Provider)
		}
		if m.Selected != (m.ID == "gpt-4o-transcribe") {
			t.Fatalf("selection wrong for %q", m.ID)
		}
	}
}

// TestKnownModel checks membership per provider.
func TestKnownModel(t *testing.T) {
	if !KnownModel("gemini", "gemini-2.5-pro") {
		t.Fatal("gemini-2.5-pro should be known")
	}
	if KnownModel("gemini", "whisper-1") {
		t.Fatal("whisper-1 is not a gemini model")
	}
	if DefaultModel("openai") != "whisper-1" {
		t.Fatalf("openai default = %q", DefaultModel("openai"))
	}
}
