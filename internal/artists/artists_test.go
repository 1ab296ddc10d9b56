package artists

import "testing"

func TestExtractMentions_CaseInsensitive(t *testing.T) {
	text := "SHENSEEA and popcaan teamed up with Burna Boy on the new riddim."
	got := ExtractMentions(text)

	want := map[string]bool{"Shenseea": true, "Popcaan": true, "Burna Boy": true}
	if len(got) != len(want) {
		t.Fatalf("got %v, want exactly %d artists", got, len(want))
	}
	for _, name := range got {
		if !want[name] {
			t.Errorf("unexpected artist %q in %v", name, got)
		}
	}
}

func TestExtractMentions_CanonicalOnce(t *testing.T) {
	text := "Koffee wins again. koffee celebrated in Kingston. KOFFEE fans rejoice."
	got := ExtractMentions(text)
	if len(got) != 1 || got[0] != "Koffee" {
		t.Errorf("expected single canonical mention, got %v", got)
	}
}

func TestExtractMentions_None(t *testing.T) {
	if got := ExtractMentions("Parliament passed the education bill today."); len(got) != 0 {
		t.Errorf("expected no mentions, got %v", got)
	}
}

func TestExtractMentions_Deterministic(t *testing.T) {
	text := "Machel Montano joined Stonebwoy and Sean Paul on stage."
	first := ExtractMentions(text)
	for i := 0; i < 10; i++ {
		again := ExtractMentions(text)
		if len(again) != len(first) {
			t.Fatalf("unstable result length: %v vs %v", again, first)
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("unstable order: %v vs %v", again, first)
			}
		}
	}
}

func TestIsKnown(t *testing.T) {
	if !IsKnown("Vybz Kartel") {
		t.Error("Vybz Kartel should be in the catalog")
	}
	if !IsKnown("vybz kartel") {
		t.Error("lookup should be case-insensitive")
	}
	if IsKnown("Unknown Person") {
		t.Error("Unknown Person should not be in the catalog")
	}
}
