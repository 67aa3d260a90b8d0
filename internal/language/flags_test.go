package language

import "testing"

func TestCodeForFlag(t *testing.T) {
	t.Parallel()

	code, ok := CodeForFlag("🇻🇳")
	if !ok || code != "vi" {
		t.Fatalf("unexpected resolution for 🇻🇳: %q %v", code, ok)
	}
	code, ok = CodeForFlag(" 🇧🇷 ")
	if !ok || code != "pt" {
		t.Fatalf("unexpected resolution for 🇧🇷: %q %v", code, ok)
	}
	if _, ok := CodeForFlag("🏴‍☠️"); ok {
		t.Fatalf("did not expect unknown flag to resolve")
	}
}

func TestCodesAreDistinctAndSorted(t *testing.T) {
	t.Parallel()

	codes := Codes()
	if len(codes) == 0 {
		t.Fatalf("expected at least one language code")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("codes are not strictly sorted at %d: %q >= %q", i, codes[i-1], codes[i])
		}
	}
}

func TestFlagsReturnsCopy(t *testing.T) {
	t.Parallel()

	flags := Flags()
	flags["🇻🇳"] = "xx"

	code, _ := CodeForFlag("🇻🇳")
	if code != "vi" {
		t.Fatalf("mutating the returned map leaked into the table: %q", code)
	}
}
