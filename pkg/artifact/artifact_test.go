package artifact

import "testing"

func TestNewComputesHashes(t *testing.T) {
	a := New("hello", "anthropic", "claude-3-5-haiku-latest", "prompt")
	if a.ID == "" {
		t.Fatalf("expected id")
	}
	if len(a.Hash) != 16 {
		t.Fatalf("unexpected hash length: %q", a.Hash)
	}
	if a.PromptHash != HashString("prompt") {
		t.Fatalf("unexpected prompt hash: %q", a.PromptHash)
	}
}

func TestWithContentDoesNotMutateOriginal(t *testing.T) {
	a := New("  padded  ", "google", "gemini-2.5-flash", "p")
	b := a.WithContent("padded")

	if a.Content != "  padded  " {
		t.Fatalf("original mutated: %q", a.Content)
	}
	if b.Content != "padded" {
		t.Fatalf("unexpected content: %q", b.Content)
	}
	if a.Hash == b.Hash {
		t.Fatalf("expected hash to change with content")
	}
	if a.ID != b.ID {
		t.Fatalf("expected id to be preserved")
	}
}
