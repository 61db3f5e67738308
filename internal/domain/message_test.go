package domain

import "testing"

func TestSourcesLine(t *testing.T) {
	cases := []struct {
		name    string
		sources []string
		want    string
	}{
		{name: "nil", sources: nil, want: ""},
		{name: "empty", sources: []string{}, want: ""},
		{name: "single path", sources: []string{"a/b/c.txt"}, want: "Sources: c.txt"},
		{name: "keeps order", sources: []string{"docs/z.md", "docs/policies/a.pdf"}, want: "Sources: z.md, a.pdf"},
		{name: "no slash", sources: []string{"claims.txt"}, want: "Sources: claims.txt"},
		{name: "trailing slash", sources: []string{"data/raw/"}, want: "Sources: "},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := SourcesLine(c.sources); got != c.want {
				t.Fatalf("expected %q, got %q", c.want, got)
			}
		})
	}
}

func TestMessageHasSources(t *testing.T) {
	if (Message{Sender: SenderAssistant}).HasSources() {
		t.Fatalf("expected no sources for empty list")
	}
	if (Message{Sender: SenderUser, Sources: []string{"x"}}).HasSources() {
		t.Fatalf("user messages never show sources")
	}
	if !(Message{Sender: SenderAssistant, Sources: []string{"x"}}).HasSources() {
		t.Fatalf("expected sources for assistant message")
	}
}
