package lexical

import "testing"

func TestParseContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "plain text passes through",
			content: "just a plain note",
			want:    "just a plain note",
		},
		{
			name:    "invalid json passes through",
			content: `{"root": not-json`,
			want:    `{"root": not-json`,
		},
		{
			name:    "paragraph with text",
			content: `{"root":{"type":"root","children":[{"type":"paragraph","children":[{"type":"text","text":"hello world"}]}]}}`,
			want:    "hello world",
		},
		{
			name:    "heading and paragraph",
			content: `{"root":{"type":"root","children":[{"type":"heading","tag":"h1","children":[{"type":"text","text":"Title"}]},{"type":"paragraph","children":[{"type":"text","text":"body"}]}]}}`,
			want:    "Title\nbody",
		},
		{
			name:    "bullet list",
			content: `{"root":{"type":"root","children":[{"type":"list","listType":"bullet","children":[{"type":"listitem","children":[{"type":"text","text":"one"}]},{"type":"listitem","children":[{"type":"text","text":"two"}]}]}]}}`,
			want:    "- one\n- two",
		},
		{
			name:    "link keeps url",
			content: `{"root":{"type":"root","children":[{"type":"paragraph","children":[{"type":"link","url":"https://example.com","children":[{"type":"text","text":"docs"}]}]}]}}`,
			want:    "docs (https://example.com)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseContent(tt.content)
			if got != tt.want {
				t.Errorf("ParseContent() = %q, want %q", got, tt.want)
			}
		})
	}
}
