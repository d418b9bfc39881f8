package interpret

import (
	"testing"
)

func TestCleanEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t\r\n  "} {
		if got := Clean(in, DefaultCleaningOptions()); got != "" {
			t.Errorf("Clean(%q) = %q, want empty", in, got)
		}
	}
}

func TestCleanStripsArtifacts(t *testing.T) {
	in := "**Species:** Tuna\n### Habitat\n| Eye | 9 |"
	want := "Species: Tuna\nHabitat\nEye 9"
	if got := Clean(in, DefaultCleaningOptions()); got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanStripsBulletsAndColons(t *testing.T) {
	in := "- Silver body\n• Forked tail\n-\n: stray colon\n- * broken item\n* - other item"
	want := "Silver body\nForked tail\nstray colon\nbroken item\nother item"
	if got := Clean(in, DefaultCleaningOptions()); got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanRemovesMarkdown(t *testing.T) {
	in := "See [FishBase](https://fishbase.org) and `code` ~~old~~ _italic_"
	want := "See FishBase and code old italic"
	if got := Clean(in, DefaultCleaningOptions()); got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanMarkdownWithoutArtifactStage(t *testing.T) {
	opts := DefaultCleaningOptions()
	opts.RemoveArtifacts = false
	in := "## Result\n**bold** and *em* and __strong__"
	want := "Result\nbold and em and strong"
	if got := Clean(in, opts); got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanKeepsSnakeCase(t *testing.T) {
	in := "field nama_ikan_lokal stays"
	if got := Clean(in, DefaultCleaningOptions()); got != in {
		t.Errorf("Clean() = %q, want %q", got, in)
	}
}

func TestCleanNormalizesWhitespace(t *testing.T) {
	in := "a   b\t\tc\r\n\r\n\r\n   d  "
	want := "a b c\nd"
	if got := Clean(in, DefaultCleaningOptions()); got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanMinimumLength(t *testing.T) {
	in := "a\nbb\nccc"

	if got := Clean(in, DefaultCleaningOptions()); got != "bb\nccc" {
		t.Errorf("default minimum: got %q", got)
	}
	if got := Clean(in, withMinimumLength(3)); got != "ccc" {
		t.Errorf("minimum 3: got %q", got)
	}
	if got := Clean(in, withMinimumLength(0)); got != in {
		t.Errorf("minimum 0: got %q", got)
	}
}

func TestCleanAllStagesDisabled(t *testing.T) {
	in := "  **x**  \n\n - y "
	want := "**x**  \n\n - y"
	if got := Clean(in, CleaningOptions{}); got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanDropsInvalidUTF8(t *testing.T) {
	in := "Tuna\xff\xfe fish"
	if got := Clean(in, DefaultCleaningOptions()); got != "Tuna fish" {
		t.Errorf("Clean() = %q, want %q", got, "Tuna fish")
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain sentence",
		"- - nested bullet",
		": - colon then bullet",
		"[`- inside link`](https://x.test)",
		"_a_ _b_ _c_",
		"**bold *nested* text**",
		"| a | b |\n|---|---|\n| 1 | 2 |",
		"```json\n{\"species\": \"tuna\"}\n```",
		"### Species:\n\n\n**Tongkol** (Euthynnus affinis)\n\n- *\n* -\n•\n::",
		"line one\r\n\r\nline two\t\t end",
		"\x00\x01 binary \xff garbage ~~~~ ``",
		"a\nb\nc",
	}
	optionSets := []CleaningOptions{
		DefaultCleaningOptions(),
		withMinimumLength(5),
		{RemoveMarkdown: true},
		{RemoveArtifacts: true, RemoveEmptyLines: true, MinimumLength: 2},
		{NormalizeWhitespace: true},
	}

	for _, opts := range optionSets {
		for _, in := range inputs {
			once := Clean(in, opts)
			twice := Clean(once, opts)
			if once != twice {
				t.Errorf("Clean not idempotent for %q with %+v:\n once: %q\ntwice: %q", in, opts, once, twice)
			}
		}
	}
}
