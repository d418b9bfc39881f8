package interpret

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// CleaningOptions controls which normalization stages Clean applies.
type CleaningOptions struct {
	RemoveMarkdown      bool
	NormalizeWhitespace bool
	RemoveEmptyLines    bool
	RemoveArtifacts     bool
	// MinimumLength is the minimum rune count a line needs to survive
	// RemoveEmptyLines. Zero or less disables the length filter.
	MinimumLength int
}

// DefaultMinimumLength is the line length Clean keeps by default.
const DefaultMinimumLength = 2

// maxCleanPasses bounds the fixpoint loop in Clean.
const maxCleanPasses = 16

// DefaultCleaningOptions returns all stages enabled with a minimum line length of 2.
func DefaultCleaningOptions() CleaningOptions {
	return CleaningOptions{
		RemoveMarkdown:      true,
		NormalizeWhitespace: true,
		RemoveEmptyLines:    true,
		RemoveArtifacts:     true,
		MinimumLength:       DefaultMinimumLength,
	}
}

// withMinimumLength returns a copy of the defaults with a different line length.
func withMinimumLength(n int) CleaningOptions {
	opts := DefaultCleaningOptions()
	opts.MinimumLength = n
	return opts
}

var (
	// Artifacts
	strayPatternRe = regexp.MustCompile(`(?m)^[ \t]*(?:-[ \t]*\*|\*[ \t]*-)[ \t]*`)
	symbolRe       = regexp.MustCompile(`[*#|]`)
	leadingJunkRe  = regexp.MustCompile(`(?m)^[ \t]*(?:-(?:[ \t]+|$)|•[ \t]*|:[ \t]*)+`)

	// Markdown
	codeFenceRe  = regexp.MustCompile("(?m)^[ \t]*```[^\n]*$")
	linkRe       = regexp.MustCompile(`!?\[([^\]\n]*)\]\([^)\n]*\)`)
	inlineCodeRe = regexp.MustCompile("`([^`\n]*)`")
	strikeRe     = regexp.MustCompile(`~~([^~\n]+)~~`)
	boldStarRe   = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	boldUnderRe  = regexp.MustCompile(`__([^_\n]+)__`)
	emStarRe     = regexp.MustCompile(`\*([^*\n]+)\*`)
	emUnderRe    = regexp.MustCompile(`(^|[^\w])_([^_\n]+)_([^\w]|$)`)
	headingRe    = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+`)

	// Whitespace
	lineBreakRe  = regexp.MustCompile(`\r\n?`)
	spaceRunRe   = regexp.MustCompile(`[ \t\f\v]+`)
	lineEdgeRe   = regexp.MustCompile(`(?m)^ +| +$`)
	blankGapRe   = regexp.MustCompile(`\n(?:[ \t]*\n)+`)
	artifactLine = regexp.MustCompile(`^[\s\-•:*]*$`)
)

// Clean normalizes AI-generated text according to opts. It never fails: empty
// input yields an empty string and the result has no surrounding whitespace.
//
// Stages run in a fixed order (artifacts, markdown, whitespace, empty lines)
// and the whole sequence repeats until the text stops changing, since removing
// one artifact can expose another.
func Clean(text string, opts CleaningOptions) string {
	text = strings.ToValidUTF8(text, "")
	if strings.TrimSpace(text) == "" {
		return ""
	}

	out := cleanPass(text, opts)
	for i := 0; i < maxCleanPasses; i++ {
		next := cleanPass(out, opts)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func cleanPass(text string, opts CleaningOptions) string {
	if opts.RemoveArtifacts {
		text = removeArtifacts(text)
	}
	if opts.RemoveMarkdown {
		text = removeMarkdown(text)
	}
	if opts.NormalizeWhitespace {
		text = normalizeWhitespace(text)
	}
	if opts.RemoveEmptyLines {
		text = removeEmptyLines(text, opts.MinimumLength)
	}
	return strings.TrimSpace(text)
}

func removeArtifacts(text string) string {
	text = strayPatternRe.ReplaceAllString(text, "")
	text = symbolRe.ReplaceAllString(text, "")
	return leadingJunkRe.ReplaceAllString(text, "")
}

func removeMarkdown(text string) string {
	text = codeFenceRe.ReplaceAllString(text, "")
	text = linkRe.ReplaceAllString(text, "$1")
	text = inlineCodeRe.ReplaceAllString(text, "$1")
	text = strikeRe.ReplaceAllString(text, "$1")
	text = boldStarRe.ReplaceAllString(text, "$1")
	text = boldUnderRe.ReplaceAllString(text, "$1")
	text = emStarRe.ReplaceAllString(text, "$1")
	text = emUnderRe.ReplaceAllString(text, "$1$2$3")
	return headingRe.ReplaceAllString(text, "")
}

func normalizeWhitespace(text string) string {
	text = lineBreakRe.ReplaceAllString(text, "\n")
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = lineEdgeRe.ReplaceAllString(text, "")
	return blankGapRe.ReplaceAllString(text, "\n")
}

func removeEmptyLines(text string, minLength int) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) < minLength {
			continue
		}
		if artifactLine.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
