package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/samalsubrat/mk-price-tracker/internal/domain"
	logx "github.com/samalsubrat/mk-price-tracker/pkg/logger"
)

// spaceClass matches ASCII whitespace and Unicode separators such as NBSP
const spaceClass = `[\s\p{Z}]+`

// Compiled regex patterns shared by every canonicalizer
var (
	// Whitespace runs, including non-breaking and other Unicode spaces
	multiSpacePattern = regexp.MustCompile(spaceClass)

	// First word character after a word boundary, used for title casing
	wordStartPattern = regexp.MustCompile(`\b\w`)
)

// Canonicalizer strips noise tokens from product names and derives the
// grouping key and display name. It is safe for concurrent use.
type Canonicalizer struct {
	version            int
	noisePattern       *regexp.Regexp
	enableDebugLogging bool
	logger             zerolog.Logger
}

// NewCanonicalizer compiles a noise table into a canonicalizer
func NewCanonicalizer(table domain.NoiseTable, enableDebugLogging bool) (*Canonicalizer, error) {
	pattern, err := compileNoisePattern(table.Tokens)
	if err != nil {
		return nil, err
	}

	return &Canonicalizer{
		version:            table.Version,
		noisePattern:       pattern,
		enableDebugLogging: enableDebugLogging,
		logger:             logx.Component("canonicalize"),
	}, nil
}

// MustNewCanonicalizer is like NewCanonicalizer but panics on an invalid table
func MustNewCanonicalizer(table domain.NoiseTable) *Canonicalizer {
	c, err := NewCanonicalizer(table, false)
	if err != nil {
		panic(err)
	}
	return c
}

// Version returns the version of the noise table in use
func (c *Canonicalizer) Version() int {
	return c.version
}

// Canonicalize removes noise tokens from name and returns its grouping key
// ("Aula F75 Wireless" -> "aulaf75") and display name ("Aula F75").
// A name made only of noise yields an empty key.
func (c *Canonicalizer) Canonicalize(name string) domain.Canonical {
	cleaned := c.Clean(name)

	result := domain.Canonical{
		Key:         strings.Join(strings.FieldsFunc(strings.ToLower(cleaned), isSpace), ""),
		DisplayName: TitleCase(cleaned),
	}

	if c.enableDebugLogging {
		c.logger.Debug().
			Str("input", name).
			Str("key", result.Key).
			Str("display", result.DisplayName).
			Msg("canonicalized")
	}

	return result
}

// Clean strips noise tokens and normalizes whitespace without changing case.
// Stripping repeats until nothing changes, so cleaning is idempotent.
func (c *Canonicalizer) Clean(name string) string {
	cleaned := collapseSpaces(name)
	if c.noisePattern == nil {
		return cleaned
	}

	for {
		// Step 1: Remove noise tokens
		next := c.noisePattern.ReplaceAllString(cleaned, "")

		// Step 2: Normalize whitespace
		next = collapseSpaces(next)

		if next == cleaned {
			return cleaned
		}
		cleaned = next
	}
}

// TitleCase upper-cases the first character of every word, leaving the rest untouched
func TitleCase(s string) string {
	return wordStartPattern.ReplaceAllStringFunc(s, strings.ToUpper)
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(multiSpacePattern.ReplaceAllString(s, " "))
}

// compileNoisePattern builds one case-insensitive alternation from the table.
// Longer phrases come first so "Mechanical Keyboard" wins over "Keyboard".
func compileNoisePattern(tokens []domain.NoiseToken) (*regexp.Regexp, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	sorted := make([]domain.NoiseToken, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Phrase) > len(sorted[j].Phrase)
	})

	alternatives := make([]string, 0, len(sorted))
	for _, token := range sorted {
		alt, err := tokenPattern(token)
		if err != nil {
			return nil, err
		}
		alternatives = append(alternatives, alt)
	}

	pattern, err := regexp.Compile(`(?i)(?:` + strings.Join(alternatives, "|") + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile noise table: %w", err)
	}
	return pattern, nil
}

// tokenPattern renders a single noise token as a boundary-anchored regex.
// Word boundaries are only asserted next to word characters, so "75%" still
// matches at the end of a name.
func tokenPattern(token domain.NoiseToken) (string, error) {
	phrase := strings.TrimSpace(token.Phrase)
	if phrase == "" {
		return "", fmt.Errorf("noise token with empty phrase")
	}

	words := strings.FieldsFunc(phrase, isSpace)
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	body := strings.Join(quoted, spaceClass)

	first, _ := utf8.DecodeRuneInString(phrase)
	last, _ := utf8.DecodeLastRuneInString(phrase)

	var b strings.Builder
	if isWordRune(first) {
		b.WriteString(`\b`)
	}
	b.WriteString(body)

	switch token.Match {
	case domain.MatchSuffix:
		b.WriteString(`.*$`)
	case domain.MatchWord, "":
		if isWordRune(last) {
			b.WriteString(`\b`)
		}
	default:
		return "", fmt.Errorf("noise token %q: unknown match mode %q", phrase, token.Match)
	}

	return b.String(), nil
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Z, r)
}

// isWordRune mirrors the ASCII \w class used by \b
func isWordRune(r rune) bool {
	return r < unicode.MaxASCII && (r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
}
