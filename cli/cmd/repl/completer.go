package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/fns/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "edit", "clear", "quit"}

// keywords complete at the start of any top-level word.
var keywords = []string{"let", "const", "true", "false", "none"}

// isWordBoundary reports whether r ends a completion word. Only letters and
// underscores form identifiers, so everything else (including the hyphen,
// which is subtraction) separates words.
func isWordBoundary(r rune) bool {
	return r != '_' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z')
}

// wordBounds returns the word under the cursor and its byte offsets in input.
// The word is empty when the cursor sits between two boundaries.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	for start = cursor; start > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	for end = cursor; end < len(input); {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain leading up to the word starting
// at wordStart. For "x + server.http.ho" and the word "ho", it is
// "server.http". Top-level words have an empty parent.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimSuffix(prefix, ".")
	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return prefix[pos:]
}

// resolvePath looks up a dotted member path in env.
func resolvePath(env *lang.Environment, path string) (lang.Value, bool) {
	segments := strings.Split(path, ".")

	v, ok := env.Lookup(segments[0])
	for _, seg := range segments[1:] {
		if !ok {
			break
		}

		obj, isObj := v.(*lang.Object)
		if !isObj {
			return nil, false
		}

		v, ok = obj.Get(seg)
	}

	return v, ok
}

// childCandidates returns the completions for a word whose member-access
// parent is parent. The top level offers every visible name and keyword;
// a parent that resolves to an object offers its keys.
func childCandidates(env *lang.Environment, parent string) []string {
	if parent == "" {
		return append(env.Names(), keywords...)
	}

	v, ok := resolvePath(env, parent)
	if !ok {
		return nil
	}

	if obj, isObj := v.(*lang.Object); isObj {
		return obj.Keys()
	}

	return nil
}

// computeMatches ranks the candidates for the word at the cursor, best first.
// An empty top-level word has no matches, so the hint line stays visible;
// an empty word after a dot matches every member.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())
	parent := ""

	switch m.mode {
	case modeCtrl:
		candidates = ctrlCommands
	default:
		parent = parentPath(input, wordStart)
		candidates = childCandidates(m.env, parent)
	}

	if len(candidates) == 0 || (word == "" && parent == "") {
		return nil, nil, wordStart, wordEnd
	}

	if word == "" {
		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar renders matches on one line no wider than width,
// ending in an ellipsis when they do not all fit.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var b strings.Builder

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		if i > 0 {
			last := i == len(matches)-1

			need := lipgloss.Width(sep) + lipgloss.Width(rendered)
			if !last {
				need += reserve
			}

			if lipgloss.Width(b.String())+need > width {
				b.WriteString(sep)
				b.WriteString(ellipsis)

				break
			}

			b.WriteString(sep)
		}

		b.WriteString(rendered)
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched runes highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}

const previewWidth = 40

// formatPreview renders v on one line, truncated to previewWidth runes.
func formatPreview(v lang.Value) string {
	s := strings.Join(strings.Fields(lang.Inspect(v)), " ")

	if utf8.RuneCountInString(s) > previewWidth {
		runes := []rune(s)

		return string(runes[:previewWidth-3]) + "..."
	}

	return s
}
