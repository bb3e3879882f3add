package transcode

import (
	"strings"
	"unicode"
)

// Title converts a snake_case field name or a PascalCase model name into a
// space separated, human readable title.
//
//	string_field    -> String Field
//	object_ID_field -> Object ID Field
//	ExampleDocument -> Example Document
//	HTTPServer      -> HTTP Server
func Title(name string) string {
	if strings.Contains(name, "_") || isLower(name) {
		tokens := strings.Split(name, "_")
		for i, tok := range tokens {
			// Tokens with capitals (acronyms) are kept as written
			if isLower(tok) {
				tokens[i] = titleCase(tok)
			}
		}
		return strings.Join(tokens, " ")
	}
	return strings.Join(pascalWords(name), " ")
}

// isLower reports whether s has at least one cased letter and no upper or
// title case letters
func isLower(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsLower(r) {
			cased = true
		}
	}
	return cased
}

// titleCase upper-cases the first letter of every letter run
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevLetter = true
			continue
		}
		prevLetter = false
		b.WriteRune(r)
	}
	return b.String()
}

// pascalWords splits s into capitalized words and acronym runs. A word is an
// upper case letter followed by lower case letters. An acronym is a run of
// upper case letters that stops before the capital of the next word. Other
// characters separate words and are dropped.
func pascalWords(s string) []string {
	runes := []rune(s)
	n := len(runes)
	words := make([]string, 0, 4)

	for i := 0; i < n; {
		if !isASCIIUpper(runes[i]) {
			i++
			continue
		}

		j := i + 1
		if j < n && isASCIILower(runes[j]) {
			for j < n && isASCIILower(runes[j]) {
				j++
			}
			words = append(words, string(runes[i:j]))
			i = j
			continue
		}

		for j < n && isASCIIUpper(runes[j]) {
			j++
		}
		switch {
		case j == n:
			words = append(words, string(runes[i:j]))
			i = j
		case j-1 > i:
			// Leave the last capital for the word that follows
			words = append(words, string(runes[i:j-1]))
			i = j - 1
		default:
			i++
		}
	}
	return words
}

func isASCIIUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isASCIILower(r rune) bool { return r >= 'a' && r <= 'z' }
