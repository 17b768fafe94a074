// Package rules applies advisory content rules to generated story text.
//
// Rules do two jobs: they are rendered into the text stage's system
// prompt so the model avoids violations up front, and they are checked
// against the returned text so the CLI can warn about anything that
// slipped through. Violations never fail a stage.
package rules

import (
	"fmt"
	"strings"

	"github.com/jackzampolin/fable/internal/config"
)

// Ruleset is the active rule configuration.
type Ruleset struct {
	BannedWords         []string
	MaxSyllablesPerWord int
}

// FromConfig builds a Ruleset from the config section.
func FromConfig(cfg config.RulesCfg) Ruleset {
	return Ruleset{
		BannedWords:         cfg.BannedWords,
		MaxSyllablesPerWord: cfg.MaxSyllablesPerWord,
	}
}

// Empty reports whether no rules are configured.
func (r Ruleset) Empty() bool {
	return len(r.BannedWords) == 0 && r.MaxSyllablesPerWord <= 0
}

// PromptText renders the ruleset as guidance for the text stage's
// system prompt. Returns "" when no rules are configured.
func (r Ruleset) PromptText() string {
	if r.Empty() {
		return ""
	}
	var sb strings.Builder
	if len(r.BannedWords) > 0 {
		sb.WriteString("- Never use these words: ")
		sb.WriteString(strings.Join(r.BannedWords, ", "))
		sb.WriteString(".\n")
	}
	if r.MaxSyllablesPerWord > 0 {
		fmt.Fprintf(&sb, "- Prefer words of at most %d syllables.\n", r.MaxSyllablesPerWord)
	}
	return sb.String()
}

// Violation is one rule violation found in page text.
type Violation struct {
	PageIndex int    `json:"page_index"`
	Rule      string `json:"rule"` // "banned_word" or "syllables"
	Word      string `json:"word"`
}

func (v Violation) String() string {
	return fmt.Sprintf("page %d: %s %q", v.PageIndex, v.Rule, v.Word)
}

// Check scans one page's text and returns any violations.
func (r Ruleset) Check(pageIndex int, text string) []Violation {
	if r.Empty() {
		return nil
	}

	banned := make(map[string]bool, len(r.BannedWords))
	for _, w := range r.BannedWords {
		banned[strings.ToLower(w)] = true
	}

	var violations []Violation
	for _, word := range splitWords(text) {
		lower := strings.ToLower(word)
		if banned[lower] {
			violations = append(violations, Violation{PageIndex: pageIndex, Rule: "banned_word", Word: word})
			continue
		}
		if r.MaxSyllablesPerWord > 0 && CountSyllables(lower) > r.MaxSyllablesPerWord {
			violations = append(violations, Violation{PageIndex: pageIndex, Rule: "syllables", Word: word})
		}
	}
	return violations
}

// splitWords breaks text into words, stripping punctuation but keeping
// internal apostrophes and hyphens ("don't", "merry-go-round").
func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return false
		case r == '\'' || r == '-':
			return false
		default:
			return true
		}
	})
}

// CountSyllables estimates the syllable count of an English word by
// counting vowel groups. Heuristic adjustments: a trailing silent "e"
// does not count, but a trailing "le" after a consonant does ("little").
// Every word has at least one syllable.
func CountSyllables(word string) int {
	word = strings.ToLower(strings.Trim(word, "'-"))
	if word == "" {
		return 0
	}

	isVowel := func(c byte) bool {
		return strings.IndexByte("aeiouy", c) >= 0
	}

	count := 0
	prevVowel := false
	for i := 0; i < len(word); i++ {
		v := isVowel(word[i])
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	// Silent trailing e: "cake" is one syllable, not two.
	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}
