package rules

import (
	"strings"
	"testing"

	"github.com/jackzampolin/fable/internal/config"
)

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"cat", 1},
		{"cake", 1},
		{"little", 2},
		{"banana", 3},
		{"the", 1},
		{"tiger", 2},
		{"extraordinary", 5},
		{"don't", 1},
		{"a", 1},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := CountSyllables(tt.word); got != tt.want {
				t.Errorf("CountSyllables(%q) = %d, want %d", tt.word, got, tt.want)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	rs := Ruleset{
		BannedWords:         []string{"very", "scary"},
		MaxSyllablesPerWord: 3,
	}

	t.Run("clean text passes", func(t *testing.T) {
		if v := rs.Check(0, "Sid the snail woke up."); len(v) != 0 {
			t.Errorf("violations = %v", v)
		}
	})

	t.Run("banned word flagged case-insensitively", func(t *testing.T) {
		v := rs.Check(2, "It was Very dark.")
		if len(v) != 1 {
			t.Fatalf("violations = %v", v)
		}
		if v[0].Rule != "banned_word" || v[0].Word != "Very" || v[0].PageIndex != 2 {
			t.Errorf("violation = %+v", v[0])
		}
	})

	t.Run("long word flagged", func(t *testing.T) {
		v := rs.Check(0, "An extraordinary day.")
		if len(v) != 1 || v[0].Rule != "syllables" {
			t.Errorf("violations = %v", v)
		}
	})

	t.Run("punctuation does not hide banned words", func(t *testing.T) {
		if v := rs.Check(0, `"Scary!" said Sid.`); len(v) != 1 {
			t.Errorf("violations = %v", v)
		}
	})

	t.Run("empty ruleset never flags", func(t *testing.T) {
		var empty Ruleset
		if v := empty.Check(0, "anything whatsoever extraordinary"); v != nil {
			t.Errorf("violations = %v", v)
		}
	})
}

func TestPromptText(t *testing.T) {
	t.Run("empty ruleset renders nothing", func(t *testing.T) {
		var rs Ruleset
		if got := rs.PromptText(); got != "" {
			t.Errorf("PromptText() = %q", got)
		}
	})

	t.Run("renders both rule kinds", func(t *testing.T) {
		rs := FromConfig(config.RulesCfg{
			BannedWords:         []string{"very"},
			MaxSyllablesPerWord: 2,
		})
		got := rs.PromptText()
		if !strings.Contains(got, "very") {
			t.Error("banned words missing from prompt text")
		}
		if !strings.Contains(got, "2 syllables") {
			t.Error("syllable limit missing from prompt text")
		}
	})
}
