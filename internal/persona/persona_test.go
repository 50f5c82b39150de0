package persona

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_BuiltinAdvisors(t *testing.T) {
	r := Default()

	ids := make([]string, 0)
	for _, p := range r.Advisors() {
		ids = append(ids, p.ID)
		assert.False(t, p.Summarizer)
		assert.Contains(t, p.SystemPrompt, "EXEMPLAR-BASED REASONING REQUIREMENT")
	}
	assert.Equal(t, []string{"strategist", "domain_expert", "devils_advocate", "risk_officer", "ethicist"}, ids)

	s, ok := r.Summarizer()
	require.True(t, ok)
	assert.Equal(t, "summarizer", s.ID)
	assert.NotContains(t, s.SystemPrompt, "EXEMPLAR-BASED")
	assert.Len(t, r.All(), 6)
}

func TestLookup_NormalizesAliases(t *testing.T) {
	r := Default()
	cases := map[string]string{
		"Strategist":       "strategist",
		" domain-expert ":  "domain_expert",
		"Devil's Advocate": "devils_advocate",
		"devil":            "devils_advocate",
		"risk":             "risk_officer",
		"ethics":           "ethicist",
	}
	for in, want := range cases {
		p, ok := r.Lookup(in)
		require.True(t, ok, in)
		assert.Equal(t, want, p.ID, in)
	}
	_, ok := r.Lookup("astrologer")
	assert.False(t, ok)
}

func TestSelect(t *testing.T) {
	r := Default()

	t.Run("empty selects all advisors", func(t *testing.T) {
		got, err := r.Select(nil)
		require.NoError(t, err)
		assert.Len(t, got, 5)
	})

	t.Run("keeps requested order and drops duplicates", func(t *testing.T) {
		got, err := r.Select([]string{"ethicist", "strategist", "ethics", " "})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "ethicist", got[0].ID)
		assert.Equal(t, "strategist", got[1].ID)
	})

	t.Run("unknown persona", func(t *testing.T) {
		_, err := r.Select([]string{"strategist", "astrologer"})
		require.ErrorIs(t, err, ErrUnknownPersona)
		assert.Contains(t, err.Error(), "domain_expert")
	})

	t.Run("summarizer is not an advisor", func(t *testing.T) {
		_, err := r.Select([]string{"summarizer"})
		assert.ErrorIs(t, err, ErrSummarizerNotAdvisor)
		assert.NotErrorIs(t, err, ErrUnknownPersona)
	})
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.yaml")
	body := `
personas:
  - id: strategist
    display_name: Chief Strategist
  - id: historian
    system_prompt: You are the Historian advisor.
    guardrails: true
  - id: skeptic
    display_name: Skeptic
    system_prompt: You doubt everything.
    color: red
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	r, err := LoadOverrides(Default(), path)
	require.NoError(t, err)

	s, ok := r.Lookup("strategist")
	require.True(t, ok)
	assert.Equal(t, "Chief Strategist", s.DisplayName)
	assert.True(t, strings.HasPrefix(s.SystemPrompt, "You are the Strategist advisor."), "prompt kept when not overridden")

	h, ok := r.Lookup("historian")
	require.True(t, ok)
	assert.Equal(t, "Historian", h.DisplayName)
	assert.Contains(t, h.SystemPrompt, "IMPORTANT INSTRUCTIONS")

	sk, _ := r.Lookup("skeptic")
	assert.Equal(t, "red", sk.Color)
	assert.NotContains(t, sk.SystemPrompt, "IMPORTANT INSTRUCTIONS")

	advisors := r.Advisors()
	assert.Len(t, advisors, 7)
	assert.Equal(t, "skeptic", advisors[len(advisors)-1].ID)
}

func TestLoadOverrides_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown field":     "personas:\n  - id: strategist\n    prompt: nope\n",
		"empty prompt":      "personas:\n  - id: newcomer\n",
		"second summarizer": "personas:\n  - id: scribe\n    system_prompt: sum it up\n    summarizer: true\n",
		"missing id":        "personas:\n  - display_name: Anonymous\n    system_prompt: hi\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := applyOverrides(Default(), []byte(body))
			assert.Error(t, err)
		})
	}
}

func TestLoadOverrides_SwapSummarizer(t *testing.T) {
	body := `
personas:
  - id: summarizer
    summarizer: false
    system_prompt: retired
  - id: scribe
    system_prompt: Summarize the advisors.
    summarizer: true
`
	r, err := applyOverrides(Default(), []byte(body))
	require.NoError(t, err)
	s, ok := r.Summarizer()
	require.True(t, ok)
	assert.Equal(t, "scribe", s.ID)
}
