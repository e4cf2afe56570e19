// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/nutrition-align/internal/testsupport"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

func TestNormalize(t *testing.T) {
	n := New(testsupport.Config(t))

	tests := []struct {
		name      string
		input     string
		canonical string
		form      string
		method    string
		classes   []types.ClassIntent
	}{
		{
			name:      "whitelisted plural is singularized",
			input:     "Grapes",
			canonical: "grape",
			classes:   []types.ClassIntent{"produce"},
		},
		{
			name:      "method captured before descriptors are stripped",
			input:     "Grilled chicken breast, sliced",
			canonical: "chicken breast",
			form:      "grilled",
			method:    "grilled",
			classes:   []types.ClassIntent{"protein"},
		},
		{
			name:      "raw form extracted",
			input:     "fresh spinach",
			canonical: "spinach",
			form:      "raw",
			classes:   []types.ClassIntent{"leafy_crucifer"},
		},
		{
			name:      "compound term preserved",
			input:     "Sweet Potatoes, baked",
			canonical: "sweet potato",
			form:      "baked",
			method:    "baked",
			classes:   []types.ClassIntent{"produce"},
		},
		{
			name:      "accents folded",
			input:     "Sautéed Spinach",
			canonical: "spinach",
			form:      "sauteed",
			method:    "sauteed",
			classes:   []types.ClassIntent{"leafy_crucifer"},
		},
		{
			name:      "duplicate bracketed qualifier collapsed",
			input:     "olives (raw) (raw)",
			canonical: "olive",
			form:      "raw",
			classes:   []types.ClassIntent{"olive"},
		},
		{
			name:      "unknown plural left alone",
			input:     "lentils",
			canonical: "lentils",
		},
		{
			name:      "egg outranks protein",
			input:     "egg and chicken",
			canonical: "egg chicken",
			classes:   []types.ClassIntent{"egg", "protein"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := n.Normalize(tt.input)
			assert.False(t, q.Ignored)
			assert.Equal(t, tt.canonical, q.CanonicalName)
			assert.Equal(t, tt.form, q.Form)
			assert.Equal(t, tt.method, q.Method)
			assert.Equal(t, tt.classes, q.Classes)
		})
	}
}

func TestNormalizeCompoundTerms(t *testing.T) {
	n := New(testsupport.Config(t))

	q := n.Normalize("sweet potatoes")
	assert.Equal(t, []string{"sweet potato"}, q.Terms)
	assert.Equal(t, []string{"sweet", "potato"}, q.Tokens)

	plain := n.Normalize("potatoes")
	assert.Equal(t, []string{"potato"}, plain.Terms)
	assert.NotEqual(t, q.CanonicalName, plain.CanonicalName)
}

func TestNormalizeIgnored(t *testing.T) {
	n := New(testsupport.Config(t))

	tests := []struct {
		input  string
		reason string
	}{
		{"Red wine", "alcohol"},
		{"beer (lager)", "alcohol"},
		{"deprecated entry: toast", "deprecated"},
		{"empty plate", "unsupported"},
		{"IGNORE", "explicit_ignore"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q := n.Normalize(tt.input)
			assert.True(t, q.Ignored)
			assert.Equal(t, tt.reason, q.IgnoreReason)
			assert.Empty(t, q.Tokens)
		})
	}

	assert.False(t, n.Normalize("swine").Ignored, "ignore terms match whole words only")
}

func TestNormalizeHints(t *testing.T) {
	n := New(testsupport.Config(t))

	q := n.Normalize("apple without peel")
	assert.Equal(t, "absent", q.Hints[types.HintPeel])
	assert.Equal(t, "apple", q.CanonicalName)

	q = n.Normalize("apple with peel")
	assert.Equal(t, "present", q.Hints[types.HintPeel])
	assert.Equal(t, "apple", q.CanonicalName)

	assert.Nil(t, n.Normalize("apple").Hints)
}

func TestForFoodExplicitForm(t *testing.T) {
	n := New(testsupport.Config(t))

	q := n.ForFood(types.DetectedFood{Name: "chicken breast", Form: "Grilled", MassG: 150})
	assert.Equal(t, "grilled", q.Method)
	assert.True(t, q.IsCooked())

	q = n.ForFood(types.DetectedFood{Name: "roasted carrots", Form: "raw"})
	assert.True(t, q.IsRaw())
	assert.Empty(t, q.Method)
	assert.Equal(t, "carrot", q.CanonicalName)

	q = n.ForFood(types.DetectedFood{Name: "baked potato"})
	assert.Equal(t, "baked", q.Method)
}

func TestTokens(t *testing.T) {
	n := New(testsupport.Config(t))

	got := n.Tokens("Grapes, red or green (European type, such as Thompson seedless), raw")
	assert.Equal(t, []string{"grape", "red", "green", "european", "thompson", "seedless", "raw"}, got)
}

func TestHasTerm(t *testing.T) {
	tests := []struct {
		text string
		term string
		want bool
	}{
		{"Oil, olive, salad or cooking", "oil", true},
		{"Potatoes, boiled", "oil", false},
		{"Chicken, breaded, frozen", "bread", true},
		{"Spinach, uncooked", "cooked", false},
		{"Egg substitute, powder", "egg substitute", true},
		{"Crème fraîche", "creme", true},
		{"anything", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HasTerm(tt.text, tt.term), "%q in %q", tt.term, tt.text)
	}
}
