// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package variants

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/nutrition-align/internal/normalize"
	"github.com/pdiddy/nutrition-align/internal/testsupport"
)

func TestGenerate(t *testing.T) {
	cfg := testsupport.Config(t)
	n := normalize.New(cfg)
	g := New(cfg, n)

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "plural-preferred class tries plural first",
			input: "grape",
			want:  []string{"grapes", "grape"},
		},
		{
			name:  "singular-preferred class tries singular first",
			input: "egg",
			want:  []string{"egg", "eggs"},
		},
		{
			name:  "cooked query adds method variant",
			input: "grilled chicken breast",
			want:  []string{"chicken breast", "chicken breast grilled", "chicken breasts"},
		},
		{
			name:  "synonyms follow canonical name",
			input: "romaine lettuce",
			want:  []string{"romaine lettuce", "lettuce romaine", "cos lettuce"},
		},
		{
			name:  "compound term searched alone",
			input: "sweet potatoes and kale",
			want:  []string{"sweet potato kale", "sweet potato"},
		},
		{
			name:  "no plural known",
			input: "spinach",
			want:  []string{"spinach"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Generate(n.Normalize(tt.input))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateDeduplicates(t *testing.T) {
	cfg := testsupport.Config(t)
	cfg.Variants.Synonyms["grape"] = []string{"grapes", "Grape", "table grape"}
	n := normalize.New(cfg)

	got := New(cfg, n).Generate(n.Normalize("grapes"))
	assert.Equal(t, []string{"grapes", "grape", "table grape"}, got)
}

func TestGenerateEmpty(t *testing.T) {
	cfg := testsupport.Config(t)
	n := normalize.New(cfg)
	assert.Nil(t, New(cfg, n).Generate(n.Normalize("sliced")))
}
