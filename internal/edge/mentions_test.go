package edge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMentions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty text",
			text: "",
			want: nil,
		},
		{
			name: "no mentions",
			text: "just a plain sentence",
			want: nil,
		},
		{
			name: "single mention",
			text: "cc @bob",
			want: []string{"bob"},
		},
		{
			name: "mention at start of text",
			text: "@alice please take a look",
			want: []string{"alice"},
		},
		{
			name: "multiple mentions",
			text: "@alice and @bob should review this",
			want: []string{"alice", "bob"},
		},
		{
			name: "duplicates kept",
			text: "@bob ping, @bob ping again",
			want: []string{"bob", "bob"},
		},
		{
			name: "team mention with slash",
			text: "cc @org/backend-team",
			want: []string{"org/backend-team"},
		},
		{
			name: "email address is not a mention",
			text: "contact me at alice@example.com",
			want: nil,
		},
		{
			name: "mention after punctuation",
			text: "thanks,@carol!",
			want: []string{"carol"},
		},
		{
			name: "case preserved",
			text: "ask @CamelCase",
			want: []string{"CamelCase"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Mentions(tt.text))
		})
	}
}

func TestBotClassifier(t *testing.T) {
	c := NewBotClassifier([]string{"ninesappbot"})

	tests := []struct {
		login string
		want  bool
	}{
		{"ninesappbot", true},
		{"dependabot[bot]", true},
		{"renovate-bot", true},
		{"alice", false},
		{"botanist", false},
		{"robot-alice", false},
	}

	for _, tt := range tests {
		t.Run(tt.login, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsBot(tt.login))
		})
	}
}
