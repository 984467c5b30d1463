package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "drops stop words and short tokens",
			query: "можно ли мне пить кофе",
			want:  []string{"пить", "кофе"},
		},
		{
			name:  "lowercases and normalizes yo",
			query: "Всё о Питании",
			want:  []string{"все", "питании"},
		},
		{
			name:  "strips punctuation and quotes",
			query: "«витамины», фолиевая - кислота?!",
			want:  []string{"витамины", "фолиевая", "кислота"},
		},
		{
			name:  "keeps digits inside tokens",
			query: "скрининг 12 недель",
			want:  []string{"скрининг"},
		},
		{
			name:  "empty input",
			query: "   ",
			want:  []string{},
		},
		{
			name:  "only stop words",
			query: "как и что",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenizeQuery(tt.query))
		})
	}
}
