package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/attica-health/carebot/internal/domain"
	"github.com/attica-health/carebot/internal/telemetry"
)

const (
	defaultRetrieveLimit   = 4
	maxRetrieveLimit       = 8
	defaultChunkScanLimit  = 600
	defaultMaxDistance     = 0.45
	snippetMaxChars        = 240
	snippetLeftMargin      = 40
	minLexicalScore        = 2
	excerptDelimiter       = "\n\n---\n\n"
	maxOccurrencesPerChunk = 200
)

// ChunkMatch is one retrieval candidate: a chunk's content with its source
// metadata and, for vector search, the cosine distance to the query.
type ChunkMatch struct {
	Content  string
	SourceID string
	Title    string
	URL      string
	Distance float64
}

// RetrievalRepository defines the storage interface for retrieval
type RetrievalRepository interface {
	SearchByEmbedding(ctx context.Context, projectID string, embedding []float32, limit int) ([]*ChunkMatch, error)
	ListChunks(ctx context.Context, projectID string, limit int) ([]*ChunkMatch, error)
}

// RetrievalResult is the ranked grounding material for one query.
type RetrievalResult struct {
	Excerpts  string
	Citations []domain.Citation
}

// RetrievalService ranks knowledge chunks for a query, preferring vector
// similarity and degrading to lexical scoring when embeddings are missing,
// failing, or not similar enough.
type RetrievalService struct {
	repo        RetrievalRepository
	maxDistance float64
}

func NewRetrievalService(repo RetrievalRepository) *RetrievalService {
	return NewRetrievalServiceWithMaxDistance(repo, defaultMaxDistance)
}

func NewRetrievalServiceWithMaxDistance(repo RetrievalRepository, maxDistance float64) *RetrievalService {
	if maxDistance < 0.1 || maxDistance > 1 {
		maxDistance = defaultMaxDistance
	}
	return &RetrievalService{repo: repo, maxDistance: maxDistance}
}

// Retrieve returns ranked excerpts and citations for the query. It never
// fails the request: vector errors degrade to lexical scoring and storage
// errors yield an empty result.
func (s *RetrievalService) Retrieve(ctx context.Context, projectID, query string, queryEmbedding []float32, limit int) *RetrievalResult {
	ctx, span := telemetry.StartSpan(ctx, "RetrievalService.Retrieve", telemetry.SpanAttributes{
		ProjectID: projectID,
		Operation: "retrieve",
	})
	defer span.End()

	if limit <= 0 {
		limit = defaultRetrieveLimit
	}
	if limit > maxRetrieveLimit {
		limit = maxRetrieveLimit
	}

	if len(queryEmbedding) > 0 {
		if result := s.retrieveByVector(ctx, projectID, query, queryEmbedding, limit); result != nil {
			return result
		}
	}

	return s.retrieveByKeywords(ctx, projectID, query, limit)
}

// retrieveByVector returns nil when the vector path cannot produce a
// confident result, signalling the lexical fallback.
func (s *RetrievalService) retrieveByVector(ctx context.Context, projectID, query string, embedding []float32, limit int) *RetrievalResult {
	rows, err := s.repo.SearchByEmbedding(ctx, projectID, embedding, limit)
	if err != nil {
		log.Printf("retrieval: vector search failed, falling back to lexical: %v", err)
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	// If even the best match is too far, do not attach weakly related
	// sources; the lexical path decides instead.
	if rows[0].Distance > s.maxDistance {
		return nil
	}
	return assembleResult(rows, query)
}

func (s *RetrievalService) retrieveByKeywords(ctx context.Context, projectID, query string, limit int) *RetrievalResult {
	tokens := TokenizeQuery(query)
	if len(tokens) == 0 {
		return &RetrievalResult{Citations: []domain.Citation{}}
	}

	all, err := s.repo.ListChunks(ctx, projectID, defaultChunkScanLimit)
	if err != nil {
		log.Printf("retrieval: chunk scan failed, returning no citations: %v", err)
		return &RetrievalResult{Citations: []domain.Citation{}}
	}
	if len(all) == 0 {
		return &RetrievalResult{Citations: []domain.Citation{}}
	}

	type scoredChunk struct {
		match   *ChunkMatch
		score   int
		matched int
	}

	scored := make([]scoredChunk, 0, len(all))
	for _, m := range all {
		contentScore, contentMatched := scoreText(m.Content, tokens)
		titleScore, titleMatched := scoreText(m.Title, tokens)
		sc := scoredChunk{
			match:   m,
			score:   contentScore + titleScore,
			matched: contentMatched + titleMatched,
		}
		// Do not surface "default" chunks with no real lexical overlap.
		if sc.matched > 0 && sc.score >= minLexicalScore {
			scored = append(scored, sc)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	picked := make([]*ChunkMatch, 0, limit)
	seenSource := make(map[string]struct{})
	diversityWindow := limit
	if diversityWindow > 2 {
		diversityWindow = 2
	}
	for _, sc := range scored {
		if len(picked) >= limit {
			break
		}
		// Prefer variety of sources for the first picks.
		if _, seen := seenSource[sc.match.SourceID]; seen && len(picked) < diversityWindow {
			continue
		}
		picked = append(picked, sc.match)
		seenSource[sc.match.SourceID] = struct{}{}
	}

	// If diversity filtering emptied the picks, fall back to top scores.
	if len(picked) == 0 && len(scored) > 0 {
		for i := 0; i < len(scored) && i < limit; i++ {
			picked = append(picked, scored[i].match)
		}
	}

	if len(picked) == 0 {
		return &RetrievalResult{Citations: []domain.Citation{}}
	}
	return assembleResult(picked, query)
}

func assembleResult(rows []*ChunkMatch, query string) *RetrievalResult {
	citations := make([]domain.Citation, 0, len(rows))
	blocks := make([]string, 0, len(rows))
	for i, r := range rows {
		citations = append(citations, domain.Citation{
			SourceID: r.SourceID,
			Title:    r.Title,
			Snippet:  BuildSnippet(r.Content, query),
			URL:      r.URL,
		})
		head := fmt.Sprintf("[#%d] %s", i+1, r.Title)
		if r.URL != "" {
			head += " (" + r.URL + ")"
		}
		blocks = append(blocks, head+"\n"+r.Content)
	}
	return &RetrievalResult{
		Excerpts:  strings.Join(blocks, excerptDelimiter),
		Citations: citations,
	}
}

// scoreText counts query token occurrences in the text. The second return
// value is the number of distinct tokens that matched at least once.
func scoreText(text string, tokens []string) (int, int) {
	if len(tokens) == 0 {
		return 0, 0
	}
	lower := strings.ToLower(text)
	score := 0
	matched := 0
	for _, t := range tokens {
		n := strings.Count(lower, t)
		if n > 0 {
			matched++
			score += n
		}
		if score > maxOccurrencesPerChunk {
			score = maxOccurrencesPerChunk
			break
		}
	}
	return score, matched
}

// BuildSnippet trims a chunk to a display snippet. Long content is windowed
// around the first query-token occurrence with ellipses at cut points.
func BuildSnippet(content, query string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if len([]rune(clean)) <= snippetMaxChars {
		return clean
	}

	runes := []rune(clean)
	lower := strings.ToLower(clean)
	bestPos := -1
	for _, t := range TokenizeQuery(query) {
		if p := strings.Index(lower, t); p != -1 {
			bestPos = len([]rune(lower[:p]))
			break
		}
	}

	start := 0
	if bestPos > snippetLeftMargin {
		start = bestPos - snippetLeftMargin
	}
	end := start + snippetMaxChars
	if end > len(runes) {
		end = len(runes)
	}

	snippet := strings.TrimSpace(string(runes[start:end]))
	if start > 0 {
		snippet = "…" + snippet
	}
	if end < len(runes) {
		snippet += "…"
	}
	return snippet
}
