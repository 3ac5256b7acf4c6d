// Package ranking implements the retrieval scoring model: query relevance,
// recency decay, importance normalization, and their weighted combination.
//
// All scoring is a pure function of (memory, query, now), which keeps recall
// ordering deterministic and testable.
package ranking

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/agentmem-labs/agentmem-go/pkg/storage"
)

// Combination weights for the final score. Changing these is a behavioral
// change: ranking tests pin them.
const (
	RelevanceWeight  = 0.4
	RecencyWeight    = 0.3
	ImportanceWeight = 0.3
)

// DefaultDecayRate is the default recency decay rate. At this rate a memory
// untouched for a week scores roughly 0.5 recency.
const DefaultDecayRate = 0.1

// importanceLevels is the number of defined importance levels (low..critical).
const importanceLevels = 4

// Scores holds the sub-scores and combined score for one memory against one query.
type Scores struct {
	// Relevance is the query-similarity score in [0,1].
	Relevance float64

	// Recency is the time-decay score in [0,1].
	Recency float64

	// Importance is the normalized importance score in [0,1].
	Importance float64

	// Combined is the weighted combination of the three sub-scores.
	Combined float64
}

// Query is a prepared recall query: lowercased tokens for keyword matching and
// an optional embedding for similarity matching.
//
// The zero value is the neutral query used at prune time: relevance contributes
// nothing and ranking reduces to recency plus importance.
type Query struct {
	tokens    []string
	embedding []float64
}

// NewQuery prepares a query from raw text and an optional embedding.
func NewQuery(text string, embedding []float64) Query {
	return Query{
		tokens:    Tokenize(text),
		embedding: embedding,
	}
}

// Neutral returns the empty query used for prune-time ranking.
func Neutral() Query {
	return Query{}
}

// Ranker scores memories against queries.
type Ranker struct {
	// decayRate is the recency decay rate. Higher values decay faster.
	decayRate float64
}

// NewRanker creates a ranker with the given recency decay rate.
// A rate <= 0 falls back to DefaultDecayRate.
func NewRanker(decayRate float64) *Ranker {
	if decayRate <= 0 {
		decayRate = DefaultDecayRate
	}
	return &Ranker{decayRate: decayRate}
}

// DecayRate returns the configured recency decay rate.
func (r *Ranker) DecayRate() float64 {
	return r.decayRate
}

// Score computes all sub-scores for a memory against a query at a fixed now.
func (r *Ranker) Score(m *storage.Memory, q Query, now time.Time) Scores {
	s := Scores{
		Relevance:  relevance(m, q),
		Recency:    r.Recency(m.CreatedAt, m.LastAccessedAt, now),
		Importance: ImportanceScore(m.Importance),
	}
	s.Combined = RelevanceWeight*s.Relevance + RecencyWeight*s.Recency + ImportanceWeight*s.Importance
	return s
}

// Recency computes the exponential time-decay score.
//
// The formula is e^(-decayRate * hoursElapsed / 24), measured from the later
// of createdAt and lastAccessedAt. A just-touched memory scores 1.0 and the
// score asymptotically approaches 0 with age.
func (r *Ranker) Recency(createdAt time.Time, lastAccessedAt *time.Time, now time.Time) float64 {
	reference := createdAt
	if lastAccessedAt != nil && lastAccessedAt.After(reference) {
		reference = *lastAccessedAt
	}

	hoursElapsed := now.Sub(reference).Hours()
	if hoursElapsed < 0 {
		hoursElapsed = 0
	}

	score := math.Exp(-r.decayRate * hoursElapsed / 24.0)
	if score > 1.0 {
		return 1.0
	}
	return score
}

// ImportanceScore linearly normalizes an importance level to [0,1]:
// low=0.25, medium=0.5, high=0.75, critical=1.0. Out-of-range levels clamp.
func ImportanceScore(importance int) float64 {
	if importance < 1 {
		importance = 1
	}
	if importance > importanceLevels {
		importance = importanceLevels
	}
	return float64(importance) / importanceLevels
}

// relevance computes the query-similarity score.
//
// When both the memory and the query carry embeddings, cosine similarity is
// used, normalized from [-1,1] to [0,1]. Otherwise the score is the fraction
// of query tokens present in the memory content, case-insensitive. The
// neutral query always scores 0.
func relevance(m *storage.Memory, q Query) float64 {
	if len(q.embedding) > 0 && len(m.Embedding) > 0 {
		return (CosineSimilarity(q.embedding, m.Embedding) + 1.0) / 2.0
	}
	return keywordOverlap(q.tokens, m.Content)
}

// keywordOverlap returns the fraction of query tokens found in the content.
func keywordOverlap(queryTokens []string, content string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	contentTokens := make(map[string]struct{})
	for _, tok := range Tokenize(content) {
		contentTokens[tok] = struct{}{}
	}

	matched := 0
	for _, tok := range queryTokens {
		if _, ok := contentTokens[tok]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}

// Tokenize lowercases text and splits it into word tokens, stripping
// surrounding punctuation.
func Tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.TrimFunc(f, func(r rune) bool {
			return !isWordRune(r)
		})
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= '0' && r <= '9') ||
		r > 127
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// Mismatched lengths or zero vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Ranked pairs a memory with its scores for sorting.
type Ranked struct {
	Memory *storage.Memory
	Scores Scores
}

// Rank scores every memory against the query and sorts descending by combined
// score. Ties order by most-recent CreatedAt first, then by descending ID so
// the result is fully deterministic.
func (r *Ranker) Rank(memories []*storage.Memory, q Query, now time.Time) []Ranked {
	ranked := make([]Ranked, 0, len(memories))
	for _, m := range memories {
		ranked = append(ranked, Ranked{Memory: m, Scores: r.Score(m, q, now)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := ranked[i].Scores.Combined, ranked[j].Scores.Combined
		if si != sj {
			return si > sj
		}
		ci, cj := ranked[i].Memory.CreatedAt, ranked[j].Memory.CreatedAt
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return ranked[i].Memory.ID > ranked[j].Memory.ID
	})
	return ranked
}

// RankForEviction orders memories for pruning: ascending combined score
// against the neutral query (recency plus importance only), ties evicting the
// oldest CreatedAt first.
func (r *Ranker) RankForEviction(memories []*storage.Memory, now time.Time) []Ranked {
	ranked := make([]Ranked, 0, len(memories))
	for _, m := range memories {
		ranked = append(ranked, Ranked{Memory: m, Scores: r.Score(m, Neutral(), now)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := ranked[i].Scores.Combined, ranked[j].Scores.Combined
		if si != sj {
			return si < sj
		}
		ci, cj := ranked[i].Memory.CreatedAt, ranked[j].Memory.CreatedAt
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return ranked[i].Memory.ID < ranked[j].Memory.ID
	})
	return ranked
}
