// Package search provides full-text search over the beats of a compiled
// timeline.
package search

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/vinayprograms/mafiareplay/internal/timeline"
)

// DefaultLimit caps the hits returned when no limit is given.
const DefaultLimit = 50

// beatDocument is the indexed form of a beat.
type beatDocument struct {
	Type      string `json:"type"`
	Phase     string `json:"phase"`
	Speaker   string `json:"speaker"`
	Target    string `json:"target"`
	Label     string `json:"label"`
	Text      string `json:"text"`
	Reasoning string `json:"reasoning"`
	Index     int    `json:"index"`
}

// Hit is one matching beat.
type Hit struct {
	Index int
	Score float64
	Beat  timeline.Beat
}

// Index is an in-memory index over one timeline. Build a new one whenever
// the timeline is recompiled.
type Index struct {
	index bleve.Index
	beats []timeline.Beat
}

// buildIndexMapping creates the Bleve index mapping.
func buildIndexMapping() mapping.IndexMapping {
	beatMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name

	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	numericFieldMapping := bleve.NewNumericFieldMapping()

	beatMapping.AddFieldMappingsAt("type", keywordFieldMapping)
	beatMapping.AddFieldMappingsAt("phase", keywordFieldMapping)
	beatMapping.AddFieldMappingsAt("speaker", keywordFieldMapping)
	beatMapping.AddFieldMappingsAt("target", keywordFieldMapping)
	beatMapping.AddFieldMappingsAt("label", textFieldMapping)
	beatMapping.AddFieldMappingsAt("text", textFieldMapping)
	beatMapping.AddFieldMappingsAt("reasoning", textFieldMapping)
	beatMapping.AddFieldMappingsAt("index", numericFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = beatMapping
	indexMapping.DefaultAnalyzer = standard.Name

	return indexMapping
}

// Build indexes every beat of tl. Only what the timeline's mode exposes is
// indexed, so a public index never matches hidden reasoning.
func Build(tl *timeline.Timeline) (*Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	batch := index.NewBatch()
	for _, b := range tl.Beats {
		doc := beatDocument{
			Type:      b.Type,
			Phase:     b.Phase,
			Speaker:   b.Speaker,
			Target:    b.Target,
			Label:     b.Label,
			Text:      b.Text,
			Reasoning: b.Reasoning,
			Index:     b.Index,
		}
		if err := batch.Index(strconv.Itoa(b.Index), doc); err != nil {
			index.Close()
			return nil, fmt.Errorf("failed to index beat %d: %w", b.Index, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to index beats: %w", err)
	}

	return &Index{index: index, beats: tl.Beats}, nil
}

// Close releases the index.
func (x *Index) Close() error {
	return x.index.Close()
}

// Search runs q and returns matching beats in timeline order. Plain words
// match label, text and reasoning; bleve query-string syntax
// (speaker:Ann, +phase:day_1, "exact phrase") is also accepted.
func (x *Index) Search(q string, limit int) ([]Hit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := bleve.NewSearchRequest(buildQuery(q))
	req.Size = limit

	res, err := x.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		i, err := strconv.Atoi(h.ID)
		if err != nil || i < 0 || i >= len(x.beats) {
			continue
		}
		hits = append(hits, Hit{Index: i, Score: h.Score, Beat: x.beats[i]})
	}
	sort.Slice(hits, func(a, b int) bool { return hits[a].Index < hits[b].Index })
	return hits, nil
}

// Indexes returns just the beat indices matching q.
func (x *Index) Indexes(q string) ([]int, error) {
	hits, err := x.Search(q, len(x.beats))
	if err != nil {
		return nil, err
	}
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.Index
	}
	return out, nil
}

// buildQuery treats input with field or operator syntax as a query string
// and anything else as a match over the free-text fields and the names.
func buildQuery(q string) query.Query {
	if strings.ContainsAny(q, ":+-\"") {
		return bleve.NewQueryStringQuery(q)
	}

	var queries []query.Query
	for _, field := range []string{"label", "text", "reasoning"} {
		m := bleve.NewMatchQuery(q)
		m.SetField(field)
		queries = append(queries, m)
	}
	for _, field := range []string{"speaker", "target"} {
		t := bleve.NewTermQuery(q)
		t.SetField(field)
		queries = append(queries, t)
	}
	return bleve.NewDisjunctionQuery(queries...)
}
