// Package index provides the Bleve implementation of ItemIndex.
package index

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/tana/internal/models"
)

// indexedItem is the searchable projection of a media item.
type indexedItem struct {
	Title     string   `json:"title"`
	Notes     string   `json:"notes"`
	MediaType string   `json:"media_type"`
	Status    string   `json:"status"`
	Tags      []string `json:"tags"`
}

// BleveIndex implements ItemIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path. An existing index is
// opened and reused so library items survive restarts; if the mapping changes
// in code, remove the index directory and the caller rebuilds from storage.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	itemMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so short titles
	// match verbatim; English stemming mangles names like "Berserk".
	textFieldMapping.Analyzer = standard.Name
	itemMapping.AddFieldMappingsAt("title", textFieldMapping)
	itemMapping.AddFieldMappingsAt("notes", textFieldMapping)
	itemMapping.AddFieldMappingsAt("tags", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	itemMapping.AddFieldMappingsAt("media_type", keywordFieldMapping)
	itemMapping.AddFieldMappingsAt("status", keywordFieldMapping)
	im.AddDocumentMapping("item", itemMapping)
	im.DefaultType = "item"
	im.DefaultMapping = itemMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index adds or replaces a library item in the index.
func (b *BleveIndex) Index(ctx context.Context, item *models.MediaItem) error {
	return b.index.Index(item.ID, projectItem(item))
}

// Rebuild indexes all given items in a single batch.
func (b *BleveIndex) Rebuild(ctx context.Context, items []*models.MediaItem) error {
	batch := b.index.NewBatch()
	for _, item := range items {
		if err := batch.Index(item.ID, projectItem(item)); err != nil {
			return fmt.Errorf("failed to batch item %s: %w", item.ID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to apply index batch: %w", err)
	}
	return nil
}

// Search runs a match query over titles, notes, and tags and returns up to
// limit hits. When mediaType is non-empty, hits are restricted to that type.
// If the exact query matches nothing, a fuzzy pass catches small typos.
func (b *BleveIndex) Search(ctx context.Context, query string, mediaType models.MediaType, limit int) ([]*Hit, error) {
	hits, err := b.search(bleve.NewMatchQuery(query), mediaType, limit)
	if err != nil {
		return nil, err
	}
	if len(hits) > 0 {
		return hits, nil
	}
	return b.search(fuzzyQuery(query), mediaType, limit)
}

func (b *BleveIndex) search(q blevequery.Query, mediaType models.MediaType, limit int) ([]*Hit, error) {
	if mediaType != "" {
		tq := bleve.NewTermQuery(string(mediaType))
		tq.SetField("media_type")
		q = bleve.NewConjunctionQuery(q, tq)
	}
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*Hit, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &Hit{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// Delete removes an item from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// DocCount returns the total number of indexed items.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

func projectItem(item *models.MediaItem) indexedItem {
	doc := indexedItem{
		Title:     item.Title,
		MediaType: string(item.MediaType),
		Status:    string(item.Status),
		Tags:      item.Tags,
	}
	if item.Notes != nil {
		doc.Notes = *item.Notes
	}
	return doc
}

// fuzzyQuery builds a disjunction of per-term fuzzy queries with edit
// distance 1. Distance 2 is too loose for short media titles.
func fuzzyQuery(query string) blevequery.Query {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return bleve.NewMatchQuery(query)
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(1)
		queries = append(queries, fq)
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewDisjunctionQuery(queries...)
}
