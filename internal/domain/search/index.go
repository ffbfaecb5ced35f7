// Package search maintains an in-memory full-text index over the
// pharmacies appearing in parsed duty schedules.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/char/asciifolding"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"

	"github.com/farmaguardia/farmaguardia/internal/domain/regions"
	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
)

// Entry is one indexed pharmacy.
type Entry struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	LocationID string `json:"location_id"`
	RegionID   string `json:"region_id"`
}

// Index wraps a memory-only bleve index. Rebuilds happen per region after
// every parse run; lookups stay available throughout.
type Index struct {
	mu     sync.RWMutex
	idx    bleve.Index
	logger *slog.Logger
}

// NewIndex creates an empty in-memory pharmacy index. Both indexed text and
// queries go through an accent-folding analyzer: users type "garcia" for a
// pharmacy printed as "GARCÍA".
func NewIndex(logger *slog.Logger) (*Index, error) {
	mapping := bleve.NewIndexMapping()
	err := mapping.AddCustomAnalyzer("folding", map[string]interface{}{
		"type":          custom.Name,
		"char_filters":  []string{asciifolding.Name},
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure search analyzer: %w", err)
	}
	mapping.DefaultAnalyzer = "folding"

	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}
	return &Index{idx: idx, logger: logger}, nil
}

// IndexRegion replaces a region's indexed pharmacies with the ones found in
// a freshly parsed schedule map. Documents are keyed by region, location and
// pharmacy name, so re-indexing the same roster is idempotent.
func (i *Index) IndexRegion(regionID regions.ID, schedules schedule.Map) error {
	i.mu.RLock()
	defer i.mu.RUnlock()

	batch := i.idx.NewBatch()
	count := 0
	for locationID, list := range schedules {
		for _, ps := range list {
			for _, pharmacies := range ps.Shifts {
				for _, p := range pharmacies {
					if !schedule.HasValidName(p.Name) {
						continue
					}
					docID := fmt.Sprintf("%s/%s/%s", regionID, locationID, p.Name)
					entry := Entry{
						Name:       p.Name,
						Address:    p.Address,
						Phone:      p.Phone,
						LocationID: string(locationID),
						RegionID:   string(regionID),
					}
					if err := batch.Index(docID, entry); err != nil {
						return fmt.Errorf("failed to index pharmacy: %w", err)
					}
					count++
				}
			}
		}
	}

	if err := i.idx.Batch(batch); err != nil {
		return fmt.Errorf("failed to apply index batch: %w", err)
	}
	i.logger.Debug("search index updated",
		slog.String("region", string(regionID)),
		slog.Int("documents", count))
	return nil
}

// Search returns up to limit pharmacies matching the query, best first.
func (i *Index) Search(ctx context.Context, q string, limit int) ([]Entry, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	query := bleve.NewMatchQuery(q)
	query.SetFuzziness(1)
	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	req.Fields = []string{"*"}

	res, err := i.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	entries := make([]Entry, 0, len(res.Hits))
	for _, hit := range res.Hits {
		entries = append(entries, Entry{
			Name:       stringField(hit.Fields, "name"),
			Address:    stringField(hit.Fields, "address"),
			Phone:      stringField(hit.Fields, "phone"),
			LocationID: stringField(hit.Fields, "location_id"),
			RegionID:   stringField(hit.Fields, "region_id"),
		})
	}
	return entries, nil
}

// Close releases the index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.idx.Close()
}

func stringField(fields map[string]interface{}, key string) string {
	s, _ := fields[key].(string)
	return s
}
