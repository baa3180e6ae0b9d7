package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/helloSanmi/e-vote/internal/entity"
	"github.com/meilisearch/meilisearch-go"
)

const candidatesIndex = "candidates"

// CandidateIndex keeps the candidate directory searchable. Index and remove
// failures are logged by callers and never fail a request.
type CandidateIndex interface {
	IndexCandidates(ctx context.Context, candidates []*entity.Candidate) error
	RemoveCandidates(ctx context.Context, ids []uint) error
	SearchCandidates(ctx context.Context, query string, limit int) ([]CandidateDoc, error)
}

type CandidateDoc struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	LGA       string  `json:"lga"`
	PhotoURL  *string `json:"photoUrl"`
	PeriodID  *uint   `json:"periodId"`
	Published bool    `json:"published"`
}

func toDoc(c *entity.Candidate) CandidateDoc {
	return CandidateDoc{
		ID:        c.ID,
		Name:      c.Name,
		LGA:       c.LGA,
		PhotoURL:  c.PhotoURL,
		PeriodID:  c.PeriodID,
		Published: c.Published,
	}
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
}

func NewMeiliSearchService(client meilisearch.ServiceManager) CandidateIndex {
	s := &meiliSearchService{client: client}
	s.initIndex()
	return s
}

func (s *meiliSearchService) initIndex() {
	filterable := []any{"periodId", "published"}
	if _, err := s.client.Index(candidatesIndex).UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("Failed to update candidates filterable attributes: %v", err)
	}

	searchable := []string{"name", "lga"}
	if _, err := s.client.Index(candidatesIndex).UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("Failed to update candidates searchable attributes: %v", err)
	}
}

func (s *meiliSearchService) IndexCandidates(ctx context.Context, candidates []*entity.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}

	docs := make([]CandidateDoc, 0, len(candidates))
	for _, c := range candidates {
		docs = append(docs, toDoc(c))
	}

	task, err := s.client.Index(candidatesIndex).AddDocuments(docs, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index candidates: %w", err)
	}
	log.Printf("Indexed %d candidates, task id: %d", len(docs), task.TaskUID)
	return nil
}

func (s *meiliSearchService) RemoveCandidates(ctx context.Context, ids []uint) error {
	for _, id := range ids {
		if _, err := s.client.Index(candidatesIndex).DeleteDocument(strconv.FormatUint(uint64(id), 10)); err != nil {
			return fmt.Errorf("remove candidate %d from index: %w", id, err)
		}
	}
	return nil
}

func (s *meiliSearchService) SearchCandidates(ctx context.Context, query string, limit int) ([]CandidateDoc, error) {
	raw, err := s.client.Index(candidatesIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit:  int64(limit),
		Filter: "published = true",
	})
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}

	var resp struct {
		Hits []CandidateDoc `json:"hits"`
	}
	if raw != nil {
		if err := json.Unmarshal(*raw, &resp); err != nil {
			return nil, fmt.Errorf("decode search response: %w", err)
		}
	}
	if resp.Hits == nil {
		resp.Hits = []CandidateDoc{}
	}
	return resp.Hits, nil
}

// Disabled is used when no search backend is configured.
type Disabled struct{}

func (Disabled) IndexCandidates(context.Context, []*entity.Candidate) error { return nil }
func (Disabled) RemoveCandidates(context.Context, []uint) error             { return nil }
func (Disabled) SearchCandidates(context.Context, string, int) ([]CandidateDoc, error) {
	return []CandidateDoc{}, nil
}

func strPtr(s string) *string {
	return &s
}
