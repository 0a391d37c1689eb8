// Package kb surfaces knowledge base articles for tickets and chatbot
// answers. Elasticsearch backs full-text search; a static reference
// table answers when the cluster is unreachable or not configured.
package kb

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	stderrors "helpdesk-automation/internal/common/errors"
	"helpdesk-automation/internal/common/logger"
	"helpdesk-automation/internal/models"
)

// Article is one knowledge base entry returned by search.
type Article struct {
	ID       string                `json:"id"`
	Title    string                `json:"title"`
	Category models.TicketCategory `json:"category"`
	Content  string                `json:"content,omitempty"`
	Score    float64               `json:"score,omitempty"`
}

// Searcher queries the article index.
type Searcher struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

// NewSearcher builds a searcher; client may be nil, in which case only
// the static suggestions are served.
func NewSearcher(client *elasticsearch.Client, index string, log logger.Logger) *Searcher {
	return &Searcher{client: client, index: index, logger: log}
}

// Search runs a full-text query against the article index, falling
// back to keyword suggestions on any failure.
func (s *Searcher) Search(ctx context.Context, query string, size int) ([]Article, error) {
	if s.client == nil {
		return s.keywordFallback(query, size), nil
	}
	if size <= 0 {
		size = 5
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^3", "content^2", "category"},
				"type":   "best_fields",
			},
		},
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, stderrors.NewSearchQueryFailedError(s.index, err)
	}

	from := 0
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(encoded)),
		From:  &from,
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		s.logger.Warn("Article search failed, using static suggestions", map[string]interface{}{
			"error": err.Error(),
		})
		return s.keywordFallback(query, size), nil
	}
	defer res.Body.Close()

	if res.IsError() {
		s.logger.Warn("Article search returned error status", map[string]interface{}{
			"status": res.Status(),
		})
		return s.keywordFallback(query, size), nil
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string  `json:"_id"`
				Score  float64 `json:"_score"`
				Source Article `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, stderrors.NewSearchQueryFailedError(s.index, err)
	}

	articles := make([]Article, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		article := hit.Source
		article.ID = hit.ID
		article.Score = hit.Score
		articles = append(articles, article)
	}
	return articles, nil
}

// suggestionGroup maps query keywords to static article references.
type suggestionGroup struct {
	keywords []string
	articles []Article
}

var suggestionGroups = []suggestionGroup{
	{
		keywords: []string{"network", "internet", "wifi"},
		articles: []Article{
			{ID: "KB-001", Title: "Network Troubleshooting Guide", Category: models.CategoryNetwork},
			{ID: "KB-015", Title: "VPN Connection Issues", Category: models.CategoryNetwork},
			{ID: "KB-024", Title: "WiFi Setup Instructions", Category: models.CategoryNetwork},
		},
	},
	{
		keywords: []string{"password", "login", "access"},
		articles: []Article{
			{ID: "KB-003", Title: "Password Reset Procedure", Category: models.CategoryAccess},
			{ID: "KB-012", Title: "Account Access Issues", Category: models.CategoryAccess},
			{ID: "KB-019", Title: "Multi-Factor Authentication Setup", Category: models.CategoryAccess},
		},
	},
	{
		keywords: []string{"email", "outlook", "mail"},
		articles: []Article{
			{ID: "KB-006", Title: "Email Configuration Guide", Category: models.CategoryEmail},
			{ID: "KB-014", Title: "Outlook Troubleshooting", Category: models.CategoryEmail},
			{ID: "KB-021", Title: "Email Forwarding Setup", Category: models.CategoryEmail},
		},
	},
	{
		keywords: []string{"printer", "print"},
		articles: []Article{
			{ID: "KB-008", Title: "Printer Setup Guide", Category: models.CategoryPrinter},
			{ID: "KB-016", Title: "Print Queue Issues", Category: models.CategoryPrinter},
			{ID: "KB-023", Title: "Network Printer Configuration", Category: models.CategoryPrinter},
		},
	},
}

var generalArticles = []Article{
	{ID: "KB-002", Title: "General IT Support FAQ", Category: models.CategoryOther},
	{ID: "KB-010", Title: "Common Issues and Solutions", Category: models.CategoryOther},
}

func (s *Searcher) keywordFallback(query string, size int) []Article {
	lower := strings.ToLower(query)

	var suggestions []Article
	for _, group := range suggestionGroups {
		for _, keyword := range group.keywords {
			if strings.Contains(lower, keyword) {
				suggestions = append(suggestions, group.articles...)
				break
			}
		}
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions, generalArticles...)
	}
	if size > 0 && len(suggestions) > size {
		suggestions = suggestions[:size]
	}
	return suggestions
}
