package assistant

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// minAutocompleteRunes is the shortest query worth a portal call.
const minAutocompleteRunes = 2

// AutocompleteRequest is the input of /api/autocomplete.
type AutocompleteRequest struct {
	Query    string `json:"query" form:"query"`
	Language string `json:"language,omitempty" form:"language"`
}

// ResourceSuggestion links to the portal page for a query.
type ResourceSuggestion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// ImageSuggestion is one portal result shown as a preview.
type ImageSuggestion struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// AutocompleteResponse always carries non-nil arrays.
type AutocompleteResponse struct {
	Resources []ResourceSuggestion `json:"resources"`
	Images    []ImageSuggestion    `json:"images"`
}

// Autocomplete suggests portal content while the user types. Queries
// shorter than two characters get empty lists without a portal call.
func (s *Service) Autocomplete(ctx context.Context, req AutocompleteRequest) AutocompleteResponse {
	resp := AutocompleteResponse{
		Resources: []ResourceSuggestion{},
		Images:    []ImageSuggestion{},
	}

	query := strings.TrimSpace(req.Query)
	if utf8.RuneCountInString(query) < minAutocompleteRunes {
		s.metrics.RecordAutocomplete("short_query")
		return resp
	}

	eq := s.enhancer.Enhance(query)
	out := s.fetcher.SearchWithFallbackChain(ctx, eq, s.resultSize)
	if len(out.Results) == 0 {
		s.metrics.RecordAutocomplete("no_results")
		return resp
	}

	for _, r := range out.Results {
		id := string(r.Code)
		if id == "" {
			id = r.Title
		}
		url := r.Thumbnail
		if url == "" {
			url = r.Path
		}
		resp.Images = append(resp.Images, ImageSuggestion{
			ID:       id,
			URL:      url,
			Title:    r.Title,
			Category: r.Category,
		})
	}
	resp.Resources = append(resp.Resources, ResourceSuggestion{
		Name:        fmt.Sprintf(`Browse: "%s"`, query),
		Description: fmt.Sprintf("Found %d results", len(out.Results)),
		URL:         s.resolver.Resolve(query).URL,
	})

	s.metrics.RecordAutocomplete("results")
	return resp
}
