package web

import (
	"github.com/DjordjeVuckovic/wiki-hunter/internal/session"
	"github.com/DjordjeVuckovic/wiki-hunter/internal/wiki"
	"github.com/google/uuid"
)

type SearchRequest struct {
	Query string `json:"query" form:"query"`
}

type ResultDTO struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Snippet      string `json:"snippet"`
	Date         string `json:"date"`
	LastModified string `json:"lastModified"`
	URL          string `json:"url"`
}

type SnapshotDTO struct {
	SessionID string         `json:"sessionId"`
	Query     string         `json:"query"`
	Results   []ResultDTO    `json:"results"`
	Status    session.Status `json:"status"`
	Error     string         `json:"error,omitempty"`
	HasMore   bool           `json:"hasMore"`
	Searched  bool           `json:"searched"`
}

func NewSnapshotDTO(id uuid.UUID, host string, snap session.Snapshot) SnapshotDTO {
	results := make([]ResultDTO, 0, len(snap.Results))
	for _, r := range snap.Results {
		results = append(results, ResultDTO{
			ID:           r.ID,
			Title:        r.Title,
			Snippet:      r.DisplaySnippet,
			Date:         r.DisplayDate,
			LastModified: r.LastModified,
			URL:          wiki.PageURL(host, r.ID),
		})
	}

	return SnapshotDTO{
		SessionID: id.String(),
		Query:     snap.Query,
		Results:   results,
		Status:    snap.Status,
		Error:     snap.ErrorMessage,
		HasMore:   snap.HasMore,
		Searched:  snap.Searched,
	}
}
