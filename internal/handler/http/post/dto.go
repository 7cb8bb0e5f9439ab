// Package post provides HTTP handlers for the generated post read API and
// the on-demand generation trigger.
package post

import (
	"time"

	"trendscribe/internal/domain/entity"
)

// DTO represents the JSON structure for post data transfer.
type DTO struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	SourcesAnalyzed string    `json:"sources_analyzed"`
	Backend         string    `json:"backend"`
	CreatedAt       time.Time `json:"created_at"`
}

func toDTO(p *entity.Post) DTO {
	return DTO{
		ID:              p.ID,
		Title:           p.Title,
		Body:            p.Body,
		SourcesAnalyzed: p.SourcesAnalyzed,
		Backend:         p.Backend,
		CreatedAt:       p.CreatedAt,
	}
}

// GenerateResponse is returned with 201 after an on-demand run.
type GenerateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Post    DTO    `json:"post"`
}
