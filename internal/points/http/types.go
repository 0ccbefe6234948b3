package http

import "github.com/oksam-app/eco-todo-backend/internal/points/domain"

type earnRequest struct {
	Points int    `json:"points"`
	Reason string `json:"reason"`
}

type pointsResponse struct {
	TotalPoints   int   `json:"totalPoints"`
	SessionPoints int   `json:"sessionPoints"`
	LastUpdated   int64 `json:"lastUpdated"`
	Fallback      bool  `json:"fallback,omitempty"`
}

type historyResponse struct {
	History  []domain.HistoryEntry `json:"history"`
	Fallback bool                  `json:"fallback,omitempty"`
}
