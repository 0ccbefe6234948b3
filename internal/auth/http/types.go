package http

import (
	"github.com/oksam-app/eco-todo-backend/internal/auth/service"
	points "github.com/oksam-app/eco-todo-backend/internal/points/service"
)

type Handler struct {
	authService *service.AuthService
	ledger      *points.Ledger
}

func New(authService *service.AuthService, ledger *points.Ledger) *Handler {
	return &Handler{
		authService: authService,
		ledger:      ledger,
	}
}
