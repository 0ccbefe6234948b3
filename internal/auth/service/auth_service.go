package service

import (
	"github.com/oksam-app/eco-todo-backend/internal/auth/domain"
	"github.com/oksam-app/eco-todo-backend/internal/auth/repository"
)

type AuthService struct {
	userRepo *repository.UserRepository
}

func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

// GetUserByFirebaseUID retrieves a user by Firebase UID
func (s *AuthService) GetUserByFirebaseUID(uid string) (*domain.User, error) {
	return s.userRepo.GetByFirebaseUID(uid)
}

// SyncUser creates or updates the account mirror from Firebase Auth
// data. Called after signup/login so the row always exists before the
// ledger is touched.
func (s *AuthService) SyncUser(req *domain.CreateUserRequest) (*domain.User, error) {
	existing, err := s.userRepo.GetByFirebaseUID(req.FirebaseUID)
	if err == nil && existing != nil {
		if req.Email != "" {
			existing.Email = req.Email
		}
		if req.DisplayName != nil {
			existing.DisplayName = req.DisplayName
		}
		if err := s.userRepo.Update(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	user := &domain.User{
		FirebaseUID: req.FirebaseUID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser applies a profile update
func (s *AuthService) UpdateUser(uid string, req *domain.UpdateUserRequest) (*domain.User, error) {
	user, err := s.userRepo.GetByFirebaseUID(uid)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		user.DisplayName = req.DisplayName
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// RecordLogin stamps the user's last login time
func (s *AuthService) RecordLogin(uid string) error {
	return s.userRepo.RecordLogin(uid)
}
