package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/config"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/model"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/repository"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/utils"
)

const pinLength = 6

type AuthService struct {
	Viewers repository.ViewerRepository
	Config  *config.Config
}

func NewAuthService(viewers repository.ViewerRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		Viewers: viewers,
		Config:  cfg,
	}
}

// IssuePIN mints a unique access PIN and stores the viewer behind it.
func (s *AuthService) IssuePIN(label string) (*model.Viewer, error) {
	// Try up to 5 times to generate a unique PIN
	for i := 0; i < 5; i++ {
		pin, err := utils.GeneratePIN(pinLength)
		if err != nil {
			return nil, err
		}

		existing, err := s.Viewers.GetViewerByPIN(pin)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return s.Viewers.CreateViewer(pin, label)
		}
	}
	return nil, errors.New("failed to generate unique PIN")
}

// Login exchanges a PIN for a signed session token.
func (s *AuthService) Login(pin string) (string, *model.Viewer, error) {
	viewer, err := s.Viewers.GetViewerByPIN(pin)
	if err != nil {
		return "", nil, err
	}
	if viewer == nil {
		return "", nil, errors.New("invalid credentials")
	}

	if err := s.Viewers.UpdateLastLogin(viewer.ID); err != nil {
		return "", nil, err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"viewer_id": viewer.ID,
		"exp":       time.Now().Add(24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return "", nil, err
	}

	return tokenString, viewer, nil
}
