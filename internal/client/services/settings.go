package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/crux/internal/client/repositories/metadata"
)

// Notifications are the notification toggles.
type Notifications struct {
	Master      bool `json:"master"`
	Messages    bool `json:"messages"`
	SharedFiles bool `json:"shared_files"`
	Security    bool `json:"security"`
}

// Security are the account security toggles.
type Security struct {
	TwoFactor bool `json:"two_factor"`
	FaceID    bool `json:"face_id"`
}

// Settings is the whole settings document.
type Settings struct {
	Notifications Notifications
	Security      Security
}

// DefaultSettings is what a fresh install shows.
func DefaultSettings() Settings {
	return Settings{
		Notifications: Notifications{Master: true, Messages: true, SharedFiles: false, Security: true},
		Security:      Security{TwoFactor: true, FaceID: true},
	}
}

// Toggle names accepted by SettingsService.Toggle.
const (
	ToggleMaster      = "master"
	ToggleMessages    = "messages"
	ToggleSharedFiles = "shared_files"
	ToggleSecurity    = "security"
	ToggleTwoFactor   = "two_factor"
	ToggleFaceID      = "face_id"
)

// ToggleNames lists the toggles in display order.
var ToggleNames = []string{ToggleMaster, ToggleMessages, ToggleSharedFiles, ToggleSecurity, ToggleTwoFactor, ToggleFaceID}

type SettingsService interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
	// Toggle flips one switch, persists it and returns the new settings.
	Toggle(ctx context.Context, name string) (Settings, error)
}

type settingsService struct {
	repo metadata.Repository
}

func NewSettingsService(repo metadata.Repository) SettingsService {
	return &settingsService{repo: repo}
}

func (s *settingsService) Load(ctx context.Context) (Settings, error) {
	st := DefaultSettings()
	if _, err := metadata.GetJSON(ctx, s.repo, metadata.KeyNotifications, &st.Notifications); err != nil {
		return Settings{}, err
	}
	if _, err := metadata.GetJSON(ctx, s.repo, metadata.KeySecurity, &st.Security); err != nil {
		return Settings{}, err
	}
	return st, nil
}

func (s *settingsService) Save(ctx context.Context, st Settings) error {
	if err := metadata.SetJSON(ctx, s.repo, metadata.KeyNotifications, st.Notifications); err != nil {
		return err
	}
	return metadata.SetJSON(ctx, s.repo, metadata.KeySecurity, st.Security)
}

func (s *settingsService) Toggle(ctx context.Context, name string) (Settings, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return Settings{}, err
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case ToggleMaster:
		st.Notifications.Master = !st.Notifications.Master
	case ToggleMessages:
		st.Notifications.Messages = !st.Notifications.Messages
	case ToggleSharedFiles:
		st.Notifications.SharedFiles = !st.Notifications.SharedFiles
	case ToggleSecurity:
		st.Notifications.Security = !st.Notifications.Security
	case ToggleTwoFactor:
		st.Security.TwoFactor = !st.Security.TwoFactor
	case ToggleFaceID:
		st.Security.FaceID = !st.Security.FaceID
	default:
		return Settings{}, fmt.Errorf("unknown setting %q", name)
	}

	if err := s.Save(ctx, st); err != nil {
		return Settings{}, err
	}
	return st, nil
}
