package transcodemodule

import (
	"context"
	"fmt"

	"github.com/camarr-app/camarr/internal/database"
	"github.com/camarr-app/camarr/internal/types"
)

// Service is the transcode service other modules consume. The catalog and
// expander are usable from the moment the service is registered; the session
// manager is attached during module init, after the camera and settings
// services exist.
type Service struct {
	catalog  *PresetCatalog
	expander *Expander
	sessions *SessionManager
}

// NewService builds the service around a fresh catalog.
func NewService() *Service {
	catalog := NewPresetCatalog()
	return &Service{
		catalog:  catalog,
		expander: NewExpander(catalog),
	}
}

// AttachSessions hands the service its session manager.
func (s *Service) AttachSessions(sessions *SessionManager) {
	s.sessions = sessions
}

// PresetNames lists preset display names for a kind, in catalog order.
func (s *Service) PresetNames(kind types.PresetKind) []string {
	return s.expander.PresetNames(kind)
}

// Expand maps a submitted argument value to its stored form.
func (s *Service) Expand(kind types.PresetKind, raw string) string {
	return s.expander.Expand(kind, raw)
}

// StartSession starts a stream session.
func (s *Service) StartSession(ctx context.Context, req types.SessionRequest) (*database.StreamSession, error) {
	if s.sessions == nil {
		return nil, fmt.Errorf("session manager not initialized")
	}
	return s.sessions.StartSession(ctx, req)
}

// StopSession stops a stream session.
func (s *Service) StopSession(ctx context.Context, id string) error {
	if s.sessions == nil {
		return fmt.Errorf("session manager not initialized")
	}
	return s.sessions.StopSession(ctx, id)
}

// GetSession loads one session.
func (s *Service) GetSession(ctx context.Context, id string) (*database.StreamSession, error) {
	if s.sessions == nil {
		return nil, fmt.Errorf("session manager not initialized")
	}
	return s.sessions.GetSession(ctx, id)
}

// ListSessions returns every session, newest first.
func (s *Service) ListSessions(ctx context.Context) ([]database.StreamSession, error) {
	if s.sessions == nil {
		return nil, fmt.Errorf("session manager not initialized")
	}
	return s.sessions.ListSessions(ctx)
}
