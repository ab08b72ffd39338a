package transcodemodule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/camarr-app/camarr/internal/database"
	"github.com/camarr-app/camarr/internal/events"
	"github.com/camarr-app/camarr/internal/types"
)

// Setting keys the session manager reads from the settings service. These
// mirror the vocabulary the settings engine stores under.
const (
	settingDecoderArguments = "decoderArguments"
	settingEncoderArguments = "encoderArguments"
	settingHubStreamChannel = "hubStreamChannel"
)

// fallbackEncoderPreset is expanded when a camera has no stored encoder
// arguments.
const fallbackEncoderPreset = "Software x264"

// ErrSessionNotFound aliases the shared sentinel for API error mapping.
var ErrSessionNotFound = types.ErrSessionNotFound

// CameraSource is the slice of the camera registry the session manager
// needs.
type CameraSource interface {
	GetCamera(ctx context.Context, id string) (*database.Camera, error)
}

// SettingSource reads stored setting values.
type SettingSource interface {
	Value(ctx context.Context, cameraID, key string) (string, bool, error)
}

// SessionManager starts, stops, and restarts stream sessions. It is the
// downstream consumer of deferred argument templates: session start is the
// only place template fields are substituted with request values. Camarr
// never execs ffmpeg itself; each session record carries the fully rendered
// argument vector for the transcoding host.
type SessionManager struct {
	db           *gorm.DB
	cameras      CameraSource
	settings     SettingSource
	expander     *Expander
	builder      *ArgsBuilder
	bus          events.EventBus
	maxPerCamera int
	logger       hclog.Logger
}

// NewSessionManager wires a session manager. The bus may be nil, in which
// case session events are not published.
func NewSessionManager(db *gorm.DB, cameras CameraSource, settings SettingSource, expander *Expander, builder *ArgsBuilder, bus events.EventBus, maxPerCamera int, logger hclog.Logger) *SessionManager {
	if maxPerCamera < 1 {
		maxPerCamera = 1
	}
	return &SessionManager{
		db:           db,
		cameras:      cameras,
		settings:     settings,
		expander:     expander,
		builder:      builder,
		bus:          bus,
		maxPerCamera: maxPerCamera,
		logger:       logger,
	}
}

// StartSession renders the camera's stored argument templates against the
// request and persists a running session carrying the final vector.
func (sm *SessionManager) StartSession(ctx context.Context, req types.SessionRequest) (*database.StreamSession, error) {
	cam, err := sm.cameras.GetCamera(ctx, req.CameraID)
	if err != nil {
		return nil, err
	}

	active, err := sm.ActiveSessionsForCamera(ctx, req.CameraID)
	if err != nil {
		return nil, err
	}
	if len(active) >= sm.maxPerCamera {
		return nil, fmt.Errorf("camera %s already has %d active sessions (limit %d)",
			req.CameraID, len(active), sm.maxPerCamera)
	}

	applyRequestDefaults(&req)
	channel, err := sm.resolveChannel(ctx, req)
	if err != nil {
		return nil, err
	}

	session := &database.StreamSession{
		ID:             uuid.NewString(),
		CameraID:       req.CameraID,
		Channel:        channel,
		State:          types.SessionQueued,
		Width:          req.Width,
		Height:         req.Height,
		Framerate:      req.Framerate,
		MaxBitrateKbps: req.MaxBitrateKbps,
	}

	args, err := sm.renderArguments(ctx, req, cam.Host, channel, session.ID)
	if err != nil {
		session.State = types.SessionFailed
		session.Error = err.Error()
		if createErr := sm.db.WithContext(ctx).Create(session).Error; createErr != nil {
			return nil, createErr
		}
		sm.publish(events.EventSessionFailed, session, err.Error())
		return nil, err
	}
	session.Arguments = strings.Join(args, " ")

	if err := sm.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	session.State = types.SessionRunning
	session.StartedAt = time.Now()
	if err := sm.db.WithContext(ctx).Model(session).
		Updates(map[string]interface{}{"state": session.State, "started_at": session.StartedAt}).Error; err != nil {
		return nil, fmt.Errorf("failed to mark session running: %w", err)
	}

	sm.publish(events.EventSessionStarted, session, "")
	sm.logger.Info("session started",
		"session", session.ID, "camera", session.CameraID, "channel", channel)
	return session, nil
}

// StopSession marks a session stopped. Stopping an already finished session
// is a no-op.
func (sm *SessionManager) StopSession(ctx context.Context, id string) error {
	session, err := sm.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if session.State == types.SessionStopped || session.State == types.SessionFailed {
		return nil
	}

	now := time.Now()
	if err := sm.db.WithContext(ctx).Model(session).
		Updates(map[string]interface{}{"state": types.SessionStopped, "stopped_at": now}).Error; err != nil {
		return fmt.Errorf("failed to stop session: %w", err)
	}
	session.State = types.SessionStopped
	session.StoppedAt = &now

	sm.publish(events.EventSessionStopped, session, "")
	sm.logger.Info("session stopped", "session", id, "camera", session.CameraID)
	return nil
}

// GetSession loads one session by ID.
func (sm *SessionManager) GetSession(ctx context.Context, id string) (*database.StreamSession, error) {
	var session database.StreamSession
	err := sm.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessions returns every session, newest first.
func (sm *SessionManager) ListSessions(ctx context.Context) ([]database.StreamSession, error) {
	var sessions []database.StreamSession
	err := sm.db.WithContext(ctx).Order("created_at DESC").Find(&sessions).Error
	return sessions, err
}

// ActiveSessionsForCamera returns the camera's queued and running sessions.
func (sm *SessionManager) ActiveSessionsForCamera(ctx context.Context, cameraID string) ([]database.StreamSession, error) {
	var sessions []database.StreamSession
	err := sm.db.WithContext(ctx).
		Where("camera_id = ? AND state IN ?", cameraID, []string{types.SessionQueued, types.SessionRunning}).
		Find(&sessions).Error
	return sessions, err
}

// RestartForCamera re-renders the argument vector of every active session
// for a camera from its current stored settings. Called when a
// stream-affecting setting changes.
func (sm *SessionManager) RestartForCamera(ctx context.Context, cameraID string) error {
	cam, err := sm.cameras.GetCamera(ctx, cameraID)
	if err != nil {
		return err
	}
	active, err := sm.ActiveSessionsForCamera(ctx, cameraID)
	if err != nil {
		return err
	}

	for i := range active {
		session := &active[i]
		req := types.SessionRequest{
			CameraID:       session.CameraID,
			Channel:        session.Channel,
			Width:          session.Width,
			Height:         session.Height,
			Framerate:      session.Framerate,
			MaxBitrateKbps: session.MaxBitrateKbps,
		}
		args, err := sm.renderArguments(ctx, req, cam.Host, session.Channel, session.ID)
		if err != nil {
			sm.logger.Warn("session restart failed",
				"session", session.ID, "camera", cameraID, "error", err)
			continue
		}
		session.Arguments = strings.Join(args, " ")
		session.RestartCount++
		if err := sm.db.WithContext(ctx).Model(session).
			Updates(map[string]interface{}{
				"arguments":     session.Arguments,
				"restart_count": session.RestartCount,
			}).Error; err != nil {
			return fmt.Errorf("failed to update restarted session %s: %w", session.ID, err)
		}
		sm.publish(events.EventSessionRestarted, session, "")
		sm.logger.Info("session restarted",
			"session", session.ID, "camera", cameraID, "restarts", session.RestartCount)
	}
	return nil
}

// StopForCamera stops every active session for a camera. Called when a
// camera is removed.
func (sm *SessionManager) StopForCamera(ctx context.Context, cameraID string) error {
	active, err := sm.ActiveSessionsForCamera(ctx, cameraID)
	if err != nil {
		return err
	}
	for i := range active {
		if err := sm.StopSession(ctx, active[i].ID); err != nil {
			return err
		}
	}
	return nil
}

// renderArguments loads stored decoder and encoder arguments, substitutes
// deferred template fields against the request, and assembles the final
// vector. Missing decoder arguments mean no decoder flags; missing encoder
// arguments fall back to the software encoder preset.
func (sm *SessionManager) renderArguments(ctx context.Context, req types.SessionRequest, host, channel, sessionID string) ([]string, error) {
	decoderStored, _, err := sm.settings.Value(ctx, req.CameraID, settingDecoderArguments)
	if err != nil {
		return nil, fmt.Errorf("failed to read decoder arguments: %w", err)
	}
	encoderStored, present, err := sm.settings.Value(ctx, req.CameraID, settingEncoderArguments)
	if err != nil {
		return nil, fmt.Errorf("failed to read encoder arguments: %w", err)
	}
	if !present || encoderStored == "" {
		encoderStored = sm.expander.Expand(types.PresetEncoder, fallbackEncoderPreset)
	}

	decoderArgs := ParseExpression(decoderStored).Render(req)
	encoderArgs := ParseExpression(encoderStored).Render(req)

	return sm.builder.Build(ctx, req, host, channel, decoderArgs, encoderArgs, sessionID), nil
}

// resolveChannel prefers the request's channel, then the stored hub stream
// channel, then the camera's default stream path.
func (sm *SessionManager) resolveChannel(ctx context.Context, req types.SessionRequest) (string, error) {
	if req.Channel != "" {
		return req.Channel, nil
	}
	stored, present, err := sm.settings.Value(ctx, req.CameraID, settingHubStreamChannel)
	if err != nil {
		return "", fmt.Errorf("failed to read hub stream channel: %w", err)
	}
	if present && stored != "" {
		return stored, nil
	}
	return "", nil
}

// applyRequestDefaults fills unset output constraints so deferred templates
// always render to concrete values.
func applyRequestDefaults(req *types.SessionRequest) {
	if req.Width <= 0 {
		req.Width = 1280
	}
	if req.Height <= 0 {
		req.Height = 720
	}
	if req.Framerate <= 0 {
		req.Framerate = 30
	}
	if req.MaxBitrateKbps <= 0 {
		req.MaxBitrateKbps = 2000
	}
}

func (sm *SessionManager) publish(eventType events.EventType, session *database.StreamSession, message string) {
	if sm.bus == nil {
		return
	}
	title := fmt.Sprintf("Stream session %s", session.State)
	event := events.NewEvent(eventType, "transcodemodule", title, message)
	event.Data["session_id"] = session.ID
	event.Data["camera_id"] = session.CameraID
	event.Data["channel"] = session.Channel
	sm.bus.PublishAsync(event)
}
