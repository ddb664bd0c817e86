package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdview/internal/domain/models"
	"github.com/mamadbah2/herdview/internal/repository/archive"
	"github.com/mamadbah2/herdview/internal/repository/sqlite"
	"github.com/mamadbah2/herdview/internal/service/render"
	"github.com/mamadbah2/herdview/internal/service/views"
)

var (
	// ErrDatabaseMissing indicates the archive holds no file with the expected database name.
	ErrDatabaseMissing = errors.New("database file missing from archive")
	// ErrNoSession indicates the caller has no loaded archive.
	ErrNoSession = errors.New("no archive loaded")
)

// Options configures archive loading.
type Options struct {
	DBFileName string
	TempDir    string
}

// Manager owns the live sessions, keyed by session ID.
type Manager struct {
	opts     Options
	views    *views.Controller
	renderer *render.Renderer
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager.
func NewManager(opts Options, controller *views.Controller, renderer *render.Renderer, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if controller == nil {
		controller = views.NewController(nil, logger.Named("views"))
	}
	if renderer == nil {
		renderer = render.NewRenderer(logger.Named("render"))
	}
	return &Manager{
		opts:     opts,
		views:    controller,
		renderer: renderer,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Load opens an archive as a new session showing the roster. When replaceID
// names a live session it is closed and replaced; it is left untouched if
// the load fails.
func (m *Manager) Load(ctx context.Context, name string, data []byte, replaceID string) (*Session, error) {
	index, err := archive.Open(data)
	if err != nil {
		return nil, err
	}

	dbEntry, ok := index.FindBase(m.opts.DBFileName)
	if !ok {
		return nil, fmt.Errorf("%w: expected %s", ErrDatabaseMissing, m.opts.DBFileName)
	}

	tempPath, err := m.extract(index, dbEntry)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.Open(ctx, tempPath, m.logger.Named("sqlite"))
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, err
	}

	now := m.now()
	s := &Session{
		ID:          uuid.NewString(),
		ArchiveName: name,
		CreatedAt:   now,
		index:       index,
		db:          db,
		tempPath:    tempPath,
		views:       m.views,
		renderer:    m.renderer,
		now:         m.now,
		lastSeen:    now,
	}
	s.logger = m.logger.With(zap.String("session_id", s.ID))
	s.SwitchTab(ctx, models.TabRoster)

	m.mu.Lock()
	previous := m.sessions[replaceID]
	delete(m.sessions, replaceID)
	m.sessions[s.ID] = s
	m.mu.Unlock()

	if previous != nil {
		if err := previous.Close(); err != nil {
			m.logger.Warn("failed to release replaced session", zap.Error(err))
		}
	}

	m.logger.Info("archive loaded",
		zap.String("session_id", s.ID),
		zap.String("archive", name),
		zap.String("database", dbEntry),
		zap.Int("entries", index.Len()))
	return s, nil
}

// Get returns the live session with id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNoSession
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SweepIdle closes the sessions unused for longer than ttl and returns how many it closed.
func (m *Manager) SweepIdle(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		if err := s.Close(); err != nil {
			m.logger.Warn("failed to release idle session", zap.String("session_id", s.ID), zap.Error(err))
		}
	}
	return len(expired)
}

// CloseAll releases every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		if err := s.Close(); err != nil {
			m.logger.Warn("failed to release session", zap.String("session_id", s.ID), zap.Error(err))
		}
	}
}

func (m *Manager) extract(index *archive.Index, entry string) (string, error) {
	data, err := index.Bytes(entry)
	if err != nil {
		return "", fmt.Errorf("extract database: %w", err)
	}

	f, err := os.CreateTemp(m.opts.TempDir, "herdview-*.db")
	if err != nil {
		return "", fmt.Errorf("create snapshot file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write snapshot file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close snapshot file: %w", err)
	}
	return f.Name(), nil
}
