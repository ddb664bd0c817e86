package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdview/internal/domain/models"
	"github.com/mamadbah2/herdview/internal/repository/archive"
	"github.com/mamadbah2/herdview/internal/repository/sqlite"
	"github.com/mamadbah2/herdview/internal/service/render"
	"github.com/mamadbah2/herdview/internal/service/views"
)

// ErrPhotoNotFound indicates a photo handle that the current render never issued.
var ErrPhotoNotFound = errors.New("photo handle not found")

// Session is the state of one loaded archive. It is created on a successful
// load and replaced wholesale by the next one.
type Session struct {
	ID          string
	ArchiveName string
	CreatedAt   time.Time

	index    *archive.Index
	db       *sqlite.DB
	tempPath string

	views    *views.Controller
	renderer *render.Renderer
	logger   *zap.Logger
	now      func() time.Time

	mu         sync.Mutex
	lastSeen   time.Time
	closed     bool
	result     views.Result
	loadErr    error
	query      string
	generation uint64
	photos     map[string]string
	view       models.View
}

// SwitchTab enters tab: the filter is cleared and the view is reloaded from the snapshot.
func (s *Session) SwitchTab(ctx context.Context, tab models.Tab) models.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	s.query = ""

	res, err := s.views.Load(ctx, tab, s.db)
	if err != nil {
		s.logger.Error("view failed", zap.String("tab", string(tab)), zap.Error(err))
		s.result = views.Result{Tab: tab}
		s.loadErr = err
	} else {
		s.result = res
		s.loadErr = nil
	}

	return s.renderLocked(ctx)
}

// Filter re-renders the active view with only the rows matching query. The
// query always applies to the full record set the view was loaded with.
func (s *Session) Filter(ctx context.Context, query string) models.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	s.query = query
	return s.renderLocked(ctx)
}

// View returns the last rendered view.
func (s *Session) View() models.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	return s.view
}

// DisplayedTable returns the filter-wired table currently on screen.
func (s *Session) DisplayedTable() (*models.Table, models.Tab, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	panel := s.view.FilterPanel()
	if panel == nil || panel.Table == nil {
		return nil, s.view.Tab, false
	}
	return panel.Table, s.view.Tab, true
}

// Photo returns the bytes and content type behind a photo handle of the
// given render generation.
func (s *Session) Photo(generation uint64, id string) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	if generation != s.generation {
		return nil, "", render.ErrStaleGeneration
	}
	ref, ok := s.photos[id]
	if !ok {
		return nil, "", ErrPhotoNotFound
	}

	data, err := s.index.Bytes(ref)
	if err != nil {
		return nil, "", err
	}
	return data, archive.ContentType(ref), nil
}

// LastSeen reports when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Close releases the database handle, the extracted snapshot and every
// photo handle.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.generation++
	s.photos = nil

	var errs []error
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close snapshot: %w", err))
		}
	}
	if s.tempPath != "" {
		if err := os.Remove(s.tempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove snapshot file: %w", err))
		}
	}

	s.logger.Info("session closed", zap.String("session_id", s.ID))
	return errors.Join(errs...)
}

func (s *Session) touch() {
	s.lastSeen = s.now()
}

// renderLocked turns the loaded result into a view under a fresh generation.
// Photo handles of the previous generation are released.
func (s *Session) renderLocked(ctx context.Context) models.View {
	s.generation++
	s.photos = make(map[string]string)
	resolver := &photoResolver{session: s, generation: s.generation}

	tab := s.result.Tab
	view := models.View{
		Tab:        tab,
		Generation: s.generation,
		Query:      s.query,
		Strategy:   s.result.Strategy,
		Status:     fmt.Sprintf("%s: %s", s.ArchiveName, tab.Title()),
		Panels:     make([]models.Panel, 0, len(s.result.Panels)),
	}

	if s.loadErr != nil {
		view.Error = s.loadErr.Error()
		view.Status = fmt.Sprintf("Failed to load %s view: %v", tab.Title(), s.loadErr)
		view.RowCount = render.CountLabel(0, 0)
		s.view = view
		return view
	}

	view.RowCount = "0/0"
	for _, p := range s.result.Panels {
		panel := models.Panel{
			Key:        p.Key,
			Title:      p.Title,
			Notice:     p.Notice,
			Filterable: p.Filterable,
			Diagnostic: p.Diagnostic,
		}
		if p.Notice == "" {
			records := p.Records
			if p.Filterable {
				records = render.Filter(p.Records, s.query)
				view.RowCount = render.CountLabel(len(records), len(p.Records))
			}
			panel.Table = s.renderer.Render(ctx, records, p.PhotoField, resolver)
		}
		view.Panels = append(view.Panels, panel)
	}

	s.view = view
	return view
}

type photoResolver struct {
	session    *Session
	generation uint64
}

// ResolvePhoto issues a handle for ref under the resolver's generation. The
// session lock is held by the render that owns the resolver.
func (r *photoResolver) ResolvePhoto(_ context.Context, ref string) (string, error) {
	s := r.session
	if r.generation != s.generation {
		return "", render.ErrStaleGeneration
	}
	if !s.index.Has(ref) {
		return "", fmt.Errorf("%w: %s", archive.ErrEntryNotFound, ref)
	}

	id := strconv.Itoa(len(s.photos))
	s.photos[id] = archive.NormalizePath(ref)
	return fmt.Sprintf("/photos/%d/%s", r.generation, id), nil
}
