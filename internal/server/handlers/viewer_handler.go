package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdview/internal/domain/models"
	"github.com/mamadbah2/herdview/internal/repository/archive"
	"github.com/mamadbah2/herdview/internal/repository/sqlite"
	"github.com/mamadbah2/herdview/internal/service/export"
	"github.com/mamadbah2/herdview/internal/service/render"
	"github.com/mamadbah2/herdview/internal/service/session"
)

// SessionCookie carries the ID of the caller's loaded archive.
const SessionCookie = "herdview_session"

const archiveField = "archive"

// ViewerHandler serves the viewer page, its JSON API and archive photos.
type ViewerHandler struct {
	sessions        *session.Manager
	maxArchiveBytes int64
	logger          *zap.Logger
}

// NewViewerHandler constructs the HTTP handler adapter.
func NewViewerHandler(sessions *session.Manager, maxArchiveBytes int64, logger *zap.Logger) *ViewerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewerHandler{sessions: sessions, maxArchiveBytes: maxArchiveBytes, logger: logger}
}

type tabLink struct {
	ID     models.Tab
	Title  string
	Active bool
}

type pageData struct {
	Status string
	View   *models.View
	Tabs   []tabLink
}

// Page renders the viewer. ?tab= enters a view and clears the filter; ?q=
// filters the active view.
func (h *ViewerHandler) Page(c *gin.Context) {
	s, err := h.current(c)
	if err != nil {
		c.HTML(http.StatusOK, "index.html", pageData{Status: "Choose a backup archive (.zip) to begin."})
		return
	}

	view := s.View()
	rawTab, hasTab := c.GetQuery("tab")
	query, hasQuery := c.GetQuery("q")

	if hasTab {
		tab, ok := models.ParseTab(rawTab)
		if !ok {
			c.HTML(http.StatusNotFound, "index.html", h.page(view, fmt.Sprintf("Unknown view %q.", rawTab)))
			return
		}
		if tab != view.Tab || !hasQuery {
			view = s.SwitchTab(c.Request.Context(), tab)
			hasQuery = false
		}
	}
	if hasQuery {
		view = s.Filter(c.Request.Context(), query)
	}

	c.HTML(http.StatusOK, "index.html", h.page(view, view.Status))
}

// UploadForm loads the posted archive and redirects to the page.
func (h *ViewerHandler) UploadForm(c *gin.Context) {
	s, status, err := h.load(c)
	if err != nil {
		c.HTML(status, "index.html", pageData{Status: err.Error()})
		return
	}
	h.setCookie(c, s.ID)
	c.Redirect(http.StatusSeeOther, "/")
}

// UploadAPI loads the posted archive and returns the roster view.
func (h *ViewerHandler) UploadAPI(c *gin.Context) {
	s, status, err := h.load(c)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	h.setCookie(c, s.ID)
	c.JSON(http.StatusCreated, s.View())
}

// View enters the named view and returns it.
func (h *ViewerHandler) View(c *gin.Context) {
	s, ok := h.requireSession(c)
	if !ok {
		return
	}

	tab, valid := models.ParseTab(c.Param("tab"))
	if !valid {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown view"})
		return
	}
	c.JSON(http.StatusOK, s.SwitchTab(c.Request.Context(), tab))
}

// Filter applies ?q= to the active view.
func (h *ViewerHandler) Filter(c *gin.Context) {
	s, ok := h.requireSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Filter(c.Request.Context(), c.Query("q")))
}

// Photo streams a photo issued by the current render.
func (h *ViewerHandler) Photo(c *gin.Context) {
	s, ok := h.requireSession(c)
	if !ok {
		return
	}

	generation, err := strconv.ParseUint(c.Param("gen"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid generation"})
		return
	}

	data, contentType, err := s.Photo(generation, c.Param("id"))
	switch {
	case errors.Is(err, render.ErrStaleGeneration):
		c.JSON(http.StatusGone, gin.H{"error": "view has been re-rendered"})
	case errors.Is(err, session.ErrPhotoNotFound), errors.Is(err, archive.ErrEntryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
	case err != nil:
		h.logger.Error("failed reading photo", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to read photo"})
	default:
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, contentType, data)
	}
}

// ExportXLSX downloads the displayed table as a workbook.
func (h *ViewerHandler) ExportXLSX(c *gin.Context) {
	s, ok := h.requireSession(c)
	if !ok {
		return
	}

	table, tab, found := s.DisplayedTable()
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "nothing to export"})
		return
	}

	c.Header("Content-Type", export.ContentTypeXLSX)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, tab))
	c.Status(http.StatusOK)
	if err := export.WriteXLSX(c.Writer, tab.Title(), table); err != nil {
		h.logger.Error("failed exporting table", zap.Error(err))
	}
}

func (h *ViewerHandler) load(c *gin.Context) (*session.Session, int, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxArchiveBytes)

	header, err := c.FormFile(archiveField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("archive exceeds %d bytes", h.maxArchiveBytes)
		}
		return nil, http.StatusBadRequest, errors.New("no archive file provided")
	}

	file, err := header.Open()
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("read archive: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("read archive: %w", err)
	}

	previous, _ := c.Cookie(SessionCookie)
	s, err := h.sessions.Load(c.Request.Context(), header.Filename, data, previous)
	if err != nil {
		h.logger.Warn("archive load failed", zap.String("archive", header.Filename), zap.Error(err))
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, archive.ErrUnreadableArchive),
			errors.Is(err, session.ErrDatabaseMissing),
			errors.Is(err, sqlite.ErrNotDatabase):
			status = http.StatusUnprocessableEntity
		}
		return nil, status, fmt.Errorf("could not open %s: %w", header.Filename, err)
	}
	return s, http.StatusOK, nil
}

func (h *ViewerHandler) current(c *gin.Context) (*session.Session, error) {
	id, err := c.Cookie(SessionCookie)
	if err != nil {
		return nil, session.ErrNoSession
	}
	return h.sessions.Get(id)
}

func (h *ViewerHandler) requireSession(c *gin.Context) (*session.Session, bool) {
	s, err := h.current(c)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return s, true
}

func (h *ViewerHandler) setCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookie, id, 0, "/", "", false, true)
}

func (h *ViewerHandler) page(view models.View, status string) pageData {
	tabs := make([]tabLink, len(models.Tabs))
	for i, tab := range models.Tabs {
		tabs[i] = tabLink{ID: tab, Title: tab.Title(), Active: tab == view.Tab}
	}
	return pageData{Status: status, View: &view, Tabs: tabs}
}
