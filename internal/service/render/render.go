package render

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdview/internal/domain/models"
)

// ErrStaleGeneration is returned by a resolver whose render has been
// superseded. Resolution stops and the remaining photos stay pending.
var ErrStaleGeneration = errors.New("render generation is stale")

// PhotoResolver turns a photo reference into a displayable URL.
type PhotoResolver interface {
	ResolvePhoto(ctx context.Context, ref string) (string, error)
}

// Renderer turns record sets into display tables.
type Renderer struct {
	logger *zap.Logger
}

// NewRenderer constructs a renderer.
func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{logger: logger}
}

// Render builds one row per record and one column per field of the first
// record. When photoField is set, each row carries a trailing photo cell.
// Photos are resolved one at a time; a failed photo marks only its own row.
func (r *Renderer) Render(ctx context.Context, records []models.Record, photoField string, resolver PhotoResolver) *models.Table {
	table := &models.Table{
		Columns:    models.FieldNames(records),
		PhotoField: photoField,
		Rows:       make([]models.Row, len(records)),
		Records:    records,
	}

	for i, rec := range records {
		row := models.Row{Values: make([]string, len(rec))}
		for j, f := range rec {
			row.Values[j] = models.FormatValue(f.Value)
		}
		if photoField != "" {
			row.Photo = placeholder(rec, photoField)
		}
		table.Rows[i] = row
	}

	if photoField != "" && resolver != nil {
		r.resolvePhotos(ctx, table, resolver)
	}
	return table
}

func (r *Renderer) resolvePhotos(ctx context.Context, table *models.Table, resolver PhotoResolver) {
	for i := range table.Rows {
		photo := table.Rows[i].Photo
		if photo == nil || photo.State != models.PhotoPending {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		url, err := resolver.ResolvePhoto(ctx, photo.Ref)
		switch {
		case errors.Is(err, ErrStaleGeneration):
			r.logger.Debug("discarding stale photo resolution", zap.Int("row", i))
			return
		case err != nil:
			r.logger.Debug("photo unresolved", zap.String("ref", photo.Ref), zap.Error(err))
			photo.State = models.PhotoMissing
		default:
			photo.State = models.PhotoReady
			photo.URL = url
		}
	}
}

func placeholder(rec models.Record, photoField string) *models.Photo {
	v, _ := rec.Get(photoField)
	ref := models.FormatValue(v)
	if ref == "" {
		return &models.Photo{State: models.PhotoNone}
	}
	return &models.Photo{State: models.PhotoPending, Ref: ref}
}
