package render

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdview/internal/domain/models"
)

type stubResolver struct {
	known map[string]string
	calls []string
	stale bool
}

func (s *stubResolver) ResolvePhoto(_ context.Context, ref string) (string, error) {
	s.calls = append(s.calls, ref)
	if s.stale {
		return "", ErrStaleGeneration
	}
	if url, ok := s.known[ref]; ok {
		return url, nil
	}
	return "", errors.New("not in archive")
}

func animal(tag string, photo any) models.Record {
	return models.Record{
		{Name: "tag", Value: tag},
		{Name: "weight", Value: 41.5},
		{Name: "photo_path", Value: photo},
	}
}

func TestRender_ColumnsAndValues(t *testing.T) {
	records := []models.Record{animal("A-1", nil), animal("A-2", nil)}

	table := NewRenderer(nil).Render(context.Background(), records, "", nil)

	assert.Equal(t, []string{"tag", "weight", "photo_path"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"A-1", "41.5", ""}, table.Rows[0].Values)
	assert.Nil(t, table.Rows[0].Photo)
	assert.Equal(t, records, table.Records)
}

func TestRender_EmptyRecordSet(t *testing.T) {
	table := NewRenderer(nil).Render(context.Background(), nil, "photo_path", nil)
	assert.Empty(t, table.Columns)
	assert.Empty(t, table.Rows)
}

func TestRender_MissingPhotoIsIsolated(t *testing.T) {
	resolver := &stubResolver{known: map[string]string{"photos/a1.jpg": "/photos/1/0"}}
	records := []models.Record{
		animal("A-1", "photos/a1.jpg"),
		animal("A-2", "photos/gone.png"),
		animal("A-3", nil),
		animal("A-4", "photos/a1.jpg"),
	}

	table := NewRenderer(nil).Render(context.Background(), records, "photo_path", resolver)

	require.Len(t, table.Rows, 4)
	assert.Equal(t, models.PhotoReady, table.Rows[0].Photo.State)
	assert.Equal(t, "/photos/1/0", table.Rows[0].Photo.URL)
	assert.Equal(t, models.PhotoMissing, table.Rows[1].Photo.State)
	assert.Equal(t, models.PhotoNone, table.Rows[2].Photo.State)
	assert.Equal(t, models.PhotoReady, table.Rows[3].Photo.State)
	assert.Equal(t, []string{"photos/a1.jpg", "photos/gone.png", "photos/a1.jpg"}, resolver.calls,
		"resolution is sequential and skips rows without a reference")
}

func TestRender_StaleGenerationDiscardsResolution(t *testing.T) {
	resolver := &stubResolver{stale: true}
	records := []models.Record{animal("A-1", "photos/a1.jpg"), animal("A-2", "photos/a2.jpg")}

	table := NewRenderer(nil).Render(context.Background(), records, "photo_path", resolver)

	assert.Len(t, resolver.calls, 1)
	for _, row := range table.Rows {
		assert.Equal(t, models.PhotoPending, row.Photo.State)
		assert.Empty(t, row.Photo.URL)
	}
}

func TestRender_CancelledContextLeavesPhotosPending(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resolver := &stubResolver{known: map[string]string{"photos/a1.jpg": "/x"}}

	table := NewRenderer(nil).Render(ctx, []models.Record{animal("A-1", "photos/a1.jpg")}, "photo_path", resolver)

	assert.Empty(t, resolver.calls)
	assert.Equal(t, models.PhotoPending, table.Rows[0].Photo.State)
	assert.Equal(t, []string{"A-1", "41.5", "photos/a1.jpg"}, table.Rows[0].Values)
}
