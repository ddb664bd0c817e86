package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdview/internal/testhelper"
)

func TestOpen_RejectsNonZip(t *testing.T) {
	_, err := Open([]byte("definitely not a zip"))
	require.ErrorIs(t, err, ErrUnreadableArchive)
}

func TestIndex_FindBaseAtAnyDepth(t *testing.T) {
	dbPath := testhelper.NewDatabase(t, testhelper.AnimalsDDL)
	data := testhelper.NewArchive(t, dbPath, "exports/2024/"+testhelper.DBFileName, map[string][]byte{
		"photos/a.png": []byte("png"),
	})

	idx, err := Open(data)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())

	p, ok := idx.FindBase(testhelper.DBFileName)
	require.True(t, ok)
	assert.Equal(t, "exports/2024/farm.db", p)

	_, ok = idx.FindBase("other.db")
	assert.False(t, ok)
}

func TestIndex_BytesAndLookup(t *testing.T) {
	data := testhelper.NewArchive(t, "", "", map[string][]byte{
		"photos/a.png": []byte("png-bytes"),
	})
	idx, err := Open(data)
	require.NoError(t, err)

	got, err := idx.Bytes("./photos/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), got)

	assert.True(t, idx.Has("/photos/a.png"))
	assert.True(t, idx.Has(`photos\a.png`))

	_, err = idx.Bytes("photos/missing.png")
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestIndex_EntriesAreLazy(t *testing.T) {
	data := testhelper.NewArchive(t, "", "", map[string][]byte{
		"notes.txt": []byte("hello"),
	})
	idx, err := Open(data)
	require.NoError(t, err)

	entries := idx.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "notes.txt", entries[0].Path)

	content, err := entries[0].Open()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"photos/a.png":  "image/png",
		"photos/a.JPG":  "image/jpeg",
		"photos/a.jpeg": "image/jpeg",
		"photos/a.webp": "image/webp",
		"docs/vet.pdf":  "application/pdf",
		"photos/a.heic": "application/octet-stream",
		"photos/no-ext": "application/octet-stream",
	}
	for ref, want := range cases {
		assert.Equal(t, want, ContentType(ref), ref)
	}
}
