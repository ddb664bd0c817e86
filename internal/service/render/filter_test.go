package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/herdview/internal/domain/models"
)

func herd() []models.Record {
	return []models.Record{
		{{Name: "tag", Value: "A-001"}, {Name: "group", Value: "North"}, {Name: "age", Value: int64(3)}},
		{{Name: "tag", Value: "B-002"}, {Name: "group", Value: "South"}, {Name: "age", Value: int64(13)}},
		{{Name: "tag", Value: "C-003"}, {Name: "group", Value: nil}, {Name: "age", Value: nil}},
	}
}

func TestFilter_BlankQueryKeepsEverything(t *testing.T) {
	records := herd()
	assert.Equal(t, records, Filter(records, ""))
	assert.Equal(t, records, Filter(records, "   \t"))
}

func TestFilter_CaseInsensitiveAnyField(t *testing.T) {
	got := Filter(herd(), "NORTH")
	assert.Len(t, got, 1)
	assert.Equal(t, "A-001", got[0][0].Value)

	got = Filter(herd(), "3")
	assert.Len(t, got, 3, "numbers match on their string form")

	got = Filter(herd(), "b-00")
	assert.Len(t, got, 1)
}

func TestFilter_NullsNeverMatch(t *testing.T) {
	assert.Empty(t, Filter(herd(), "<nil>"))
	assert.Empty(t, Filter(herd(), "null"))
}

func TestFilter_Idempotent(t *testing.T) {
	for _, q := range []string{"north", "0", "-00", "zzz"} {
		once := Filter(herd(), q)
		assert.Equal(t, once, Filter(once, q), q)
	}
}

func TestCountLabel(t *testing.T) {
	assert.Equal(t, "12", CountLabel(12, 12))
	assert.Equal(t, "3 / 12", CountLabel(3, 12))
	assert.Equal(t, "0", CountLabel(0, 0))
}
