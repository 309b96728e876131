package accesslog

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(i int) Record {
	return Record{
		Time:    time.Unix(1700000000+int64(i), 0),
		Client:  "127.0.0.1:5000",
		Method:  "GET",
		URI:     fmt.Sprintf("http://example.com/%d", i),
		Outcome: OutcomeRelayed,
		Status:  200,
		Bytes:   int64(100 + i),
	}
}

func TestMemory_NewestFirstAndLimit(t *testing.T) {
	m := NewMemory(3)
	for i := 0; i < 5; i++ {
		m.Record(rec(i))
	}

	got := m.Recent()
	require.Len(t, got, 3)
	assert.Equal(t, rec(4), got[0])
	assert.Equal(t, rec(3), got[1])
	assert.Equal(t, rec(2), got[2])

	got[0].URI = "changed"
	assert.Equal(t, rec(4), m.Recent()[0])
}

func TestMemory_ZeroLimit(t *testing.T) {
	m := NewMemory(0)
	m.Record(rec(1))
	assert.Empty(t, m.Recent())
}

func TestMulti(t *testing.T) {
	a, b := NewMemory(10), NewMemory(10)
	Multi{a, Nop, b}.Record(rec(7))

	assert.Equal(t, []Record{rec(7)}, a.Recent())
	assert.Equal(t, []Record{rec(7)}, b.Recent())
}

func TestSQLite(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "access.db"), zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 4; i++ {
		db.Record(rec(i))
	}
	hit := rec(9)
	hit.Outcome = OutcomeHit
	db.Record(hit)

	got, err := db.Recent(3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, OutcomeHit, got[0].Outcome)
	assert.True(t, hit.Time.Equal(got[0].Time))
	assert.Equal(t, hit.URI, got[0].URI)
	assert.Equal(t, int64(109), got[0].Bytes)
	assert.Equal(t, rec(3).URI, got[1].URI)
	assert.Equal(t, rec(2).URI, got[2].URI)
}

func TestSQLite_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.db")
	db, err := OpenSQLite(path, zerolog.Nop())
	require.NoError(t, err)
	db.Record(rec(1))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(path, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	got, err := db.Recent(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec(1).URI, got[0].URI)
}
