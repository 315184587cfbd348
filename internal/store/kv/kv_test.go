package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the contract every backend must satisfy.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok, "missing key must be reported absent")

	require.NoError(t, s.Set(ctx, "k", "1"))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	require.NoError(t, s.Set(ctx, "k", "2"))
	v, _, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "2", v, "set overwrites")

	require.NoError(t, s.Set(ctx, "other", ""))
	v, ok, err = s.Get(ctx, "other")
	require.NoError(t, err)
	assert.True(t, ok, "empty value is still present")
	assert.Equal(t, "", v)
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemory_InstancesAreIsolated(t *testing.T) {
	ctx := context.Background()
	a, b := NewMemory(), NewMemory()
	require.NoError(t, a.Set(ctx, "k", "7"))
	_, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFile(t *testing.T) {
	exerciseStore(t, NewFile(filepath.Join(t.TempDir(), "nested", "session.json")))
}

func TestFile_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, NewFile(p).Set(ctx, "k", "41"))

	v, ok, err := NewFile(p).Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "41", v)
}

func TestFile_CorruptFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(p, []byte("{not json"), 0o644))

	_, _, err := NewFile(p).Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	exerciseStore(t, s)
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "session.db")

	s, err := OpenSQLite(ctx, p)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", "9"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, p)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "9", v)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := OpenRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	exerciseStore(t, s)

	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestRedis_BadURL(t *testing.T) {
	_, err := OpenRedis(context.Background(), "not-a-url")
	assert.ErrorIs(t, err, ErrMisconfigured)

	_, err = OpenRedis(context.Background(), "")
	assert.ErrorIs(t, err, ErrMisconfigured)
}

func TestRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := OpenRedis(context.Background(), "redis://"+addr)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMisconfigured)
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{"", BackendFile, false},
		{"memory", BackendMemory, false},
		{" Redis ", BackendRedis, false},
		{"none", BackendNone, false},
		{"sqlite", BackendSQLite, false},
		{"etcd", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBackend(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownBackend)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, closeFn, err := Open(ctx, Config{Backend: BackendNone})
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.NoError(t, closeFn())

	s, closeFn, err = Open(ctx, Config{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)
	assert.NoError(t, closeFn())

	p := filepath.Join(t.TempDir(), "s.json")
	s, _, err = Open(ctx, Config{Backend: BackendFile, Path: p})
	require.NoError(t, err)
	assert.Equal(t, p, s.(*File).Path())

	_, _, err = Open(ctx, Config{Backend: BackendFile})
	assert.ErrorIs(t, err, ErrMisconfigured)

	_, _, err = Open(ctx, Config{Backend: "etcd"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
