package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_PutGetRoundtrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	info, err := s.Put(ctx, "segovia-capital", "capital.pdf", "application/pdf",
		strings.NewReader("%PDF-1.4 fake"))
	require.NoError(t, err)
	assert.Equal(t, "segovia-capital", info.RegionID)
	assert.Equal(t, int64(13), info.Size)

	rc, got, err := s.Get(ctx, "segovia-capital")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
	assert.Equal(t, info.Name, got.Name)

	path, err := s.FilePath(ctx, "segovia-capital")
	require.NoError(t, err)
	assert.Contains(t, path, "capital.pdf")
}

func TestLocalStorage_PutReplacesPreviousCopy(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Put(ctx, "el-espinar", "week-33.pdf", "application/pdf", strings.NewReader("old"))
	require.NoError(t, err)
	_, err = s.Put(ctx, "el-espinar", "week-34.pdf", "application/pdf", strings.NewReader("new"))
	require.NoError(t, err)

	files, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "week-34.pdf", files[0].Name)

	rc, _, err := s.Get(ctx, "el-espinar")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestLocalStorage_Delete(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Put(ctx, "segovia-rural", "rural.pdf", "application/pdf", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "segovia-rural"))

	_, err = s.GetInfo(ctx, "segovia-rural")
	require.Error(t, err)
}

func TestLocalStorage_GetInfo_Missing(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.GetInfo(context.Background(), "nowhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cached roster")
}
