package publisher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-poster-kit/pkg/renderer"
)

type fakeCapturer struct {
	scenes []renderer.Scene
	err    error
}

func (f *fakeCapturer) CapturePNG(_ context.Context, scene renderer.Scene) ([]byte, error) {
	f.scenes = append(f.scenes, scene)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png"), nil
}

func sceneWithOverlay() renderer.Scene {
	return renderer.Scene{
		Width:  900,
		Height: 1200,
		Elements: []renderer.ElementNode{
			{ID: "brand", Text: "VOLTRA", Selected: true},
		},
		Overlay: &renderer.Overlay{Selected: "brand"},
	}
}

func TestPosterPublisher_Export(t *testing.T) {
	t.Run("オーバーレイを除いて書き出す", func(t *testing.T) {
		capt := &fakeCapturer{}
		p, err := NewPosterPublisher(LocalWriter{}, capt)
		require.NoError(t, err)

		path := filepath.Join(t.TempDir(), "nested", "poster.png")
		res, err := p.Export(context.Background(), sceneWithOverlay(), path)
		require.NoError(t, err)
		assert.Equal(t, path, res.Path)
		assert.Equal(t, 3, res.Bytes)

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []byte("png"), got)

		require.Len(t, capt.scenes, 1)
		assert.Nil(t, capt.scenes[0].Overlay)
		assert.False(t, capt.scenes[0].Elements[0].Selected)
	})

	t.Run("キャプチャ失敗時は何も書かない", func(t *testing.T) {
		p, err := NewPosterPublisher(LocalWriter{}, &fakeCapturer{err: errors.New("boom")})
		require.NoError(t, err)

		path := filepath.Join(t.TempDir(), "poster.png")
		_, err = p.Export(context.Background(), sceneWithOverlay(), path)
		require.Error(t, err)
		assert.NoFileExists(t, path)
	})

	t.Run("必須の依存", func(t *testing.T) {
		_, err := NewPosterPublisher(nil, &fakeCapturer{})
		assert.Error(t, err)
		_, err = NewPosterPublisher(LocalWriter{}, nil)
		assert.Error(t, err)
	})
}

func TestPosterPublisher_SaveVersion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "poster_3.png"), []byte("old"), 0o644))

	p, err := NewPosterPublisher(LocalWriter{}, &fakeCapturer{})
	require.NoError(t, err)

	first, err := p.SaveVersion(context.Background(), sceneWithOverlay(), dir)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Version)
	assert.Equal(t, filepath.Join(dir, "poster_4.png"), first.Path)

	second, err := p.SaveVersion(context.Background(), sceneWithOverlay(), dir)
	require.NoError(t, err)
	assert.Equal(t, 5, second.Version)
	assert.FileExists(t, filepath.Join(dir, "poster_5.png"))

	old, err := os.ReadFile(filepath.Join(dir, "poster_3.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), old, "既存のバージョンは上書きしない")
}

func TestLocalWriter_Write(t *testing.T) {
	t.Run("GCS パスは扱わない", func(t *testing.T) {
		err := LocalWriter{}.Write(context.Background(), "gs://bucket/poster.png", []byte("x"))
		assert.Error(t, err)
	})

	t.Run("キャンセル済み", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		path := filepath.Join(t.TempDir(), "poster.png")
		assert.ErrorIs(t, LocalWriter{}.Write(ctx, path, []byte("x")), context.Canceled)
		assert.NoFileExists(t, path)
	})
}
