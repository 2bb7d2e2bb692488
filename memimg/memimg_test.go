package memimg

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTile(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, img))
}

func TestTileValue(t *testing.T) {
	cases := map[string]struct {
		value int
		ok    bool
	}{
		"tiles/1.png":    {1, true},
		"7.PNG":          {7, true},
		"3.jpg":          {3, true},
		"0.png":          {0, false},
		"8.png":          {0, false},
		"background.png": {0, false},
		"2.gif":          {0, false},
	}
	for name, want := range cases {
		value, ok := TileValue(name)
		assert.Equal(t, want.ok, ok, name)
		assert.Equal(t, want.value, value, name)
	}
}

func TestLoadTiles(t *testing.T) {
	dir := t.TempDir()
	writeTile(t, filepath.Join(dir, "1.png"), color.RGBA{R: 255, A: 255})
	writeTile(t, filepath.Join(dir, "notes.png"), color.RGBA{G: 255, A: 255})

	require.NoError(t, LoadTiles(dir, 20))

	img, ok := GetTile(1)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 20, 20), img.Bounds())

	_, ok = GetTile(2)
	assert.False(t, ok)
}

func TestWatchTiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, LoadTiles(dir, 10))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- WatchTiles(ctx, dir, 10) }()

	// 等待 watcher 注册完成
	time.Sleep(100 * time.Millisecond)
	writeTile(t, filepath.Join(dir, "4.png"), color.RGBA{B: 255, A: 255})

	require.Eventually(t, func() bool {
		_, ok := GetTile(4)
		return ok
	}, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(dir, "4.png")))
	require.Eventually(t, func() bool {
		_, ok := GetTile(4)
		return !ok
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
