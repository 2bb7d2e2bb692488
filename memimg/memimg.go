package memimg

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
)

// MaxTile 是可以被贴图替换的最大格子值。
const MaxTile = 7

var (
	tiles      = make(map[int]image.Image)
	tilesMutex sync.RWMutex
)

// LoadTiles 载入目录中名为 1.png ... 7.png 的贴图，并缩放到 blockSize。
func LoadTiles(directory string, blockSize int) error {
	loaded := make(map[int]image.Image)
	err := filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		value, ok := TileValue(path)
		if !ok {
			return nil
		}
		img, err := loadTile(path, blockSize)
		if err != nil {
			return err
		}
		loaded[value] = img
		return nil
	})
	if err != nil {
		return err
	}

	tilesMutex.Lock()
	tiles = loaded
	tilesMutex.Unlock()
	return nil
}

// TileValue 从文件名解析出对应的格子值。
func TileValue(path string) (int, bool) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if !strings.EqualFold(ext, ".png") && !strings.EqualFold(ext, ".jpg") {
		return 0, false
	}
	value, err := strconv.Atoi(strings.TrimSuffix(base, ext))
	if err != nil || value < 1 || value > MaxTile {
		return 0, false
	}
	return value, true
}

func loadTile(path string, blockSize int) (image.Image, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	return imaging.Resize(img, blockSize, blockSize, imaging.Lanczos), nil
}

// LoadImage 解码一张图片。
func LoadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// WatchTiles 监听贴图目录，文件新增或修改时热更新到内存，删除时回退为纯色。
// 阻塞直到 ctx 结束。
func WatchTiles(ctx context.Context, directory string, blockSize int) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(directory); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			value, isTile := TileValue(event.Name)
			if !isTile {
				continue
			}
			switch {
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				img, err := loadTile(event.Name, blockSize)
				if err != nil {
					// 文件可能还没写完，等下一次写事件
					continue
				}
				setTile(value, img)
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				tilesMutex.Lock()
				delete(tiles, value)
				tilesMutex.Unlock()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("tile watcher error: %v", err)
		}
	}
}

func setTile(value int, img image.Image) {
	tilesMutex.Lock()
	tiles[value] = img
	tilesMutex.Unlock()
}

// GetTile 返回格子值对应的贴图。
func GetTile(value int) (image.Image, bool) {
	tilesMutex.RLock()
	img, exists := tiles[value]
	tilesMutex.RUnlock()
	return img, exists
}
