package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/hoshinonyaruko/tetris-in-im/api"
	"github.com/hoshinonyaruko/tetris-in-im/config"
	"github.com/hoshinonyaruko/tetris-in-im/memimg"
	"github.com/hoshinonyaruko/tetris-in-im/terminal"
	"github.com/hoshinonyaruko/tetris-in-im/tetris"
)

func main() {
	terminalMode := flag.Bool("terminal", false, "在终端中游玩，不启动 HTTP 服务")
	configPath := flag.String("config", "./config.json", "配置文件路径")
	flag.Parse()

	if *terminalMode {
		if err := terminal.Run(tetris.NewSession()); err != nil {
			log.Fatalf("Failed to start terminal: %v", err)
		}
		return
	}

	// Initialize the configuration
	cfg := config.LoadConfig(*configPath)
	EnsureFoldersExist(cfg.Tiles, cfg.Static)
	// 载入方块贴图到内存
	if err := memimg.LoadTiles(cfg.Tiles, cfg.Blocksize); err != nil {
		log.Printf("Failed to load tiles: %v", err)
	}
	// 检测并热更新到内存 加速绘图
	go func() {
		if err := memimg.WatchTiles(context.Background(), cfg.Tiles, cfg.Blocksize); err != nil {
			log.Printf("Tile watcher stopped: %v", err)
		}
	}()

	db := api.InitDB(cfg.DBPath)
	defer db.Close()

	hub := api.NewHub(db,
		time.Duration(cfg.TickMs)*time.Millisecond,
		time.Duration(cfg.SessionTTL)*time.Second)
	defer hub.Close()

	router := api.NewRouter(hub, db, api.Options{
		SelfPath:  cfg.SelfPath,
		BlockSize: cfg.Blocksize,
		StaticDir: cfg.Static,
	})
	// 从配置单例读取端口 监听
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// EnsureFoldersExist 检查并创建必需的文件夹
func EnsureFoldersExist(folders ...string) {
	for _, folder := range folders {
		if _, err := os.Stat(folder); os.IsNotExist(err) {
			// 文件夹不存在，尝试创建它
			err := os.MkdirAll(folder, 0755)
			if err != nil {
				log.Fatalf("Failed to create %s directory: %s", folder, err)
			}
			log.Printf("Created %s directory", folder)
		} else {
			log.Printf("%s directory already exists", folder)
		}
	}
}
