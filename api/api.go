package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hoshinonyaruko/tetris-in-im/sqlite"
	_ "github.com/mattn/go-sqlite3"
)

// Options 是渲染与静态文件相关的设置，由配置文件填充。
type Options struct {
	SelfPath  string
	BlockSize int
	StaticDir string
}

func InitDB(path string) *sql.DB {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		log.Fatal(err)
	}

	sqlite.InitializeDatabase(db)

	return db
}

// NewRouter 注册所有接口。
func NewRouter(hub *Hub, db *sql.DB, opts Options) *gin.Engine {
	router := gin.Default()
	// 发送操作指令
	router.GET("/command", CommandHandler(hub))
	// 当前状态与未读事件
	router.GET("/state", StateHandler(hub))
	// 渲染函数 返回静态地址或直接返回图片
	router.GET("/render-frame", RenderFrameHandler(hub, opts))
	// 删除会话
	router.GET("/delete-session", DeleteSessionHandler(hub, opts))
	// 排行榜与个人战绩
	router.GET("/leaderboard", LeaderboardHandler(db))
	router.GET("/history", HistoryHandler(db))
	// 实时推送
	router.GET("/ws", gin.WrapH(WebSocketHandler(hub)))
	router.Static("/static", opts.StaticDir) // 静态文件服务
	return router
}

// sessionParam 读取并校验 session 参数，失败时已经写好响应。
func sessionParam(c *gin.Context) (string, bool) {
	id := c.Query("session")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameter: session"})
		return "", false
	}
	if !validSessionID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return "", false
	}
	return id, true
}

func CommandHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := sessionParam(c)
		if !ok {
			return
		}
		raw := c.Query("cmd")
		if raw == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameter: cmd"})
			return
		}

		cmds, err := ParseCommands(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		hub.Get(id).Submit(cmds...)
		c.JSON(http.StatusOK, gin.H{"message": "Command accepted", "queued": len(cmds)})
	}
}

func StateHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := sessionParam(c)
		if !ok {
			return
		}
		game := hub.Get(id)
		c.JSON(http.StatusOK, Update{State: game.Snapshot(), Events: game.TakeEvents()})
	}
}

func RenderFrameHandler(hub *Hub, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := sessionParam(c)
		if !ok {
			return
		}
		img := RenderFrame(hub.Get(id).Snapshot(), opts.BlockSize)

		if c.Query("format") == "png" {
			data, err := EncodePNG(img)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to encode frame"})
				return
			}
			c.Data(http.StatusOK, "image/png", data)
			return
		}

		fileName, err := SaveFrame(img, opts.StaticDir, id)
		if err != nil {
			fmt.Printf("err SaveFrame :%v\n", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to save frame"})
			return
		}
		imageUrl := fmt.Sprintf("http://%s/static/%s", opts.SelfPath, fileName)
		c.JSON(http.StatusOK, gin.H{"image_url": imageUrl})
	}
}

func DeleteSessionHandler(hub *Hub, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := sessionParam(c)
		if !ok {
			return
		}
		if err := hub.Delete(id); err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		// 顺便删除已渲染的图片
		os.Remove(filepath.Join(opts.StaticDir, id+".png"))
		c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
	}
}

func LeaderboardHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if err != nil || limit < 1 {
			limit = 10
		}
		if limit > 100 {
			limit = 100
		}

		results, err := sqlite.TopResults(db, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load leaderboard"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}

func HistoryHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := sessionParam(c)
		if !ok {
			return
		}
		results, err := sqlite.SessionResults(db, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load history"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}
