package config

import (
	"encoding/json"
	"os"
	"sync"
)

// AppConfig holds the structure of the configuration
type AppConfig struct {
	SelfPath   string `json:"selfpath"`
	Port       string `json:"port"`
	Blocksize  int    `json:"blocksize"`
	TickMs     int    `json:"tickms"`
	SessionTTL int    `json:"sessionttl"`
	DBPath     string `json:"dbpath"`
	Tiles      string `json:"tiles"`
	Static     string `json:"static"`
}

var (
	instance *AppConfig
	once     sync.Once
)

func defaults() *AppConfig {
	return &AppConfig{
		SelfPath:   "127.0.0.1:38870", // Default value
		Port:       "38870",           // Default value
		Blocksize:  20,
		TickMs:     16,
		SessionTTL: 1800,
		DBPath:     "game.db",
		Tiles:      "./tiles",
		Static:     "./static",
	}
}

// LoadConfig initializes and returns the instance of AppConfig
func LoadConfig(filePath string) *AppConfig {
	once.Do(func() {
		instance = defaults()
		// Load the config file if it exists, otherwise create one
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			saveConfig(filePath)
		} else {
			loadConfig(filePath)
		}
	})
	return instance
}

// Get returns the loaded configuration, or the defaults if LoadConfig was never called
func Get() *AppConfig {
	if instance == nil {
		return defaults()
	}
	return instance
}

// loadConfig loads the settings from the file
func loadConfig(filePath string) {
	file, err := os.Open(filePath)
	if err != nil {
		panic(err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(instance); err != nil {
		panic(err)
	}
}

// saveConfig saves the current settings to the file
func saveConfig(filePath string) {
	file, err := os.Create(filePath)
	if err != nil {
		panic(err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(instance); err != nil {
		panic(err)
	}
}

// GetConfigValue returns the value of the configuration by key
func GetConfigValue(key string) interface{} {
	cfg := Get()
	switch key {
	case "selfpath":
		return cfg.SelfPath
	case "port":
		return cfg.Port
	case "blocksize":
		return cfg.Blocksize
	case "tickms":
		return cfg.TickMs
	case "sessionttl":
		return cfg.SessionTTL
	case "dbpath":
		return cfg.DBPath
	case "tiles":
		return cfg.Tiles
	case "static":
		return cfg.Static
	default:
		return ""
	}
}
