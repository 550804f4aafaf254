package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName       string `json:"app_name"`
	ListenIP      string `json:"listen_ip"`
	ListenPort    int    `json:"listen_port"`
	SessionKey    string `json:"session_key"`
	DBPath        string `json:"db_path"`
	EnableCaptcha bool   `json:"enable_captcha"`
}

var AppConfig Config

// LoadConfig fills AppConfig from defaults, then the JSON file at path (a
// missing file is not an error), then environment variables.
func LoadConfig(path string) error {
	_ = godotenv.Load()

	AppConfig = Config{
		AppName:    "notesbox",
		ListenIP:   "127.0.0.1",
		ListenPort: 8080,
		DBPath:     "./notesbox.db",
	}

	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		decoder := json.NewDecoder(file)
		if err := decoder.Decode(&AppConfig); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	// Override with environment variables if present
	if envKey := os.Getenv("NOTESBOX_SESSION_KEY"); envKey != "" {
		AppConfig.SessionKey = envKey
	}
	if envPath := os.Getenv("NOTESBOX_DB_PATH"); envPath != "" {
		AppConfig.DBPath = envPath
	}

	// If no key is provided or it's the placeholder, generate a secure random one
	if AppConfig.SessionKey == "" || AppConfig.SessionKey == "CHANGE_ME_IN_PRODUCTION" {
		log.Println("WARNING: No session key configured. Generating a random key. Sessions will be invalidated on restart.")
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err != nil {
			return err
		}
		AppConfig.SessionKey = hex.EncodeToString(randomKey)
	}

	return nil
}
