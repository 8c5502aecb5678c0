package appconfig

import (
	"github.com/SaiNageswarS/go-api-boot/config"
)

type AppConfig struct {
	config.BootConfig `ini:",extends"`

	MongoURI     string `env:"MONGO-URI" ini:"mongo_uri"`
	HTTPPort     string `env:"HTTP-PORT" ini:"http_port"`
	GeminiModel  string `env:"GEMINI-MODEL" ini:"gemini_model"`
	KnowledgeDir string `env:"KNOWLEDGE-DIR" ini:"knowledge_dir"`
	Database     string `env:"DATABASE" ini:"database"`
	MaxTurns     int    `env:"MAX-TURNS" ini:"max_turns"`
}
