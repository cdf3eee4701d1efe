package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port              string            `mapstructure:"port"`
	UploadDir         string            `mapstructure:"upload_dir"`
	Backend           string            `mapstructure:"backend"`
	OutputFormat      string            `mapstructure:"output_format"`
	AdminAPIKey       string            `mapstructure:"ADMIN_API_KEY"`
	MongoURI          string            `mapstructure:"MONGODB_URI"`
	Processor         ProcessorConfig   `mapstructure:"processor"`
	OpenAI            OpenAIConfig      `mapstructure:"openai"`
	Gemini            GeminiConfig      `mapstructure:"gemini"`
	VectorStoreConfig VectorStoreConfig `mapstructure:"vector_store_config"`
}

type ProcessorConfig struct {
	DefaultChunkSize    int      `mapstructure:"default_chunk_size_tokens"`
	DefaultChunkOverlap int      `mapstructure:"default_chunk_overlap_tokens"`
	MaxFileSizeMB       int      `mapstructure:"max_file_size_mb"`
	OCRLanguages        []string `mapstructure:"ocr_languages"`
}

type OpenAIConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"OPENAI_API_KEY"`
	EmbedModel string `mapstructure:"embed_model"`
}

type GeminiConfig struct {
	APIKeys    []string `mapstructure:"api_keys"`
	EmbedModel string   `mapstructure:"embed_model"`
}

type VectorStoreConfig struct {
	Driver      string              `mapstructure:"driver"` // "weaviate" or "chromem"
	Weaviate    WeaviateStoreConfig `mapstructure:"weaviate"`
	ChromemPath string              `mapstructure:"chromem_path"`
}

type WeaviateStoreConfig struct {
	Host         string       `mapstructure:"host"`
	APIKey       string       `mapstructure:"WEAVIATE_APIKEY"` // Changed to match env var
	Text2Vec     string       `mapstructure:"text2vec"`
	ModuleConfig ModuleConfig `mapstructure:"module_config"`
}

type ModuleConfig map[string]interface{}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("WEAVIATE_APIKEY")
	v.BindEnv("MONGODB_URI")
	v.BindEnv("ADMIN_API_KEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if config.Backend == "" {
		config.Backend = "layout"
	}
	if config.OutputFormat == "" {
		config.OutputFormat = "markdown"
	}

	return &config, nil
}
