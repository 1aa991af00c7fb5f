// Package config loads service configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the tolk services.
type Config struct {
	Service       ServiceConfig
	Audio         AudioConfig
	Scribe        ScribeConfig
	Translate     TranslateConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// ServiceConfig holds process-level settings.
type ServiceConfig struct {
	Name string
	Port string
	Env  string // dev, prod
}

// AudioConfig holds capture and resampling settings.
type AudioConfig struct {
	TargetSampleRate int // Hz, rate sent to the STT service
	ChunkSize        int // native-rate samples per capture callback
}

// ScribeConfig holds streaming speech-to-text settings.
type ScribeConfig struct {
	Endpoint            string // websocket endpoint of the realtime STT service
	TokenURL            string // single-use token endpoint used by the session
	ModelID             string
	LanguageCode        string
	AudioFormat         string
	CommitStrategy      string
	VADSilenceThreshold time.Duration
	APIKey              string // upstream key used by the token proxy
	TokenUpstreamURL    string // upstream single-use-token endpoint proxied by tolkd
}

// TranslateConfig holds translation service settings.
type TranslateConfig struct {
	Endpoint       string // translation endpoint used by the dispatcher
	UpstreamURL    string // DeepL endpoint used by tolkd
	APIKey         string // DeepL auth key
	TargetLanguage string
	RequestTimeout time.Duration
}

// KafkaConfig holds segment event publishing settings.
type KafkaConfig struct {
	Enabled         bool
	Brokers         []string
	TopicCommitted  string
	TopicTranslated string
	Principal       string
}

// ObservabilityConfig holds metrics server and logging settings.
type ObservabilityConfig struct {
	MetricsPort string
	LogLevel    string
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		Service: ServiceConfig{
			Name: envOrDefault("SERVICE_NAME", "tolk"),
			Port: envOrDefault("PORT", "3000"),
			Env:  envOrDefault("ENV", "dev"),
		},
		Audio: AudioConfig{
			TargetSampleRate: envInt("AUDIO_TARGET_SAMPLE_RATE_HZ", 16000),
			ChunkSize:        envInt("AUDIO_CHUNK_SIZE", 4096),
		},
		Scribe: ScribeConfig{
			Endpoint:            envOrDefault("SCRIBE_ENDPOINT", "wss://api.elevenlabs.io/v1/speech-to-text/realtime"),
			TokenURL:            envOrDefault("SCRIBE_TOKEN_URL", "http://localhost:3000/v1/scribe/token"),
			ModelID:             envOrDefault("SCRIBE_MODEL_ID", "scribe_v2_realtime"),
			LanguageCode:        envOrDefault("SCRIBE_LANGUAGE_CODE", "en"),
			AudioFormat:         envOrDefault("SCRIBE_AUDIO_FORMAT", "pcm_16000"),
			CommitStrategy:      envOrDefault("SCRIBE_COMMIT_STRATEGY", "vad"),
			VADSilenceThreshold: envDuration("SCRIBE_VAD_SILENCE_THRESHOLD", time.Second),
			APIKey:              os.Getenv("ELEVENLABS_API_KEY"),
			TokenUpstreamURL:    envOrDefault("SCRIBE_TOKEN_UPSTREAM_URL", "https://api.elevenlabs.io/v1/single-use-token/realtime_scribe"),
		},
		Translate: TranslateConfig{
			Endpoint:       envOrDefault("TRANSLATE_ENDPOINT", "http://localhost:3000/v1/translate"),
			UpstreamURL:    envOrDefault("DEEPL_API_URL", "https://api-free.deepl.com/v2/translate"),
			APIKey:         os.Getenv("DEEPL_API_KEY"),
			TargetLanguage: envOrDefault("TRANSLATE_TARGET_LANGUAGE", "ES"),
			RequestTimeout: envDuration("TRANSLATE_REQUEST_TIMEOUT", 120*time.Second),
		},
		Kafka: KafkaConfig{
			Enabled:         envBool("KAFKA_ENABLED", false),
			Brokers:         envList("KAFKA_BROKERS"),
			TopicCommitted:  envOrDefault("KAFKA_TOPIC_COMMITTED", "tolk.segment.committed"),
			TopicTranslated: envOrDefault("KAFKA_TOPIC_TRANSLATED", "tolk.segment.translated"),
			Principal:       envOrDefault("SERVICE_PRINCIPAL", "svc-tolk"),
		},
		Observability: ObservabilityConfig{
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
