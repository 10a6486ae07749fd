package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all server configuration
type Config struct {
	Port    int
	BaseURL string // Public URL Twilio calls back to (e.g. an ngrok tunnel)

	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string

	LLMProvider  string // "gemini" or "openai"
	GeminiAPIKey string
	OpenAIAPIKey string

	GoogleMapsAPIKey string

	RedisURL      string
	RedisPassword string

	MaxSessions    int
	SessionTimeout time.Duration
	TurnTimeout    time.Duration // budget for one turn's external calls
	HistoryWindow  int           // turns of context handed to the extractor

	ValidateWebhooks  bool // check X-Twilio-Signature on voice webhooks
	EnableMediaStream bool // expose the /stream Media Streams endpoint
	MaxBufferSize     int  // maximum audio buffer size in bytes per stream
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := &Config{
		Port:           8080,
		BaseURL:        "http://localhost:8080",
		LLMProvider:    "gemini",
		RedisURL:       "localhost:6379",
		MaxSessions:    100,
		SessionTimeout: 30 * time.Minute,
		TurnTimeout:    8 * time.Second,
		HistoryWindow:  10,
		MaxBufferSize:  5 * 1024 * 1024, // 5MB default
	}

	// Required Twilio credentials
	config.TwilioAccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	if config.TwilioAccountSID == "" {
		return nil, fmt.Errorf("TWILIO_ACCOUNT_SID environment variable is required")
	}
	config.TwilioAuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	if config.TwilioAuthToken == "" {
		return nil, fmt.Errorf("TWILIO_AUTH_TOKEN environment variable is required")
	}
	config.TwilioPhoneNumber = os.Getenv("TWILIO_PHONE_NUMBER")
	if config.TwilioPhoneNumber == "" {
		return nil, fmt.Errorf("TWILIO_PHONE_NUMBER environment variable is required")
	}

	// Required: GOOGLE_MAPS_API_KEY
	config.GoogleMapsAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	if config.GoogleMapsAPIKey == "" {
		return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY environment variable is required")
	}

	// Optional: LLM_PROVIDER ("gemini" or "openai")
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		switch strings.ToLower(provider) {
		case "gemini", "openai":
			config.LLMProvider = strings.ToLower(provider)
		default:
			return nil, fmt.Errorf("invalid LLM_PROVIDER: must be 'gemini' or 'openai'")
		}
	}

	// The selected provider's key is required
	config.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	config.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	switch config.LLMProvider {
	case "gemini":
		if config.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
		}
	case "openai":
		if config.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
	}

	// Optional: PORT
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		config.Port = p
	}

	// Optional: BASE_URL
	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		config.BaseURL = strings.TrimRight(baseURL, "/")
	}

	// Optional: REDIS_URL
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		config.RedisURL = redisURL
	}

	// Optional: REDIS_PASSWORD
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.RedisPassword = redisPassword
	}

	// Optional: MAX_SESSIONS
	if maxSessions := os.Getenv("MAX_SESSIONS"); maxSessions != "" {
		m, err := strconv.Atoi(maxSessions)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_SESSIONS: %w", err)
		}
		config.MaxSessions = m
	}

	// Optional: SESSION_TIMEOUT (in minutes)
	if timeout := os.Getenv("SESSION_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TIMEOUT: %w", err)
		}
		config.SessionTimeout = time.Duration(t) * time.Minute
	}

	// Optional: TURN_TIMEOUT (in seconds)
	if timeout := os.Getenv("TURN_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid TURN_TIMEOUT: %w", err)
		}
		config.TurnTimeout = time.Duration(t) * time.Second
	}

	// Optional: HISTORY_WINDOW (turns of context for the extractor)
	if window := os.Getenv("HISTORY_WINDOW"); window != "" {
		w, err := strconv.Atoi(window)
		if err != nil {
			return nil, fmt.Errorf("invalid HISTORY_WINDOW: %w", err)
		}
		config.HistoryWindow = w
	}

	// Optional: VALIDATE_WEBHOOKS ("true" rejects unsigned voice webhooks)
	if validate := os.Getenv("VALIDATE_WEBHOOKS"); validate != "" {
		v, err := strconv.ParseBool(validate)
		if err != nil {
			return nil, fmt.Errorf("invalid VALIDATE_WEBHOOKS: %w", err)
		}
		config.ValidateWebhooks = v
	}

	// Optional: ENABLE_MEDIA_STREAM ("true" exposes /stream)
	if stream := os.Getenv("ENABLE_MEDIA_STREAM"); stream != "" {
		v, err := strconv.ParseBool(stream)
		if err != nil {
			return nil, fmt.Errorf("invalid ENABLE_MEDIA_STREAM: %w", err)
		}
		config.EnableMediaStream = v
	}

	// Optional: MAX_BUFFER_SIZE (in bytes)
	if bufferSize := os.Getenv("MAX_BUFFER_SIZE"); bufferSize != "" {
		b, err := strconv.Atoi(bufferSize)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_BUFFER_SIZE: %w", err)
		}
		config.MaxBufferSize = b
	}

	return config, nil
}
