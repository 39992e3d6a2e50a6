package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/skywx/bluesky-weather-poster/internal/bluesky"
	"github.com/skywx/bluesky-weather-poster/internal/compose"
	"github.com/skywx/bluesky-weather-poster/internal/publish"
	"github.com/skywx/bluesky-weather-poster/internal/schedule"
)

var validate = validator.New()

// AppConfig is the full runtime configuration, assembled once at startup and
// passed around as explicit values.
type AppConfig struct {
	ClientrawURL   string
	StationURL     string
	Post           compose.Config
	Accounts       []publish.Account
	Schedule       schedule.Spec
	BlueskyBaseURL string

	// HTTPTimeout bounds every outbound network call.
	HTTPTimeout time.Duration
	// JobTimeout bounds one whole posting cycle.
	JobTimeout time.Duration

	HistoryMaxRuns int
	HistoryMaxAge  time.Duration

	Port string
}

// settings mirrors the env fields that need structural validation.
type settings struct {
	ClientrawURL   string `validate:"required,url"`
	Units          string `validate:"oneof=metric imperial both"`
	MaxLength      int    `validate:"gte=0"`
	PrimaryHandle  string `validate:"required"`
	FirstRunHour   int    `validate:"gte=0,lte=23"`
	FirstRunMinute int    `validate:"gte=0,lte=59"`
}

// Load reads configuration from the environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		ClientrawURL:   os.Getenv("CLIENTRAW_URL"),
		StationURL:     os.Getenv("STATION_URL"),
		BlueskyBaseURL: getenvDefault("BSKY_BASE_URL", bluesky.DefaultBaseURL),
		Port:           getenvDefault("PORT", "8080"),
	}

	cfg.Post = compose.Config{
		Units:              getenvDefault("POST_UNITS", compose.UnitsBoth),
		Prefix:             getenvDefault("POST_PREFIX", compose.DefaultPrefix),
		Hashtags:           os.Getenv("POST_HASHTAGS"),
		StationDisplayText: getenvDefault("STATION_DISPLAY_TEXT", "Live Station"),
		WebcamImageURL:     os.Getenv("WEBCAM_IMAGE_URL"),
		WebcamAltText:      getenvDefault("WEBCAM_ALT_TEXT", compose.DefaultWebcamAlt),
		Include:            loadIncludeFlags(),
		MaxLength:          getenvInt("POST_MAX_LENGTH", compose.DefaultMaxLength),
	}

	accounts, err := loadAccounts()
	if err != nil {
		return nil, err
	}
	cfg.Accounts = accounts

	spec, err := loadSchedule()
	if err != nil {
		return nil, err
	}
	cfg.Schedule = spec

	httpTimeoutStr := getenvDefault("HTTP_TIMEOUT", "15s")
	httpTimeout, err := time.ParseDuration(httpTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = httpTimeout

	jobTimeoutStr := getenvDefault("JOB_TIMEOUT", "2m")
	jobTimeout, err := time.ParseDuration(jobTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_TIMEOUT: %w", err)
	}
	cfg.JobTimeout = jobTimeout

	cfg.HistoryMaxRuns = getenvInt("HISTORY_MAX_RUNS", 96)
	maxAgeStr := getenvDefault("HISTORY_MAX_AGE", "168h")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_MAX_AGE: %w", err)
	}
	cfg.HistoryMaxAge = maxAge

	primaryHandle := ""
	if len(cfg.Accounts) > 0 {
		primaryHandle = cfg.Accounts[0].Credential.Handle
	}
	if err := validate.Struct(settings{
		ClientrawURL:   cfg.ClientrawURL,
		Units:          cfg.Post.Units,
		MaxLength:      cfg.Post.MaxLength,
		PrimaryHandle:  primaryHandle,
		FirstRunHour:   cfg.Schedule.FirstRunHour,
		FirstRunMinute: cfg.Schedule.FirstRunMinute,
	}); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadAccounts() ([]publish.Account, error) {
	var accounts []publish.Account

	accounts = append(accounts, publish.Account{
		Label: "Account 1",
		Credential: bluesky.Credential{
			Handle:      os.Getenv("BSKY_HANDLE"),
			AppPassword: os.Getenv("BSKY_APP_PASSWORD"),
		},
	})

	if getenvBool("BSKY_ENABLE_SECOND", false) {
		handle := os.Getenv("BSKY_HANDLE_2")
		password := os.Getenv("BSKY_APP_PASSWORD_2")
		if handle == "" || password == "" {
			return nil, fmt.Errorf("second account enabled but BSKY_HANDLE_2/BSKY_APP_PASSWORD_2 not set")
		}
		accounts = append(accounts, publish.Account{
			Label:      "Account 2",
			Credential: bluesky.Credential{Handle: handle, AppPassword: password},
		})
	}
	return accounts, nil
}

func loadSchedule() (schedule.Spec, error) {
	tzName := getenvDefault("TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return schedule.Spec{}, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err)
	}
	return schedule.Spec{
		FrequencyHours: getenvInt("POST_FREQUENCY_HOURS", 1),
		FirstRunHour:   getenvInt("FIRST_POST_HOUR", 0),
		FirstRunMinute: getenvInt("FIRST_POST_MINUTE", 0),
		Location:       loc,
	}, nil
}

func loadIncludeFlags() compose.IncludeFlags {
	return compose.IncludeFlags{
		Temperature:   getenvBool("INCLUDE_TEMPERATURE", true),
		WindDirection: getenvBool("INCLUDE_WIND_DIRECTION", true),
		WindSpeed:     getenvBool("INCLUDE_WIND_SPEED", true),
		Humidity:      getenvBool("INCLUDE_HUMIDITY", true),
		Pressure:      getenvBool("INCLUDE_PRESSURE", true),
		RainToday:     getenvBool("INCLUDE_RAIN_TODAY", true),
		WindChill:     getenvBool("INCLUDE_WINDCHILL", true),
		Humidex:       getenvBool("INCLUDE_HUMIDEX", true),
		DewPoint:      getenvBool("INCLUDE_DEW_POINT", true),
		MaxTemp:       getenvBool("INCLUDE_MAX_TEMP", true),
		MinTemp:       getenvBool("INCLUDE_MIN_TEMP", true),
		MaxGust:       getenvBool("INCLUDE_MAX_GUST", true),
		Description:   getenvBool("INCLUDE_WEATHER_DESC", true),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	v := strings.ToLower(os.Getenv(key))
	if v == "" {
		return def
	}
	switch v {
	case "1", "on", "true", "yes":
		return true
	default:
		return false
	}
}
