package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	TourAPI   TourAPIConfig
	Database  DatabaseConfig
	Kakao     KakaoConfig
	JWT       JWTConfig
	S3        S3Config
	Server    ServerConfig
	Scheduler SchedulerConfig
	Checkin   CheckinConfig
	Import    ImportConfig
	Badges    []BadgeDef
	DBPath    string
	LogFile   string
	LogLevel  string
}

type TourAPIConfig struct {
	ServiceKey string
	BaseURL    string
	MobileOS   string
	MobileApp  string
	NumOfRows  int
}

type DatabaseConfig struct {
	URL string
}

type KakaoConfig struct {
	RESTAPIKey  string
	RedirectURI string
}

type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type ServerConfig struct {
	Addr string
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

type CheckinConfig struct {
	RadiusMeters float64
}

// ImportConfig holds the area and content-type code lists used by "all" mode.
// Loaded from config/areas.yaml when present, otherwise the compiled-in
// defaults (the full TourAPI region list and the eight service content types).
type ImportConfig struct {
	Areas        []int `yaml:"areas"`
	ContentTypes []int `yaml:"content_types"`
}

var defaultImport = ImportConfig{
	Areas:        []int{1, 2, 3, 4, 5, 6, 7, 8, 31, 32, 33, 34, 35, 36, 37, 38, 39},
	ContentTypes: []int{12, 14, 15, 25, 28, 32, 38, 39},
}

// BadgeDef is one badge definition seeded into the domain store at startup.
// Loaded from config/badges.yaml when present, otherwise the compiled-in set.
type BadgeDef struct {
	BadgeID        string `yaml:"badge_id"`
	Name           string `yaml:"name"`
	ImageURL       string `yaml:"image_url"`
	Description    string `yaml:"description"`
	AreaCode       int    `yaml:"areacode"`
	CollectorCount int    `yaml:"collector_count"`
}

var defaultBadges = []BadgeDef{
	{BadgeID: "first_steps", Name: "첫 발걸음", Description: "첫 체크인 달성", CollectorCount: 1},
	{BadgeID: "seoul_explorer", Name: "서울 탐험가", Description: "서울 체크인 5회", AreaCode: 1, CollectorCount: 5},
	{BadgeID: "jeju_explorer", Name: "제주 탐험가", Description: "제주 체크인 5회", AreaCode: 39, CollectorCount: 5},
	{BadgeID: "seasoned_collector", Name: "베테랑 콜렉터", Description: "체크인 50회", CollectorCount: 50},
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TourAPI: TourAPIConfig{
			ServiceKey: os.Getenv("TOUR_API_KEY"),
			BaseURL:    getEnv("TOUR_API_BASE_URL", "http://apis.data.go.kr/B551011/KorService2"),
			MobileOS:   "ETC",
			MobileApp:  "Collectrip",
			NumOfRows:  getEnvInt("TOUR_API_PAGE_SIZE", 100),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Kakao: KakaoConfig{
			RESTAPIKey:  os.Getenv("KAKAO_REST_API_KEY"),
			RedirectURI: os.Getenv("KAKAO_REDIRECT_URI"),
		},
		JWT: JWTConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			AccessTTL:  getEnvDuration("JWT_ACCESS_TTL", 30*time.Minute),
			RefreshTTL: getEnvDuration("JWT_REFRESH_TTL", 14*24*time.Hour),
		},
		S3: S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "ap-northeast-2"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("IMPORT_CRON"),
		},
		Checkin: CheckinConfig{
			RadiusMeters: getEnvFloat("CHECKIN_RADIUS_M", 300),
		},
		Import:   defaultImport,
		Badges:   defaultBadges,
		DBPath:   getEnv("DB_PATH", "collectrip.db"),
		LogFile:  getEnv("LOG_FILE", "collectrip.log"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if interval := os.Getenv("IMPORT_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.loadImportConfig(); err != nil {
		return nil, err
	}
	if err := cfg.loadBadgeConfig(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// RequireTourAPIKey is a startup guard for any path that calls the remote API.
func (c *Config) RequireTourAPIKey() error {
	if c.TourAPI.ServiceKey == "" {
		return fmt.Errorf("TOUR_API_KEY is not set")
	}
	return nil
}

func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	return nil
}

func (c *Config) loadImportConfig() error {
	path := "config/areas.yaml"
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var imp ImportConfig
	if err := yaml.Unmarshal(data, &imp); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(imp.Areas) > 0 {
		c.Import.Areas = imp.Areas
	}
	if len(imp.ContentTypes) > 0 {
		c.Import.ContentTypes = imp.ContentTypes
	}
	return nil
}

func (c *Config) loadBadgeConfig() error {
	path := "config/badges.yaml"
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var defs struct {
		Badges []BadgeDef `yaml:"badges"`
	}
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(defs.Badges) > 0 {
		c.Badges = defs.Badges
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
