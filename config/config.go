package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"4242"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	// Quellen-Konfiguration
	EnabledSources string `envconfig:"ENABLED_SOURCES" default:"youtube,core,googlebooks,github"`

	YouTubeBaseURL          string `envconfig:"YOUTUBE_BASE_URL" default:"https://www.googleapis.com/youtube/v3"`
	YouTubeAPIKey           string `envconfig:"YOUTUBE_API_KEY"`
	YouTubeMaxResults       int    `envconfig:"YOUTUBE_MAX_RESULTS" default:"10"`
	YouTubeLanguage         string `envconfig:"YOUTUBE_LANGUAGE" default:"en"`
	YouTubeCategoryID       string `envconfig:"YOUTUBE_CATEGORY_ID" default:"27"`
	VideoMinDurationSeconds int    `envconfig:"VIDEO_MIN_DURATION_SECONDS" default:"60"`

	CoreBaseURL    string `envconfig:"CORE_BASE_URL" default:"https://api.core.ac.uk/v3"`
	CoreAPIKey     string `envconfig:"CORE_API_KEY"`
	CoreMaxResults int    `envconfig:"CORE_MAX_RESULTS" default:"10"`

	// Optional: freie PDF-Links für Papers mit DOI
	UnpaywallBaseURL string `envconfig:"UNPAYWALL_BASE_URL" default:"https://api.unpaywall.org/v2"`
	UnpaywallEmail   string `envconfig:"UNPAYWALL_EMAIL"`

	GoogleBooksBaseURL    string `envconfig:"GOOGLE_BOOKS_BASE_URL" default:"https://www.googleapis.com/books/v1"`
	GoogleBooksAPIKey     string `envconfig:"GOOGLE_BOOKS_API_KEY"`
	GoogleBooksMaxResults int    `envconfig:"GOOGLE_BOOKS_MAX_RESULTS" default:"10"`

	GitHubBaseURL     string `envconfig:"GITHUB_BASE_URL" default:"https://api.github.com"`
	GitHubToken       string `envconfig:"GITHUB_TOKEN"`
	GitHubPerPage     int    `envconfig:"GITHUB_PER_PAGE" default:"10"`
	GitHubMaxKeywords int    `envconfig:"GITHUB_MAX_KEYWORDS" default:"3"`

	// Gemeinsame Einstellungen für alle externen Aufrufe
	SourceTimeout      time.Duration `envconfig:"SOURCE_TIMEOUT" default:"20s"`
	SourceRetries      int           `envconfig:"SOURCE_RETRIES" default:"2"`
	SourceRetryBackoff time.Duration `envconfig:"SOURCE_RETRY_BACKOFF" default:"500ms"`
	FetchConcurrency   int           `envconfig:"FETCH_CONCURRENCY" default:"5"`

	// Leer = kein automatischer Refresh
	CronSchedule string `envconfig:"CRON_SCHEDULE"`

	// S3 ist optional; ohne Bucket sind Export und Backup deaktiviert.
	S3Key       string `envconfig:"S3_KEY"`
	S3Secret    string `envconfig:"S3_SECRET"`
	S3URL       string `envconfig:"S3_URL"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	KeepBackups int    `envconfig:"KEEP_BACKUPS" default:"4"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// Sources liefert die aktivierten Quellen in Kleinbuchstaben, ohne Leereinträge.
func (c *Config) Sources() []string {
	var out []string
	for _, name := range strings.Split(c.EnabledSources, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// S3Enabled meldet, ob genug Angaben für einen S3-Client vorhanden sind.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3URL != "" && c.S3Key != "" && c.S3Secret != ""
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
