package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	// API-Schlüssel der Verlags-APIs. Welcher Schlüssel Pflicht ist,
	// prüft das jeweilige Binary beim Start.
	ElsevierAPIKey string `envconfig:"ELSEVIER_API_KEY"`
	SpringerAPIKey string `envconfig:"SPRINGER_API_KEY"`
	WileyAPIKey    string `envconfig:"WILEY_API_KEY"`
	UnpaywallEmail string `envconfig:"UNPAYWALL_EMAIL"`

	CrossrefBaseURL  string `envconfig:"CROSSREF_BASE_URL" default:"https://api.crossref.org/works"`
	EuropePMCBaseURL string `envconfig:"EUROPEPMC_BASE_URL" default:"https://www.ebi.ac.uk/europepmc/webservices/rest/search"`
	UnpaywallBaseURL string `envconfig:"UNPAYWALL_BASE_URL" default:"https://api.unpaywall.org/v2"`
	DataCiteBaseURL  string `envconfig:"DATACITE_BASE_URL" default:"https://api.datacite.org/dois"`
	MendeleyBaseURL  string `envconfig:"MENDELEY_BASE_URL" default:"https://data.mendeley.com/api/datasets"`
	ElsevierBaseURL  string `envconfig:"ELSEVIER_BASE_URL" default:"https://api.elsevier.com/content/article/doi"`
	SpringerBaseURL  string `envconfig:"SPRINGER_BASE_URL" default:"https://api.springernature.com/metadata/xml"`
	WileyBaseURL     string `envconfig:"WILEY_BASE_URL" default:"https://api.wiley.com/onlinelibrary/tdm/v1/articles"`
	DOIBaseURL       string `envconfig:"DOI_BASE_URL" default:"https://doi.org"`

	// Verzeichnis, unter dem alle Ergebnis-Artefakte (CSV, Logs, XML) landen.
	OutputDir string `envconfig:"OUTPUT_DIR" default:"analysis"`

	// Pause zwischen zwei Datensätzen, um Drittanbieter nicht zu fluten.
	RateLimitDelaySeconds int `envconfig:"RATE_LIMIT_DELAY_SECONDS" default:"2"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`
	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 0 * * *"`
	// Eingabedatei, die der Cron-Job im Server-Modus erneut bewertet.
	WatchInput string `envconfig:"WATCH_INPUT"`

	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`

	// Optionales S3-Archiv für abgeholte Verlags-XML.
	ArchiveS3Key    string `envconfig:"ARCHIVE_S3_KEY"`
	ArchiveS3Secret string `envconfig:"ARCHIVE_S3_SECRET"`
	ArchiveS3URL    string `envconfig:"ARCHIVE_S3_URL"`
	ArchiveS3Region string `envconfig:"ARCHIVE_S3_REGION"`
	ArchiveS3Bucket string `envconfig:"ARCHIVE_S3_BUCKET"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// ArchiveEnabled meldet, ob ein S3-Archiv konfiguriert wurde.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveS3Key != "" && c.ArchiveS3Secret != "" && c.ArchiveS3URL != "" && c.ArchiveS3Bucket != ""
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
