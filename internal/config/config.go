package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1 << 20

// Config contains runtime settings for the scoutdesk server
type Config struct {
	Log struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"` // json or console
	} `koanf:"log"`

	Server struct {
		Host    string `koanf:"host"`
		Port    string `koanf:"port"`
		BaseURL string `koanf:"base_url"` // prefix for redirect locations
	} `koanf:"server"`

	Database struct {
		Path string `koanf:"path"`
	} `koanf:"database"`

	// Neo4j backs the graph index of visible postings; empty URI disables it
	Neo4j struct {
		URI      string `koanf:"uri"`
		Username string `koanf:"username"`
		Password string `koanf:"password"`
		Database string `koanf:"database"`
	} `koanf:"neo4j"`

	// NATS carries revalidation events and the draft KV bucket; empty URL keeps both in-process
	NATS struct {
		URL         string `koanf:"url"`
		Subject     string `koanf:"subject"`
		DraftBucket string `koanf:"draft_bucket"`
	} `koanf:"nats"`

	Sheets struct {
		CredentialsPath string `koanf:"credentials_path"`
		SpreadsheetID   string `koanf:"spreadsheet_id"`
		Tab             string `koanf:"tab"`
	} `koanf:"sheets"`

	Storage struct {
		UploadDir     string `koanf:"upload_dir"`
		PublicBaseURL string `koanf:"public_base_url"`
	} `koanf:"storage"`

	Staging struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"staging"`

	Groups struct {
		CacheTTL time.Duration `koanf:"cache_ttl"`
	} `koanf:"groups"`
}

var sections = map[string]bool{
	"log": true, "server": true, "database": true, "neo4j": true, "nats": true,
	"sheets": true, "storage": true, "staging": true, "groups": true,
}

// Defaults returns the configuration used when nothing is overridden
func Defaults() Config {
	var cfg Config
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = "8080"
	cfg.Database.Path = "scoutdesk.db"
	cfg.NATS.Subject = "scoutdesk.revalidate"
	cfg.NATS.DraftBucket = "scoutdesk_drafts"
	cfg.Sheets.Tab = "ScoutStats"
	cfg.Storage.UploadDir = "uploads"
	cfg.Storage.PublicBaseURL = "/uploads"
	cfg.Staging.TTL = 24 * time.Hour
	cfg.Groups.CacheTTL = 2 * time.Minute
	return cfg
}

// Load reads an optional YAML file, then environment variables, over Defaults.
//
// Environment variables map SECTION_FIELD to section.field, e.g.
// DATABASE_PATH -> database.path, NATS_DRAFT_BUCKET -> nats.draft_bucket.
// Variables whose first segment is not a known section are ignored.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate reports missing settings that the server cannot start without
func (c Config) Validate() error {
	var missing []string

	if c.Database.Path == "" {
		missing = append(missing, "DATABASE_PATH")
	}
	if c.Neo4j.URI != "" {
		if c.Neo4j.Username == "" {
			missing = append(missing, "NEO4J_USERNAME")
		}
		if c.Neo4j.Password == "" {
			missing = append(missing, "NEO4J_PASSWORD")
		}
	}
	if c.Sheets.SpreadsheetID != "" && c.Sheets.CredentialsPath == "" {
		missing = append(missing, "SHEETS_CREDENTIALS_PATH")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Addr is the listen address for the HTTP server
func (c Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func envKey(s string) string {
	lower := strings.ToLower(s)
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) != 2 || !sections[parts[0]] {
		return ""
	}
	return parts[0] + "." + parts[1]
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}

	return io.ReadAll(f)
}
