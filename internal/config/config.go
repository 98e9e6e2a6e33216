package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all report settings. Values come from (highest first) command
// line flags, environment variables, an optional YAML file, and defaults.
type Config struct {
	// Inputs.
	InputPath     string
	ShapefilePath string
	MaskPath      string

	// Outputs.
	OutputDir       string
	OutputS3Bucket  string
	OutputS3Prefix  string
	AWSRegion       string
	HTMLReport      bool
	MetricsTextfile string

	// Map rendering.
	MapTitle  string
	FigureDPI float64
	MapLegend bool

	// Word cloud.
	WordCloudColumn      string
	WordCloudJoinPhrases bool
	WordCloudMaxWords    int
	WordCloudSeed        uint64

	SkipInvalidCoordinates bool

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Kafka incident feed. Disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string
}

// Flag names mapped to config keys. Keys are the lower-cased env var names.
var flagKeys = map[string]string{
	"input":            "input_path",
	"shapefile":        "shapefile_path",
	"mask":             "mask_path",
	"output-dir":       "output_dir",
	"title":            "map_title",
	"dpi":              "figure_dpi",
	"legend":           "map_legend",
	"wordcloud-column": "wordcloud_column",
	"join-phrases":     "wordcloud_join_phrases",
	"max-words":        "wordcloud_max_words",
	"seed":             "wordcloud_seed",
	"html-report":      "html_report",
	"skip-invalid":     "skip_invalid_coordinates",
	"metrics-textfile": "metrics_textfile",
	"http-addr":        "http_addr",
	"log-level":        "log_level",
	"log-format":       "log_format",
}

// RegisterFlags defines the command line flags Load understands. Flag defaults
// are empty so unset flags fall through to the environment.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "optional YAML config file")
	fs.String("input", "", "incident TSV file (INPUT_PATH)")
	fs.String("shapefile", "", "state boundary shapefile (SHAPEFILE_PATH)")
	fs.String("mask", "", "word cloud mask image (MASK_PATH)")
	fs.String("output-dir", "", "artifact output directory (OUTPUT_DIR)")
	fs.String("title", "", "map title (MAP_TITLE)")
	fs.Float64("dpi", 0, "map resolution in dots per inch (FIGURE_DPI)")
	fs.Bool("legend", false, "draw the map legend (MAP_LEGEND)")
	fs.String("wordcloud-column", "", "column feeding the word cloud (WORDCLOUD_COLUMN)")
	fs.Bool("join-phrases", false, "strip whitespace inside word cloud values (WORDCLOUD_JOIN_PHRASES)")
	fs.Int("max-words", 0, "maximum words in the cloud (WORDCLOUD_MAX_WORDS)")
	fs.Uint64("seed", 0, "word cloud layout seed (WORDCLOUD_SEED)")
	fs.Bool("html-report", true, "render the interactive HTML report (HTML_REPORT)")
	fs.Bool("skip-invalid", false, "drop rows with bad coordinates instead of failing (SKIP_INVALID_COORDINATES)")
	fs.String("metrics-textfile", "", "write Prometheus metrics to this file after a run (METRICS_TEXTFILE)")
	fs.String("http-addr", "", "serve mode listen address (HTTP_ADDR)")
	fs.String("log-level", "", "debug, info, warn, or error (LOG_LEVEL)")
	fs.String("log-format", "", "json or text (LOG_FORMAT)")
}

// Load reads configuration, applying defaults where unset. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if fs != nil {
		for flag, key := range flagKeys {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	p := parser{v: v}
	cfg := &Config{
		InputPath:     p.str("input_path"),
		ShapefilePath: p.str("shapefile_path"),
		MaskPath:      p.str("mask_path"),

		OutputDir:       p.str("output_dir"),
		OutputS3Bucket:  p.str("output_s3_bucket"),
		OutputS3Prefix:  p.str("output_s3_prefix"),
		AWSRegion:       p.str("aws_region"),
		HTMLReport:      p.bool("html_report"),
		MetricsTextfile: p.str("metrics_textfile"),

		MapTitle:  v.GetString("map_title"),
		FigureDPI: p.float("figure_dpi"),
		MapLegend: p.bool("map_legend"),

		WordCloudColumn:      p.str("wordcloud_column"),
		WordCloudJoinPhrases: p.bool("wordcloud_join_phrases"),
		WordCloudMaxWords:    p.int("wordcloud_max_words"),
		WordCloudSeed:        p.uint("wordcloud_seed"),

		SkipInvalidCoordinates: p.bool("skip_invalid_coordinates"),

		HTTPAddr:        p.str("http_addr"),
		LogLevel:        p.str("log_level"),
		LogFormat:       p.str("log_format"),
		ShutdownTimeout: p.duration("shutdown_timeout"),

		MapboxToken:     p.str("mapbox_token"),
		MapboxTimeout:   p.duration("mapbox_timeout"),
		MapboxCacheSize: p.int("mapbox_cache_size"),

		KafkaBrokers: sharedcfg.ParseBrokers(v.GetString("kafka_brokers")),
		KafkaTopic:   p.str("kafka_topic"),
	}

	cfg.MapboxEnabled = cfg.MapboxToken != ""
	if raw := v.GetString("mapbox_enabled"); raw != "" {
		cfg.MapboxEnabled = p.bool("mapbox_enabled")
	}

	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input_path", "incident_gas_transmission_gathering_jan2010_present.txt")
	v.SetDefault("shapefile_path", "cb_2023_us_state_500k.shp")
	v.SetDefault("mask_path", "us_mask.jpg")
	v.SetDefault("output_dir", "output")
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("html_report", true)

	v.SetDefault("map_title", "Pipeline Incidents (2010-2024)")
	v.SetDefault("figure_dpi", 100)
	v.SetDefault("map_legend", false)

	v.SetDefault("wordcloud_column", "ONSHORE_STATE_ABBREVIATION")
	v.SetDefault("wordcloud_join_phrases", false)
	v.SetDefault("wordcloud_max_words", 200)
	v.SetDefault("wordcloud_seed", 1)

	v.SetDefault("skip_invalid_coordinates", false)

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("shutdown_timeout", "10s")

	v.SetDefault("mapbox_timeout", "5s")
	v.SetDefault("mapbox_cache_size", 1000)

	v.SetDefault("kafka_topic", "pipeline-incidents")
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("INPUT_PATH is required")
	}
	if c.ShapefilePath == "" {
		return errors.New("SHAPEFILE_PATH is required")
	}
	if c.MaskPath == "" {
		return errors.New("MASK_PATH is required")
	}
	if c.OutputDir == "" {
		return errors.New("OUTPUT_DIR is required")
	}
	if c.FigureDPI < 10 || c.FigureDPI > 600 {
		return errors.New("FIGURE_DPI must be between 10 and 600")
	}
	if c.WordCloudColumn == "" {
		return errors.New("WORDCLOUD_COLUMN is required")
	}
	if c.WordCloudMaxWords <= 0 {
		return errors.New("WORDCLOUD_MAX_WORDS must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("invalid SHUTDOWN_TIMEOUT")
	}
	if c.MapboxTimeout <= 0 {
		return errors.New("invalid MAPBOX_TIMEOUT")
	}
	if c.MapboxCacheSize <= 0 {
		return errors.New("MAPBOX_CACHE_SIZE must be positive")
	}
	if c.MapboxEnabled && c.MapboxToken == "" {
		return errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	if c.OutputS3Bucket != "" && c.AWSRegion == "" {
		return errors.New("AWS_REGION is required when OUTPUT_S3_BUCKET is set")
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// KafkaEnabled reports whether the incident feed is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// parser converts raw viper strings and keeps the first failure, naming the
// offending environment variable.
type parser struct {
	v   *viper.Viper
	err error
}

func (p *parser) fail(key string) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s: %q", strings.ToUpper(key), p.v.GetString(key))
	}
}

func (p *parser) str(key string) string {
	return strings.TrimSpace(p.v.GetString(key))
}

func (p *parser) bool(key string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(p.v.GetString(key)))
	if err != nil {
		p.fail(key)
	}
	return b
}

func (p *parser) int(key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(p.v.GetString(key)))
	if err != nil {
		p.fail(key)
	}
	return n
}

func (p *parser) uint(key string) uint64 {
	n, err := strconv.ParseUint(strings.TrimSpace(p.v.GetString(key)), 10, 64)
	if err != nil {
		p.fail(key)
	}
	return n
}

func (p *parser) float(key string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(p.v.GetString(key)), 64)
	if err != nil {
		p.fail(key)
	}
	return f
}

func (p *parser) duration(key string) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(p.v.GetString(key)))
	if err != nil {
		p.fail(key)
	}
	return d
}
