// Package config loads service and tool settings from config.yaml and the
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aliffadillah/durian-leaf-classification/internal/leafimage"
	"github.com/aliffadillah/durian-leaf-classification/internal/model"
	"github.com/aliffadillah/durian-leaf-classification/internal/rank"
	"github.com/aliffadillah/durian-leaf-classification/internal/segment"
)

type Server struct {
	Port              string   `mapstructure:"port"`
	MaxUploadBytes    int64    `mapstructure:"max_upload_bytes"`
	MaxPixels         int64    `mapstructure:"max_pixels"`
	StaticDir         string   `mapstructure:"static_dir"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

// Artifacts are the files loaded once at startup.
type Artifacts struct {
	Model       string `mapstructure:"model"`
	Metadata    string `mapstructure:"metadata"`
	Scaler      string `mapstructure:"scaler"`
	Dataset     string `mapstructure:"dataset"`
	OnnxLibrary string `mapstructure:"onnx_library"`
}

// Dataset selects where reference records come from. An empty driver reads
// the CSV named by Artifacts.Dataset.
type Dataset struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Table  string `mapstructure:"table"`
}

type Thresholds struct {
	HueMin int `mapstructure:"hue_min"`
	HueMax int `mapstructure:"hue_max"`
	SatMin int `mapstructure:"sat_min"`
	SatMax int `mapstructure:"sat_max"`
	ValMin int `mapstructure:"val_min"`
	ValMax int `mapstructure:"val_max"`
}

// Segment converts to the segmenter's threshold type.
func (t Thresholds) Segment() segment.Thresholds {
	return segment.Thresholds{
		HueMin: t.HueMin, HueMax: t.HueMax,
		SatMin: t.SatMin, SatMax: t.SatMax,
		ValMin: t.ValMin, ValMax: t.ValMax,
	}
}

type Segmentation struct {
	Backend    string     `mapstructure:"backend"`
	Thresholds Thresholds `mapstructure:"thresholds"`
}

type Preprocess struct {
	MaxSide uint `mapstructure:"max_side"`
}

type Staging struct {
	Enabled    bool          `mapstructure:"enabled"`
	Dir        string        `mapstructure:"dir"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

type Ranking struct {
	TopK int `mapstructure:"top_k"`
}

type Labels struct {
	UnrecognizedMessage string `mapstructure:"unrecognized_message"`
}

type Log struct {
	File  string `mapstructure:"file"`
	Debug bool   `mapstructure:"debug"`
}

// Config is the full settings tree.
type Config struct {
	Server       Server       `mapstructure:"server"`
	Artifacts    Artifacts    `mapstructure:"artifacts"`
	Dataset      Dataset      `mapstructure:"dataset"`
	Segmentation Segmentation `mapstructure:"segmentation"`
	Preprocess   Preprocess   `mapstructure:"preprocess"`
	Staging      Staging      `mapstructure:"staging"`
	Ranking      Ranking      `mapstructure:"ranking"`
	Labels       Labels       `mapstructure:"labels"`
	Log          Log          `mapstructure:"log"`
}

// Default returns settings that work from the repository root.
func Default() Config {
	t := segment.DefaultThresholds()
	return Config{
		Server: Server{
			Port:              "8080",
			MaxUploadBytes:    16 << 20,
			MaxPixels:         leafimage.DefaultMaxPixels,
			AllowedExtensions: []string{"png", "jpg", "jpeg", "gif", "bmp"},
		},
		Artifacts: Artifacts{
			Model:    "models/model.onnx",
			Metadata: "models/model_metadata.json",
			Scaler:   "models/scaler.json",
			Dataset:  "data/features.csv",
		},
		Dataset: Dataset{Table: "leaf_features"},
		Segmentation: Segmentation{
			Backend: segment.BackendNative,
			Thresholds: Thresholds{
				HueMin: t.HueMin, HueMax: t.HueMax,
				SatMin: t.SatMin, SatMax: t.SatMax,
				ValMin: t.ValMin, ValMax: t.ValMax,
			},
		},
		Staging: Staging{RetryDelay: 100 * time.Millisecond},
		Ranking: Ranking{TopK: rank.DefaultTopK},
		Labels:  Labels{UnrecognizedMessage: model.DefaultUnrecognizedMessage},
	}
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("server.port", c.Server.Port)
	v.SetDefault("server.max_upload_bytes", c.Server.MaxUploadBytes)
	v.SetDefault("server.max_pixels", c.Server.MaxPixels)
	v.SetDefault("server.static_dir", c.Server.StaticDir)
	v.SetDefault("server.allowed_extensions", c.Server.AllowedExtensions)

	v.SetDefault("artifacts.model", c.Artifacts.Model)
	v.SetDefault("artifacts.metadata", c.Artifacts.Metadata)
	v.SetDefault("artifacts.scaler", c.Artifacts.Scaler)
	v.SetDefault("artifacts.dataset", c.Artifacts.Dataset)
	v.SetDefault("artifacts.onnx_library", c.Artifacts.OnnxLibrary)

	v.SetDefault("dataset.driver", c.Dataset.Driver)
	v.SetDefault("dataset.dsn", c.Dataset.DSN)
	v.SetDefault("dataset.table", c.Dataset.Table)

	t := c.Segmentation.Thresholds
	v.SetDefault("segmentation.backend", c.Segmentation.Backend)
	v.SetDefault("segmentation.thresholds.hue_min", t.HueMin)
	v.SetDefault("segmentation.thresholds.hue_max", t.HueMax)
	v.SetDefault("segmentation.thresholds.sat_min", t.SatMin)
	v.SetDefault("segmentation.thresholds.sat_max", t.SatMax)
	v.SetDefault("segmentation.thresholds.val_min", t.ValMin)
	v.SetDefault("segmentation.thresholds.val_max", t.ValMax)

	v.SetDefault("preprocess.max_side", c.Preprocess.MaxSide)
	v.SetDefault("staging.enabled", c.Staging.Enabled)
	v.SetDefault("staging.dir", c.Staging.Dir)
	v.SetDefault("staging.retry_delay", c.Staging.RetryDelay)
	v.SetDefault("ranking.top_k", c.Ranking.TopK)
	v.SetDefault("labels.unrecognized_message", c.Labels.UnrecognizedMessage)
	v.SetDefault("log.file", c.Log.File)
	v.SetDefault("log.debug", c.Log.Debug)
}

// Load reads path, or config.yaml from . or ./configs when path is empty.
// A missing config.yaml is not an error when searching; defaults apply.
// LEAF_<SECTION>_<KEY> environment variables override the file, and PORT
// sets the listen port.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("LEAF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "LEAF_SERVER_PORT", "PORT"); err != nil {
		return Config{}, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	if err := c.Segmentation.Thresholds.Segment().Validate(); err != nil {
		return fmt.Errorf("segmentation: %w", err)
	}
	switch c.Segmentation.Backend {
	case segment.BackendNative, segment.BackendOpenCV:
	default:
		return fmt.Errorf("segmentation: unknown backend %q", c.Segmentation.Backend)
	}
	switch c.Dataset.Driver {
	case "", "mysql", "postgres":
	default:
		return fmt.Errorf("dataset: unsupported driver %q", c.Dataset.Driver)
	}
	if c.Dataset.Driver != "" && c.Dataset.DSN == "" {
		return fmt.Errorf("dataset: driver %q needs a dsn", c.Dataset.Driver)
	}
	if c.Ranking.TopK <= 0 {
		return fmt.Errorf("ranking: top_k must be positive, got %d", c.Ranking.TopK)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server: max_upload_bytes must be positive")
	}
	if c.Server.MaxPixels <= 0 {
		return fmt.Errorf("server: max_pixels must be positive")
	}
	return nil
}

// AllowsExtension reports whether an upload with extension ext (with or
// without the dot, any case) is accepted.
func (s Server) AllowsExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range s.AllowedExtensions {
		if ext == strings.ToLower(a) {
			return true
		}
	}
	return false
}
