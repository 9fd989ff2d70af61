package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/projector"
	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/utils"
	"github.com/spf13/viper"
)

//Config is read once at startup and passed down, nothing reads viper after Load
type Config struct {
	HTTP     HTTPConfig      `mapstructure:"http"`
	Frontend FrontendConfig  `mapstructure:"frontend"`
	Layout   LayoutConfig    `mapstructure:"layout"`
	Playback PlaybackConfig  `mapstructure:"playback"`
	Classes  []ClassConfig   `mapstructure:"classes"`
	Datasets []DatasetConfig `mapstructure:"datasets"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

type FrontendConfig struct {
	StaticFilesPath string `mapstructure:"static-files-path"`
}

type LayoutConfig struct {
	Policy string `mapstructure:"policy"`
}

//PlaybackConfig is handed to the client, which owns the auto-play timer
type PlaybackConfig struct {
	IntervalMS int     `mapstructure:"interval-ms" json:"interval_ms"`
	FrameRate  float64 `mapstructure:"frame-rate" json:"frame_rate"`
}

//ClassConfig is one entry of the shared class vocabulary
type ClassConfig struct {
	ID    string `mapstructure:"id"`
	Label string `mapstructure:"label"`
}

type ColumnsConfig struct {
	Frame     string `mapstructure:"frame"`
	Top1      string `mapstructure:"top1"`
	Top1Score string `mapstructure:"top1-score"`
	Label     string `mapstructure:"label"`
}

type DatasetConfig struct {
	Name  string `mapstructure:"name"`
	Title string `mapstructure:"title"`
	CSV   string `mapstructure:"csv"`

	//Images is a directory of frame images, Video a video file. Video wins when both are set.
	Images string `mapstructure:"images"`
	Video  string `mapstructure:"video"`

	//FixedCatalog uses the shared classes as the catalog instead of inferring it from the CSV
	FixedCatalog bool          `mapstructure:"fixed-catalog"`
	Layout       string        `mapstructure:"layout"`
	Columns      ColumnsConfig `mapstructure:"columns"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", utils.DefaultHTTPPort)
	v.SetDefault("frontend.static-files-path", "")
	v.SetDefault("layout.policy", utils.DefaultLayoutPolicy)
	v.SetDefault("playback.interval-ms", utils.DefaultPlaybackIntervalMS)
	v.SetDefault("playback.frame-rate", utils.DefaultFrameRate)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("EXPLORER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

//Load reads the config file at path, or ./config.yaml when path is empty
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config.Load: Could not read config file, got '%v'", err)
	}
	return decode(v)
}

//Read parses YAML config content
func Read(r io.Reader) (*Config, error) {
	v := newViper()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("config.Read: Could not parse config, got '%v'", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: Could not decode config, got '%v'", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

//Validate reports missing critical configurations
func (c *Config) Validate() error {
	if c.HTTP.Port == "" {
		return errors.New("config: Missing critical configuration 'http.port'")
	}
	if c.Playback.IntervalMS <= 0 {
		return fmt.Errorf("config: 'playback.interval-ms' must be positive, got %d", c.Playback.IntervalMS)
	}
	if c.Playback.FrameRate <= 0 {
		return fmt.Errorf("config: 'playback.frame-rate' must be positive, got %v", c.Playback.FrameRate)
	}
	if _, err := projector.PolicyByName(c.Layout.Policy); err != nil {
		return fmt.Errorf("config: 'layout.policy': %v", err)
	}
	if len(c.Datasets) == 0 {
		return errors.New("config: Missing critical configuration 'datasets'")
	}

	seen := make([]string, 0, len(c.Datasets))
	for i, ds := range c.Datasets {
		if ds.Name == "" {
			return fmt.Errorf("config: dataset number %d has no name", i)
		}
		if utils.InSlice(ds.Name, seen) {
			return fmt.Errorf("config: duplicate dataset name '%s'", ds.Name)
		}
		seen = append(seen, ds.Name)

		if ds.CSV == "" {
			return fmt.Errorf("config: dataset '%s' has no csv", ds.Name)
		}
		if ds.FixedCatalog && len(c.Classes) == 0 {
			return fmt.Errorf("config: dataset '%s' asks for a fixed catalog but 'classes' is empty", ds.Name)
		}
		if _, err := projector.PolicyByName(ds.Layout); ds.Layout != "" && err != nil {
			return fmt.Errorf("config: dataset '%s': %v", ds.Name, err)
		}
	}

	return nil
}

//Dataset finds a dataset config by name
func (c *Config) Dataset(name string) (DatasetConfig, bool) {
	for _, ds := range c.Datasets {
		if ds.Name == name {
			return ds, true
		}
	}
	return DatasetConfig{}, false
}

//Sources turns the dataset configs into projector sources, the dataset's own layout overrides the global one
func (c *Config) Sources() ([]projector.Source, error) {
	labels := make(map[string]string, len(c.Classes))
	classes := make([]projector.Class, len(c.Classes))
	for i, cl := range c.Classes {
		labels[cl.ID] = cl.Label
		classes[i] = projector.Class{ID: cl.ID, Label: cl.Label}
	}

	sources := make([]projector.Source, 0, len(c.Datasets))
	for _, ds := range c.Datasets {
		policyName := c.Layout.Policy
		if ds.Layout != "" {
			policyName = ds.Layout
		}
		policy, err := projector.PolicyByName(policyName)
		if err != nil {
			return nil, fmt.Errorf("config.Sources: dataset '%s': %v", ds.Name, err)
		}

		opts := projector.Options{
			Columns: projector.Columns{
				Frame:     ds.Columns.Frame,
				Top1:      ds.Columns.Top1,
				Top1Score: ds.Columns.Top1Score,
				Label:     ds.Columns.Label,
			},
			Labels: labels,
			Layout: policy,
		}
		if ds.FixedCatalog {
			opts.Classes = classes
		}

		sources = append(sources, projector.Source{Name: ds.Name, Path: ds.CSV, Options: opts})
	}

	return sources, nil
}
