package config // CLI configuration file

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"qc_buddy_go/tools/percentile"
)

// Image formats the chart renderer can embed
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// Config is built once at start-up and handed to the report environment.
// Percentiles must hold five ascending values: lower whisker, lower quartile,
// median, upper quartile, upper whisker.
type Config struct {
	Title        string    `yaml:"title"`
	Percentiles  []float64 `yaml:"percentiles"`
	ImageFormat  string    `yaml:"image_format"`
	WidthInches  float64   `yaml:"width_inches"`
	HeightInches float64   `yaml:"height_inches"`
	DPI          int       `yaml:"dpi"`
	XLimit       int       `yaml:"x_limit"` // 0 = fit to read length
	Workers      int       `yaml:"workers"`
}

// Default returns a 6x5 inch png chart of the 5/25/50/75/95 percentiles
func Default() Config {
	return Config{
		Title:        "QC Report",
		Percentiles:  append([]float64(nil), percentile.DefaultSpec...),
		ImageFormat:  FormatPNG,
		WidthInches:  6,
		HeightInches: 5,
		DPI:          60,
		XLimit:       0,
		Workers:      4,
	}
}

// Load reads a YAML config file on top of the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Apply sets fields from "key=value" overrides, e.g. "dpi=100"
func (c *Config) Apply(overrides []string) error {
	for _, arg := range overrides {
		kv := splitOption(arg)
		key, val := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
		if val == "" {
			return fmt.Errorf("override %q has no value", arg)
		}
		var err error
		switch key {
		case "title":
			c.Title = val
		case "image_format":
			c.ImageFormat = strings.ToLower(val)
		case "width_inches":
			c.WidthInches, err = strconv.ParseFloat(val, 64)
		case "height_inches":
			c.HeightInches, err = strconv.ParseFloat(val, 64)
		case "dpi":
			c.DPI, err = strconv.Atoi(val)
		case "x_limit":
			c.XLimit, err = strconv.Atoi(val)
		case "workers":
			c.Workers, err = strconv.Atoi(val)
		case "percentiles":
			c.Percentiles, err = parseFloats(val)
		default:
			return fmt.Errorf("unknown config key: %s", key)
		}
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}
	return nil
}

// Validate rejects settings the renderer cannot honour
func (c Config) Validate() error {
	spec := percentile.Spec(c.Percentiles)
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("config percentiles: %w", err)
	}
	if len(spec) != 5 {
		return fmt.Errorf("config percentiles: need 5 values, got %d", len(spec))
	}
	for i := 1; i < len(spec); i++ {
		if spec[i] < spec[i-1] {
			return fmt.Errorf("config percentiles: must be ascending, got %v", c.Percentiles)
		}
	}
	if c.ImageFormat != FormatPNG && c.ImageFormat != FormatSVG {
		return fmt.Errorf("unsupported image_format %q (png or svg)", c.ImageFormat)
	}
	if c.WidthInches <= 0 || c.HeightInches <= 0 {
		return fmt.Errorf("chart size must be positive, got %vx%v inches", c.WidthInches, c.HeightInches)
	}
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	if c.XLimit < 0 {
		return fmt.Errorf("x_limit must not be negative, got %d", c.XLimit)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Splits "key=value" at the first '='
func splitOption(arg string) [2]string {
	var kv [2]string
	for i, ch := range arg {
		if ch == '=' {
			kv[0] = arg[:i]
			kv[1] = arg[i+1:]
			return kv
		}
	}
	kv[0] = arg
	kv[1] = ""
	return kv
}
