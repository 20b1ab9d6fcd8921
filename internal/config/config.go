package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qsc20001102/KingSCADA-Tag/internal/types"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Input      InputConfig      `mapstructure:"input"`
	Output     OutputConfig     `mapstructure:"output"`
	Generation GenerationConfig `mapstructure:"generation"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// InputConfig names the device inventory and the point template. The
// template is either an explicit file or a device type + name looked up in
// TemplatePaths.
type InputConfig struct {
	Devices       string   `mapstructure:"devices"`
	Template      string   `mapstructure:"template"`
	DeviceType    string   `mapstructure:"device_type"`
	TemplateName  string   `mapstructure:"template_name"`
	TemplatePaths []string `mapstructure:"template_paths"`
}

type OutputConfig struct {
	Path   string `mapstructure:"path"`
	Layout string `mapstructure:"layout"`
}

type GenerationConfig struct {
	types.UserConfig `mapstructure:",squash"`
	UnknownDataType  string `mapstructure:"unknown_data_type"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"devices":           "input.devices",
	"template":          "input.template",
	"device-type":       "input.device_type",
	"template-name":     "input.template_name",
	"template-path":     "input.template_paths",
	"output":            "output.path",
	"layout":            "output.layout",
	"start-id":          "generation.start_id",
	"ip":                "generation.ip",
	"device-name":       "generation.device_name",
	"group-name":        "generation.group_name",
	"protocol":          "generation.protocol_family",
	"db":                "generation.db_number",
	"link":              "generation.link_type",
	"link-com":          "generation.link_com_port",
	"link-ip":           "generation.link_ip",
	"channel-driver":    "generation.channel_driver",
	"device-series":     "generation.device_series",
	"unknown-data-type": "generation.unknown_data_type",
	"log-level":         "logging.level",
	"log-file":          "logging.file",
}

// RegisterFlags adds every overridable setting to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("devices", "", "device inventory CSV")
	fs.String("template", "", "point template file (CSV or YAML)")
	fs.String("device-type", "", "template catalogue device type")
	fs.String("template-name", "", "template name within the device type")
	fs.StringSlice("template-path", nil, "template catalogue search paths")
	fs.StringP("output", "o", "", "output CSV path")
	fs.String("layout", "", "output layout: kingscada, named, legacy or basic")
	fs.Int("start-id", 0, "first TagID")
	fs.String("ip", "", "device IP")
	fs.String("device-name", "", "KingSCADA device name")
	fs.String("group-name", "", "tag group name")
	fs.String("protocol", "", "protocol family: S7-300, S7-1200, S7-1500, AB, Other")
	fs.String("db", "", "S7 data block number")
	fs.String("link", "", "link type: COM, Ethernet, Other")
	fs.String("link-com", "", "COM port number")
	fs.String("link-ip", "", "Ethernet link IP")
	fs.String("channel-driver", "", "channel driver")
	fs.String("device-series", "", "device series")
	fs.String("unknown-data-type", "", "unknown template data types: disc or reject")
	fs.String("log-level", "", "log level")
	fs.String("log-file", "", "additional log file")
}

// Load reads path (optional), then KSTAG_* environment variables, then any
// flags that were set explicitly.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("input.template_paths", []string{"templates"})
	v.SetDefault("output.path", "output/generated_tags.csv")
	v.SetDefault("output.layout", "kingscada")
	v.SetDefault("generation.start_id", 1)
	v.SetDefault("generation.ip", "")
	v.SetDefault("generation.device_name", "")
	v.SetDefault("generation.group_name", "")
	v.SetDefault("generation.protocol_family", string(types.ProtocolS71200))
	v.SetDefault("generation.db_number", "")
	v.SetDefault("generation.link_type", string(types.LinkOther))
	v.SetDefault("generation.link_com_port", "")
	v.SetDefault("generation.link_ip", "")
	v.SetDefault("generation.channel_driver", "")
	v.SetDefault("generation.device_series", "")
	v.SetDefault("generation.unknown_data_type", "disc")
	v.SetDefault("input.devices", "")
	v.SetDefault("input.template", "")
	v.SetDefault("input.device_type", "")
	v.SetDefault("input.template_name", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")

	v.SetEnvPrefix("KSTAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Validate checks that the inputs needed for a run are named.
func (c *Config) Validate() error {
	var errs []error
	if c.Input.Devices == "" {
		errs = append(errs, errors.New("input.devices is required"))
	}
	if c.Input.Template == "" && (c.Input.DeviceType == "" || c.Input.TemplateName == "") {
		errs = append(errs, errors.New("input.template or input.device_type with input.template_name is required"))
	}
	if c.Output.Path == "" {
		errs = append(errs, errors.New("output.path is required"))
	}
	return errors.Join(errs...)
}

// UsesCatalog reports whether the template comes from the search paths.
func (i InputConfig) UsesCatalog() bool {
	return i.Template == ""
}
