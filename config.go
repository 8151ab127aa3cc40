package folio

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultConfigFile is read when no config file is given explicitly.
const DefaultConfigFile = "folio.yaml"

type Lightbox struct {
	TouchNavigation bool   `mapstructure:"touch_navigation" json:"touchNavigation"`
	Loop            bool   `mapstructure:"loop" json:"loop"`
	SlideEffect     string `mapstructure:"slide_effect" json:"slideEffect"`
	MoreLength      int    `mapstructure:"more_length" json:"moreLength"`
}

type Config struct {
	// Theme names the site in diagnostics and on the error page.
	Theme string `mapstructure:"theme"`
	// ThemePath is the URL prefix the theme files are served under.
	ThemePath string `mapstructure:"theme_path"`
	Source    string `mapstructure:"source"`
	Git       bool   `mapstructure:"git"`
	Branch    string `mapstructure:"branch"`

	Bind    string `mapstructure:"bind"`
	Network string `mapstructure:"network"`
	Debug   bool   `mapstructure:"debug"`
	OutDir  string `mapstructure:"out_dir"`

	// Unsafe disables sanitizing of articles and sections.
	Unsafe bool `mapstructure:"unsafe"`
	// SanitizeSections runs descriptor section content through the UGC
	// policy. Section content is trusted as is otherwise.
	SanitizeSections bool `mapstructure:"sanitize_sections"`

	ProfileImage   string   `mapstructure:"profile_image"`
	ProfileAlt     string   `mapstructure:"profile_alt"`
	HeroBackground int      `mapstructure:"hero_background"`
	Lightbox       Lightbox `mapstructure:"lightbox"`
}

func DefaultConfig() Config {
	return Config{
		ThemePath:      "data",
		Source:         "data",
		Branch:         "master",
		Bind:           "localhost:8080",
		Network:        "tcp",
		OutDir:         "public",
		ProfileImage:   "profile.jpg",
		HeroBackground: 2,
		Lightbox: Lightbox{
			TouchNavigation: true,
			Loop:            true,
			SlideEffect:     "slide",
			MoreLength:      0,
		},
	}
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"source": "source",
	"theme":  "theme",
	"git":    "git",
	"branch": "branch",
	"debug":  "debug",
	"bind":   "bind",
	"net":    "network",
	"out":    "out_dir",
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("theme", d.Theme)
	v.SetDefault("theme_path", d.ThemePath)
	v.SetDefault("source", d.Source)
	v.SetDefault("git", d.Git)
	v.SetDefault("branch", d.Branch)
	v.SetDefault("bind", d.Bind)
	v.SetDefault("network", d.Network)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("out_dir", d.OutDir)
	v.SetDefault("unsafe", d.Unsafe)
	v.SetDefault("sanitize_sections", d.SanitizeSections)
	v.SetDefault("profile_image", d.ProfileImage)
	v.SetDefault("profile_alt", d.ProfileAlt)
	v.SetDefault("hero_background", d.HeroBackground)
	v.SetDefault("lightbox.touch_navigation", d.Lightbox.TouchNavigation)
	v.SetDefault("lightbox.loop", d.Lightbox.Loop)
	v.SetDefault("lightbox.slide_effect", d.Lightbox.SlideEffect)
	v.SetDefault("lightbox.more_length", d.Lightbox.MoreLength)
}

// LoadConfig layers the defaults, the yaml file at path, FOLIO_* environment
// variables and the changed flags of fs, in increasing precedence. A missing
// file is only an error if path was given explicitly. fs may be nil.
func LoadConfig(path string, fs *pflag.FlagSet) (Config, error) {
	var cfg Config

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(strings.TrimSuffix(DefaultConfigFile, ".yaml"))
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return cfg, errors.Wrapf(err, "Cannot bind flag: %q", name)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return cfg, errors.Wrapf(err, "Cannot read config file: %q", path)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "Cannot decode config")
	}
	cfg.ThemePath = strings.Trim(cfg.ThemePath, "/")
	return cfg, nil
}
