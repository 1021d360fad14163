package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/domino14/tictactoe/board"
)

const (
	ConfigDebug           = "debug"
	ConfigHumanGlyph      = "human-glyph"
	ConfigAIGlyph         = "ai-glyph"
	ConfigRevealDelay     = "reveal-delay"
	ConfigRandomOpening   = "random-opening"
	ConfigAutoplayThreads = "autoplay-threads"
	ConfigHistoryFile     = "history-file"
	ConfigCPUProfile      = "cpu-profile"
	ConfigMemProfile      = "mem-profile"
	ConfigAliases         = "aliases"
	ConfigDataPath        = "data-path"
)

const (
	envPrefix      = "TICTACTOE"
	configFileName = "config"
	configFileType = "yaml"
)

// Config wraps a viper instance. Precedence, highest first: command-line
// flags, TICTACTOE_* environment variables, the config file, defaults.
type Config struct {
	*viper.Viper

	args []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigHumanGlyph, "X")
	v.SetDefault(ConfigAIGlyph, "")
	v.SetDefault(ConfigRevealDelay, "500ms")
	v.SetDefault(ConfigRandomOpening, false)
	v.SetDefault(ConfigAutoplayThreads, 0)
	v.SetDefault(ConfigHistoryFile, ".tictactoe_history")
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigMemProfile, "")
	v.SetDefault(ConfigAliases, map[string]string{})
	v.SetDefault(ConfigDataPath, "./data")
}

// DefaultConfig returns a config holding only the defaults. Tests use it.
func DefaultConfig() Config {
	v := viper.New()
	setDefaults(v)
	return Config{Viper: v}
}

// Load reads flags from args, then the environment, then the config file in
// the data path if there is one. A relative data path is anchored at basepath
// before the config file is looked up, so the file read is the one Write
// saves to. Arguments that are not flags are kept and returned by
// CommandArgs.
func (c *Config) Load(args []string, basepath string) error {
	c.Viper = viper.New()
	setDefaults(c.Viper)

	fs := pflag.NewFlagSet("tictactoe", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigHumanGlyph, "X", "the glyph the human plays")
	fs.String(ConfigAIGlyph, "", "the glyph the ai plays; derived from the human glyph if empty")
	fs.Duration(ConfigRevealDelay, 500*time.Millisecond, "pause before the ai move is shown")
	fs.Bool(ConfigRandomOpening, false, "the ai opens its rounds on a random cell")
	fs.Int(ConfigAutoplayThreads, 0, "self-play worker count; 0 means one per cpu")
	fs.String(ConfigHistoryFile, ".tictactoe_history", "shell history file, relative to the data path")
	fs.String(ConfigCPUProfile, "", "write a cpu profile to this file")
	fs.String(ConfigMemProfile, "", "write a memory profile to this file")
	fs.String(ConfigDataPath, "./data", "directory holding the config file and shell history")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.args = fs.Args()

	c.SetEnvPrefix(envPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if basepath != "" {
		c.AdjustRelativePaths(basepath)
	}
	c.SetConfigName(configFileName)
	c.SetConfigType(configFileType)
	c.AddConfigPath(c.GetString(ConfigDataPath))
	if err := c.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

// CommandArgs returns the non-flag arguments given to Load.
func (c *Config) CommandArgs() []string {
	return c.args
}

// Write saves the current settings to the config file, creating it in the
// data path if none was read.
func (c *Config) Write() error {
	if used := c.ConfigFileUsed(); used != "" {
		return c.WriteConfigAs(used)
	}
	dir := c.GetString(ConfigDataPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return c.WriteConfigAs(filepath.Join(dir, configFileName+"."+configFileType))
}

// AdjustRelativePaths anchors a relative data path at basepath, normally the
// directory of the executable.
func (c *Config) AdjustRelativePaths(basepath string) {
	dp := c.GetString(ConfigDataPath)
	if !filepath.IsAbs(dp) {
		c.Set(ConfigDataPath, filepath.Join(basepath, dp))
	}
}

// HistoryPath is where the shell keeps its line history.
func (c *Config) HistoryPath() string {
	hf := c.GetString(ConfigHistoryFile)
	if filepath.IsAbs(hf) {
		return hf
	}
	return filepath.Join(c.GetString(ConfigDataPath), hf)
}

// Glyphs returns the display glyphs. Without an explicit ai glyph the ai
// takes whichever of X and O the human did not pick.
func (c *Config) Glyphs() (board.Glyphs, error) {
	g := board.DefaultGlyphs
	g.Human = c.GetString(ConfigHumanGlyph)
	g.AI = c.GetString(ConfigAIGlyph)
	if g.AI == "" {
		g.AI = "O"
		if strings.EqualFold(g.Human, "O") {
			g.AI = "X"
		}
	}
	if err := g.Validate(); err != nil {
		return board.Glyphs{}, err
	}
	return g, nil
}

// SanitizedSettings is AllSettings with the alias table reduced to a count,
// for logging.
func (c *Config) SanitizedSettings() map[string]any {
	s := c.AllSettings()
	if a, ok := s[ConfigAliases]; ok {
		if m, ok := a.(map[string]any); ok {
			s[ConfigAliases] = len(m)
		} else if m, ok := a.(map[string]string); ok {
			s[ConfigAliases] = len(m)
		}
	}
	return s
}

func (c *Config) ToDisplayText() (string, error) {
	out, err := yaml.Marshal(c.SanitizedSettings())
	if err != nil {
		return "", err
	}
	return string(out), nil
}
