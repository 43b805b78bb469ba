package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tessro/bard/internal/config"
	berrors "github.com/tessro/bard/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing bard configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration values, including defaults and environment overrides.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create a new configuration file with default values.`,
	RunE:  runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  catalog.path           Catalog YAML file (empty for the built-in catalog)
  catalog.media_dir      Base directory for relative media paths
  catalog.watch          Reload the catalog when it changes (true/false)
  audio.backend          oto or null
  audio.sample_rate      Output sample rate in Hz
  audio.buffer_ms        Output buffer length
  audio.tick_interval_ms Progress update period (1-250)
  defaults.volume        Starting volume (0-100)
  tui.theme              auto, dark or light
  tui.refresh_interval   Dashboard refresh in milliseconds
  tail.interval          Event poll interval in milliseconds
  log.level              debug, info, warn or error
  log.file               Log file path

Examples:
  bard config set catalog.path ~/campaign/sounds.yaml
  bard config set defaults.volume 50`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetThemeCmd = &cobra.Command{
	Use:   "set-theme",
	Short: "Interactively select the dashboard theme",
	RunE:  runConfigSetTheme,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetThemeCmd)
	rootCmd.AddCommand(configCmd)
}

var (
	intKeys = map[string]bool{
		"audio.sample_rate":      true,
		"audio.buffer_ms":        true,
		"audio.tick_interval_ms": true,
		"defaults.volume":        true,
		"tui.refresh_interval":   true,
		"tail.interval":          true,
	}
	boolKeys = map[string]bool{
		"catalog.watch": true,
	}
	stringKeys = map[string]bool{
		"catalog.path":      true,
		"catalog.media_dir": true,
		"audio.backend":     true,
		"tui.theme":         true,
		"log.level":         true,
		"log.file":          true,
	}
)

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(cfg)
	}

	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := getConfigPath()
	_, err := os.Stat(path)
	exists := err == nil

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"path":   path,
			"exists": exists,
		})
	}
	if exists {
		fmt.Println(path)
	} else {
		fmt.Printf("%s (not created yet)\n", path)
	}
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("%w at %s", berrors.ErrConfigNotFound, configPath)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	if err := writeConfig(configPath, config.Default()); err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	}
	fmt.Printf("Created config file: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Point catalog.path at your catalog YAML, or keep the built-in one")
	fmt.Println("  2. Run 'bard tracks' to check that your media files are found")
	return nil
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := config.FindConfigFile(); p != "" {
		return p
	}
	return config.DefaultPath()
}

// writeConfig encodes v as TOML with a header comment.
func writeConfig(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# Bard Configuration\n\n")
	encoder := toml.NewEncoder(&buf)
	encoder.Indent = "  "
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// parseValue converts value to the TOML type key expects.
func parseValue(key, value string) (any, error) {
	switch {
	case intKeys[key]:
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("value must be an integer for %s", key)
		}
		return i, nil
	case boolKeys[key]:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("value must be true or false for %s", key)
		}
		return b, nil
	case stringKeys[key]:
		return value, nil
	default:
		return nil, fmt.Errorf("%w: unknown key %q", berrors.ErrInvalidConfig, key)
	}
}

// setConfigValue applies key=value to the TOML document in data and returns
// the updated document. The result must still pass validation.
func setConfigValue(data []byte, key, value string) (map[string]any, error) {
	typed, err := parseValue(key, value)
	if err != nil {
		return nil, err
	}

	raw := make(map[string]any)
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	section, field, _ := strings.Cut(key, ".")
	sectionMap, ok := raw[section].(map[string]any)
	if !ok {
		sectionMap = make(map[string]any)
		raw[section] = sectionMap
	}
	sectionMap[field] = typed

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return nil, err
	}
	check := &config.Config{}
	if _, err := toml.Decode(buf.String(), check); err != nil {
		return nil, err
	}
	check.ApplyDefaults()
	if err := check.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", berrors.ErrInvalidConfig, err)
	}
	return raw, nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	configPath := getConfigPath()

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w at %s", berrors.ErrConfigNotFound, configPath)
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	raw, err := setConfigValue(data, key, value)
	if err != nil {
		return err
	}
	if err := writeConfig(configPath, raw); err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

func runConfigSetTheme(cmd *cobra.Command, args []string) error {
	selected := cfg.TUI.Theme
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select dashboard theme").
				Description("auto follows the terminal background").
				Options(
					huh.NewOption("Auto", "auto"),
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("selection cancelled: %w", err)
	}

	return runConfigSet(cmd, []string{"tui.theme", selected})
}
