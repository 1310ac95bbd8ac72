package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// EmailSourceConfig holds the optional IMAP mailbox source settings.
type EmailSourceConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
}

// RelayConfig holds the remote message relay endpoint settings. The
// API key itself lives in the system keyring (or NOTEFLOW_API_KEY),
// not in the config file.
type RelayConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// NamingSettings is the on-disk shape of the naming policy.
type NamingSettings struct {
	Rule           string `mapstructure:"rule" yaml:"rule"`
	FixedPattern   string `mapstructure:"fixed_pattern" yaml:"fixed_pattern"`
	ConflictPolicy string `mapstructure:"conflict_policy" yaml:"conflict_policy"`
	InsertPosition string `mapstructure:"insert_position" yaml:"insert_position"`
	SaveFolder     string `mapstructure:"save_folder" yaml:"save_folder"`
	ContentPrefix  string `mapstructure:"content_prefix" yaml:"content_prefix"`
	ContentSuffix  string `mapstructure:"content_suffix" yaml:"content_suffix"`
	TemplateName   string `mapstructure:"template_name" yaml:"template_name"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// VaultPath is the root directory of the markdown vault.
	VaultPath string `mapstructure:"vault_path" yaml:"vault_path"`

	// AttachmentFolder mirrors the host storage convention for asset
	// placement: "./", "/", "./subfolder", or an absolute subfolder.
	AttachmentFolder string `mapstructure:"attachment_folder" yaml:"attachment_folder"`

	// LedgerPath is the SQLite ingestion ledger location.
	LedgerPath string `mapstructure:"ledger_path" yaml:"ledger_path"`

	// PollIntervalSec is how often (in seconds) the poller runs.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`

	Naming NamingSettings    `mapstructure:"naming" yaml:"naming"`
	Relay  RelayConfig       `mapstructure:"relay" yaml:"relay"`
	Email  EmailSourceConfig `mapstructure:"email" yaml:"email"`
}

// NamingConfig converts the on-disk settings into the closed-variant
// policy value handed to the ingestion components. Unrecognized
// strings resolve to the defaults the settings UI would have saved
// (append mode, insert at end, mm-dd naming).
func (c *AppConfig) NamingConfig() NamingConfig {
	cfg := NamingConfig{
		Rule:           RuleDateMD,
		ConflictPolicy: ConflictAppend,
		InsertPosition: InsertEnd,
		FixedPattern:   c.Naming.FixedPattern,
		SaveFolder:     c.Naming.SaveFolder,
		ContentPrefix:  c.Naming.ContentPrefix,
		ContentSuffix:  c.Naming.ContentSuffix,
		TemplateName:   c.Naming.TemplateName,
	}
	switch NamingRule(c.Naming.Rule) {
	case RuleDateYMD, RuleDateMD, RuleContent, RuleFixed:
		cfg.Rule = NamingRule(c.Naming.Rule)
	}
	if ConflictPolicy(c.Naming.ConflictPolicy) == ConflictNew {
		cfg.ConflictPolicy = ConflictNew
	}
	if InsertPosition(c.Naming.InsertPosition) == InsertBeginning {
		cfg.InsertPosition = InsertBeginning
	}
	return cfg
}

// DefaultConfigPath returns the default path for the configuration
// file, located at ~/.config/noteflow/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "noteflow", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	home, _ := os.UserHomeDir()
	return &AppConfig{
		VaultPath:        filepath.Join(home, "vault"),
		AttachmentFolder: "./",
		LedgerPath:       filepath.Join(home, ".config", "noteflow", "ledger.db"),
		PollIntervalSec:  60,
		Naming: NamingSettings{
			Rule:           string(RuleDateMD),
			ConflictPolicy: string(ConflictAppend),
			InsertPosition: string(InsertEnd),
			SaveFolder:     "/",
		},
		Relay: RelayConfig{
			BaseURL: "https://wechatobsidian.com",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, it returns a default
// configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	def := defaultAppConfig()
	v.SetDefault("vault_path", def.VaultPath)
	v.SetDefault("attachment_folder", def.AttachmentFolder)
	v.SetDefault("ledger_path", def.LedgerPath)
	v.SetDefault("poll_interval_sec", def.PollIntervalSec)
	v.SetDefault("naming.rule", def.Naming.Rule)
	v.SetDefault("naming.conflict_policy", def.Naming.ConflictPolicy)
	v.SetDefault("naming.insert_position", def.Naming.InsertPosition)
	v.SetDefault("naming.save_folder", def.Naming.SaveFolder)
	v.SetDefault("relay.base_url", def.Relay.BaseURL)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return def, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return def, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.PollIntervalSec <= 0 {
		cfg.PollIntervalSec = def.PollIntervalSec
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("vault_path", cfg.VaultPath)
	v.Set("attachment_folder", cfg.AttachmentFolder)
	v.Set("ledger_path", cfg.LedgerPath)
	v.Set("poll_interval_sec", cfg.PollIntervalSec)
	v.Set("naming", cfg.Naming)
	v.Set("relay", cfg.Relay)
	v.Set("email", cfg.Email)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
