// Package config loads the small set of external configuration inputs a
// running client needs: the device server address, cache capacity, and
// the cipher toggle. Grounded on the teacher's own use of
// gopkg.in/ini.v1 (there used to parse EDS device-description files) but
// repurposed to a plain key/value session config file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

// Config is lcloud's external configuration surface.
type Config struct {
	Address       string // device server host:port
	CacheCapacity int    // max blocks held in the shared cache
	Encrypted     bool   // enable AES-128-CBC payload encryption
}

// Defaults returns the configuration used when no file or overrides are
// supplied.
func Defaults() Config {
	return Config{
		Address:       "127.0.0.1:3333",
		CacheCapacity: 64,
		Encrypted:     false,
	}
}

// Load reads path (an INI file with a single [lcloud] section: address,
// cache_capacity, encrypted) and overlays it on top of Defaults(). A
// missing file is not an error -- Defaults() is returned unchanged -- but
// a malformed file is.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	file, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	section := file.Section("lcloud")
	if section.HasKey("address") {
		cfg.Address = section.Key("address").String()
	}
	if section.HasKey("cache_capacity") {
		n, err := section.Key("cache_capacity").Int()
		if err != nil {
			return Config{}, fmt.Errorf("parse cache_capacity: %w", err)
		}
		cfg.CacheCapacity = n
	}
	if section.HasKey("encrypted") {
		cfg.Encrypted = section.Key("encrypted").MustBool(false)
	}
	return cfg, applyEnvOverrides(&cfg)
}

// applyEnvOverrides lets LCLOUD_ADDRESS / LCLOUD_ENCRYPTED win over the
// file (the cache capacity has no environment override), matching the teacher's own
// examples/cmd binaries reading connection parameters from the
// environment ahead of any config file.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LCLOUD_ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := os.Getenv("LCLOUD_ENCRYPTED"); v != "" {
		cfg.Encrypted = v == "1" || v == "true"
	}
	return nil
}
