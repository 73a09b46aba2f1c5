package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// sopsConfig is the subset of .sops.yaml we honor: the first creation
// rule's pgp key overrides gpg keyring discovery.
type sopsConfig struct {
	CreationRules []struct {
		PGP string `yaml:"pgp"`
	} `yaml:"creation_rules"`
}

// GPGKey returns the PGP key used for encryption. A .sops.yaml in the
// vault directory wins; otherwise the first secret key in the gpg keyring
// is used. The result is cached for the lifetime of the Vault.
func (v *Vault) GPGKey() (string, error) {
	if v.gpgKey != "" {
		return v.gpgKey, nil
	}

	if key := v.keyFromSopsConfig(); key != "" {
		v.gpgKey = key
		return key, nil
	}

	key, err := v.keyFromKeyring()
	if err != nil {
		return "", err
	}
	v.gpgKey = key
	return key, nil
}

func (v *Vault) keyFromSopsConfig() string {
	data, err := os.ReadFile(filepath.Join(v.dir, ".sops.yaml"))
	if err != nil {
		return ""
	}

	var cfg sopsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ""
	}
	for _, rule := range cfg.CreationRules {
		if key := strings.TrimSpace(rule.PGP); key != "" {
			// sops accepts a comma-separated list; take the first fingerprint.
			return strings.TrimSpace(strings.SplitN(key, ",", 2)[0])
		}
	}
	return ""
}

// keyFromKeyring parses `gpg --list-secret-keys --keyid-format LONG` for
// the first "sec" line, whose second field looks like "rsa4096/KEYID".
func (v *Vault) keyFromKeyring() (string, error) {
	out, err := v.runner.Output("gpg", "--list-secret-keys", "--keyid-format", "LONG")
	if err != nil {
		return "", fmt.Errorf("listing gpg keys: %w", err)
	}

	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "sec") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		parts := strings.SplitN(fields[1], "/", 2)
		if len(parts) == 2 && parts[1] != "" {
			return parts[1], nil
		}
	}
	return "", fmt.Errorf("no gpg secret key found: run gpg --gen-key")
}
