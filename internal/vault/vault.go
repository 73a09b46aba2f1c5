// Package vault keeps encrypted backups of per-project .env files in a
// central directory, using sops with a PGP key. Sync direction is decided
// by comparing file modification times.
package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrAborted is returned when the user declines a confirmation prompt.
var ErrAborted = errors.New("aborted")

// State classifies the relationship between the local .env and its backup.
type State string

const (
	StateIdentical  State = "identical"
	StateLocalOnly  State = "local_only"
	StateVaultOnly  State = "vault_only"
	StateLocalNewer State = "local_newer"
	StateVaultNewer State = "vault_newer"
	StateNeither    State = "neither"
)

// Direction forces a sync direction against the timestamp decision.
type Direction string

const (
	DirectionAuto Direction = ""
	DirectionPush Direction = "push"
	DirectionPull Direction = "pull"
)

// Action is what Sync ended up doing.
type Action string

const (
	ActionNone      Action = "none"
	ActionEncrypted Action = "encrypted"
	ActionDecrypted Action = "decrypted"
)

// Status describes the sync state for one project.
type Status struct {
	State         State
	Project       string
	EnvPath       string
	BackupPath    string
	EnvModTime    time.Time
	BackupModTime time.Time
}

// Backup is one encrypted file in the vault.
type Backup struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// ConfirmFunc asks the user a yes/no question. The default answer is used
// when no terminal is attached.
type ConfirmFunc func(prompt string, def bool) bool

// Vault is a directory of sops-encrypted dotenv backups.
type Vault struct {
	dir     string
	runner  CommandRunner
	confirm ConfirmFunc
	now     func() time.Time

	gpgKey string // cached after first lookup
}

func New(dir string, runner CommandRunner, confirm ConfirmFunc) *Vault {
	if confirm == nil {
		confirm = func(string, bool) bool { return false }
	}
	return &Vault{
		dir:     dir,
		runner:  runner,
		confirm: confirm,
		now:     time.Now,
	}
}

// Dir returns the vault directory.
func (v *Vault) Dir() string { return v.dir }

// EnsureDir creates the vault directory if missing.
func (v *Vault) EnsureDir() error {
	return os.MkdirAll(v.dir, 0700)
}

// BackupPath returns the encrypted file path for a project directory.
func (v *Vault) BackupPath(projectDir string) string {
	return filepath.Join(v.dir, filepath.Base(projectDir)+".env.encrypt")
}

// Status stats both sides and classifies them.
func (v *Vault) Status(projectDir string) (Status, error) {
	st := Status{
		Project:    filepath.Base(projectDir),
		EnvPath:    filepath.Join(projectDir, ".env"),
		BackupPath: v.BackupPath(projectDir),
	}

	envInfo, envErr := os.Stat(st.EnvPath)
	backupInfo, backupErr := os.Stat(st.BackupPath)

	envExists := envErr == nil
	backupExists := backupErr == nil
	if envErr != nil && !os.IsNotExist(envErr) {
		return st, fmt.Errorf("stat %s: %w", st.EnvPath, envErr)
	}
	if backupErr != nil && !os.IsNotExist(backupErr) {
		return st, fmt.Errorf("stat %s: %w", st.BackupPath, backupErr)
	}

	switch {
	case envExists && backupExists:
		st.EnvModTime = envInfo.ModTime()
		st.BackupModTime = backupInfo.ModTime()
		switch {
		case st.EnvModTime.After(st.BackupModTime):
			st.State = StateLocalNewer
		case st.BackupModTime.After(st.EnvModTime):
			st.State = StateVaultNewer
		default:
			st.State = StateIdentical
		}
	case envExists:
		st.EnvModTime = envInfo.ModTime()
		st.State = StateLocalOnly
	case backupExists:
		st.BackupModTime = backupInfo.ModTime()
		st.State = StateVaultOnly
	default:
		st.State = StateNeither
	}

	return st, nil
}

// Encrypt writes projectDir/.env to the vault. An existing backup needs
// force or confirmation, and is renamed aside before being replaced.
func (v *Vault) Encrypt(projectDir string, force bool) error {
	envPath := filepath.Join(projectDir, ".env")
	if _, err := os.Stat(envPath); err != nil {
		return fmt.Errorf(".env not found in %s", projectDir)
	}

	if err := v.EnsureDir(); err != nil {
		return fmt.Errorf("creating vault dir: %w", err)
	}

	backupPath := v.BackupPath(projectDir)
	if _, err := os.Stat(backupPath); err == nil {
		if !force && !v.confirm("Encrypted backup already exists. Overwrite?", false) {
			return ErrAborted
		}
		saved := backupPath + ".backup-" + v.timestamp()
		if err := os.Rename(backupPath, saved); err != nil {
			return fmt.Errorf("saving previous backup: %w", err)
		}
	}

	key, err := v.GPGKey()
	if err != nil {
		return err
	}

	err = v.runner.OutputToFile(backupPath, "sops",
		"--encrypt",
		"--pgp", key,
		"--input-type", "dotenv",
		"--output-type", "dotenv",
		envPath)
	if err != nil {
		return fmt.Errorf("encrypting %s: %w", envPath, err)
	}
	return nil
}

// Decrypt restores projectDir/.env from the vault. A newer local .env needs
// force or confirmation; any existing .env is renamed aside first.
func (v *Vault) Decrypt(projectDir string, force bool) error {
	backupPath := v.BackupPath(projectDir)
	if _, err := os.Stat(backupPath); err != nil {
		return fmt.Errorf("no backup found at %s", backupPath)
	}

	envPath := filepath.Join(projectDir, ".env")
	if envInfo, err := os.Stat(envPath); err == nil {
		if backupInfo, err := os.Stat(backupPath); err == nil {
			if envInfo.ModTime().After(backupInfo.ModTime()) && !force &&
				!v.confirm("Local .env is newer than the backup. Overwrite it?", false) {
				return ErrAborted
			}
		}
		saved := envPath + ".backup-" + v.timestamp()
		if err := os.Rename(envPath, saved); err != nil {
			return fmt.Errorf("saving current .env: %w", err)
		}
	}

	err := v.runner.OutputToFile(envPath, "sops",
		"--decrypt",
		"--input-type", "dotenv",
		"--output-type", "dotenv",
		backupPath)
	if err != nil {
		return fmt.Errorf("decrypting %s: %w", backupPath, err)
	}
	return nil
}

// Sync applies the decision table. The timestamp comparison already guards
// the in-grain direction, so no second confirmation is asked for it; forcing
// against the grain asks.
func (v *Vault) Sync(projectDir string, direction Direction) (Action, error) {
	st, err := v.Status(projectDir)
	if err != nil {
		return ActionNone, err
	}

	switch st.State {
	case StateIdentical:
		return ActionNone, nil

	case StateLocalOnly:
		return ActionEncrypted, v.Encrypt(projectDir, true)

	case StateVaultOnly:
		return ActionDecrypted, v.Decrypt(projectDir, true)

	case StateLocalNewer:
		if direction == DirectionPull {
			if !v.confirm("Local .env is newer but --pull requested. Overwrite local .env?", false) {
				return ActionNone, ErrAborted
			}
			return ActionDecrypted, v.Decrypt(projectDir, true)
		}
		return ActionEncrypted, v.Encrypt(projectDir, true)

	case StateVaultNewer:
		if direction == DirectionPush {
			if !v.confirm("Backup is newer but --push requested. Overwrite backup?", false) {
				return ActionNone, ErrAborted
			}
			return ActionEncrypted, v.Encrypt(projectDir, true)
		}
		return ActionDecrypted, v.Decrypt(projectDir, true)

	default:
		return ActionNone, fmt.Errorf("neither .env nor backup exists for %s", st.Project)
	}
}

// List enumerates encrypted backups, sorted by name.
func (v *Vault) List() ([]Backup, error) {
	entries, err := filepath.Glob(filepath.Join(v.dir, "*.env.encrypt"))
	if err != nil {
		return nil, fmt.Errorf("listing vault: %w", err)
	}
	sort.Strings(entries)

	var backups []Backup
	for _, path := range entries {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		backups = append(backups, Backup{
			Name:    strings.TrimSuffix(filepath.Base(path), ".env.encrypt"),
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return backups, nil
}

func (v *Vault) timestamp() string {
	return v.now().Format("20060102_150405")
}
