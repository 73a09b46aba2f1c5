package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ravik/cct/internal/events"
	"github.com/ravik/cct/internal/logger"
	"github.com/ravik/cct/internal/terminal"
	"github.com/ravik/cct/internal/vault"
)

var (
	vaultForce bool
	syncPush   bool
	syncPull   bool
)

func openVault() *vault.Vault {
	return vault.New(cfg.VaultPath(), vault.ExecCommandRunner{}, terminal.Confirm)
}

func projectDir(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return dir, nil
}

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Keep sops/gpg-encrypted backups of per-project .env files",
	Long: `Each project's .env is stored encrypted in a central vault directory,
named after the project directory. Sync direction is decided by comparing
file modification times; --push and --pull override it.`,
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt [project-dir]",
	Short: "Encrypt the project's .env into the vault",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := projectDir(args)
		if err != nil {
			return err
		}

		v := openVault()
		if err := v.Encrypt(dir, vaultForce); err != nil {
			if errors.Is(err, vault.ErrAborted) {
				warnColor.Println("Aborted.")
				return nil
			}
			return err
		}

		if err := auditLog.LogVault(events.EventVaultEncrypt, dir, ""); err != nil {
			logger.Warn("audit log write failed", "error", err)
		}
		successColor.Printf("Encrypted .env to %s\n", v.BackupPath(dir))
		return nil
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt [project-dir]",
	Short: "Restore the project's .env from the vault",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := projectDir(args)
		if err != nil {
			return err
		}

		v := openVault()
		if err := v.Decrypt(dir, vaultForce); err != nil {
			if errors.Is(err, vault.ErrAborted) {
				warnColor.Println("Aborted.")
				return nil
			}
			return err
		}

		if err := auditLog.LogVault(events.EventVaultDecrypt, dir, ""); err != nil {
			logger.Warn("audit log write failed", "error", err)
		}
		successColor.Println("Decrypted .env from vault")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [project-dir]",
	Short: "Show the sync state between local .env and vault backup",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := projectDir(args)
		if err != nil {
			return err
		}

		st, err := openVault().Status(dir)
		if err != nil {
			return err
		}

		headerColor.Printf("Project: %s\n", st.Project)
		fmt.Printf("Local:   %s", st.EnvPath)
		if st.EnvModTime.IsZero() {
			dimColor.Println("  (missing)")
		} else {
			fmt.Printf("  (%s)\n", st.EnvModTime.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("Vault:   %s", st.BackupPath)
		if st.BackupModTime.IsZero() {
			dimColor.Println("  (missing)")
		} else {
			fmt.Printf("  (%s)\n", st.BackupModTime.Format("2006-01-02 15:04:05"))
		}

		switch st.State {
		case vault.StateIdentical:
			successColor.Println("State:   in sync")
		case vault.StateNeither:
			warnColor.Println("State:   nothing to sync")
		default:
			warnColor.Printf("State:   %s\n", st.State)
		}
		return nil
	},
}

var vaultListCmd = &cobra.Command{
	Use:   "list",
	Short: "List encrypted backups in the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		backups, err := openVault().List()
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Println("Vault is empty.")
			return nil
		}

		headerColor.Println("PROJECT               SIZE     MODIFIED")
		for _, b := range backups {
			fmt.Printf("%-21s %-8d %s\n", b.Name, b.Size, b.ModTime.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync [project-dir]",
	Short: "Sync .env with the vault in whichever direction is newer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncPush && syncPull {
			return fmt.Errorf("--push and --pull are mutually exclusive")
		}
		direction := vault.DirectionAuto
		if syncPush {
			direction = vault.DirectionPush
		}
		if syncPull {
			direction = vault.DirectionPull
		}

		dir, err := projectDir(args)
		if err != nil {
			return err
		}

		action, err := openVault().Sync(dir, direction)
		if err != nil {
			if errors.Is(err, vault.ErrAborted) {
				warnColor.Println("Aborted.")
				return nil
			}
			return err
		}

		if err := auditLog.LogVault(events.EventVaultSync, dir, string(action)); err != nil {
			logger.Warn("audit log write failed", "error", err)
		}
		switch action {
		case vault.ActionNone:
			fmt.Println("Already in sync.")
		case vault.ActionEncrypted:
			successColor.Println("Pushed local .env to vault.")
		case vault.ActionDecrypted:
			successColor.Println("Pulled .env from vault.")
		}
		return nil
	},
}

func init() {
	encryptCmd.Flags().BoolVarP(&vaultForce, "force", "f", false, "overwrite without asking")
	decryptCmd.Flags().BoolVarP(&vaultForce, "force", "f", false, "overwrite without asking")
	syncCmd.Flags().BoolVar(&syncPush, "push", false, "force local -> vault")
	syncCmd.Flags().BoolVar(&syncPull, "pull", false, "force vault -> local")

	vaultCmd.AddCommand(encryptCmd, decryptCmd, statusCmd, vaultListCmd, syncCmd)
}
