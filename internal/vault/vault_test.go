package vault

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const gpgListing = `/home/user/.gnupg/pubring.kbx
-----------------------------
sec   rsa4096/ABCDEF1234567890 2024-01-01 [SC]
      FINGERPRINTFINGERPRINTFINGERPRINT
uid                 [ultimate] Test User <test@example.com>
ssb   rsa4096/0987654321FEDCBA 2024-01-01 [E]
`

// mockRunner records invocations and fakes sops/gpg output.
type mockRunner struct {
	calls   [][]string
	gpgOut  string
	gpgErr  error
	fileOut string
	fileErr error
}

func (m *mockRunner) Output(name string, args ...string) (string, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	return m.gpgOut, m.gpgErr
}

func (m *mockRunner) OutputToFile(dest, name string, args ...string) error {
	m.calls = append(m.calls, append([]string{name}, args...))
	if m.fileErr != nil {
		return m.fileErr
	}
	return os.WriteFile(dest, []byte(m.fileOut), 0600)
}

func (m *mockRunner) callFor(name string) []string {
	for _, c := range m.calls {
		if c[0] == name {
			return c
		}
	}
	return nil
}

func newTestVault(t *testing.T, confirm ConfirmFunc) (*Vault, *mockRunner, string) {
	t.Helper()
	runner := &mockRunner{gpgOut: gpgListing, fileOut: "SECRET=enc"}
	dir := t.TempDir()
	v := New(filepath.Join(dir, "vault"), runner, confirm)
	return v, runner, dir
}

func writeFileAt(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if !mtime.IsZero() {
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}
}

func TestStatus_LocalOnly(t *testing.T) {
	v, _, dir := newTestVault(t, nil)
	project := filepath.Join(dir, "myproj")
	writeFileAt(t, filepath.Join(project, ".env"), "A=1", time.Time{})

	st, err := v.Status(project)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if st.State != StateLocalOnly {
		t.Errorf("expected local_only, got %s", st.State)
	}
	if st.Project != "myproj" {
		t.Errorf("expected project myproj, got %q", st.Project)
	}
}

func TestStatus_VaultOnly(t *testing.T) {
	v, _, dir := newTestVault(t, nil)
	project := filepath.Join(dir, "myproj")
	if err := os.MkdirAll(project, 0755); err != nil {
		t.Fatal(err)
	}
	writeFileAt(t, v.BackupPath(project), "enc", time.Time{})

	st, err := v.Status(project)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if st.State != StateVaultOnly {
		t.Errorf("expected vault_only, got %s", st.State)
	}
}

func TestStatus_LocalNewerAndVaultNewer(t *testing.T) {
	v, _, dir := newTestVault(t, nil)
	project := filepath.Join(dir, "myproj")
	old := time.Now().Add(-time.Hour)
	recent := time.Now()

	writeFileAt(t, filepath.Join(project, ".env"), "A=1", recent)
	writeFileAt(t, v.BackupPath(project), "enc", old)

	st, _ := v.Status(project)
	if st.State != StateLocalNewer {
		t.Errorf("expected local_newer, got %s", st.State)
	}

	writeFileAt(t, filepath.Join(project, ".env"), "A=1", old)
	writeFileAt(t, v.BackupPath(project), "enc", recent)

	st, _ = v.Status(project)
	if st.State != StateVaultNewer {
		t.Errorf("expected vault_newer, got %s", st.State)
	}
}

func TestStatus_Neither(t *testing.T) {
	v, _, dir := newTestVault(t, nil)
	project := filepath.Join(dir, "empty")
	if err := os.MkdirAll(project, 0755); err != nil {
		t.Fatal(err)
	}

	st, err := v.Status(project)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if st.State != StateNeither {
		t.Errorf("expected neither, got %s", st.State)
	}
}

func TestEncrypt_InvokesSopsWithKey(t *testing.T) {
	v, runner, dir := newTestVault(t, nil)
	project := filepath.Join(dir, "myproj")
	writeFileAt(t, filepath.Join(project, ".env"), "A=1", time.Time{})

	if err := v.Encrypt(project, false); err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	sops := runner.callFor("sops")
	if sops == nil {
		t.Fatal("expected a sops invocation")
	}
	joined := strings.Join(sops, " ")
	if !strings.Contains(joined, "--encrypt") || !strings.Contains(joined, "--pgp ABCDEF1234567890") {
		t.Errorf("unexpected sops args %q", joined)
	}
	if !strings.Contains(joined, "--input-type dotenv") {
		t.Errorf("expected dotenv input type in %q", joined)
	}

	if _, err := os.Stat(v.BackupPath(project)); err != nil {
		t.Errorf("expected backup file to exist: %v", err)
	}
}

func TestEncrypt_MissingEnv(t *testing.T) {
	v, _, dir := newTestVault(t, nil)
	project := filepath.Join(dir, "myproj")
	if err := os.MkdirAll(project, 0755); err != nil {
		t.Fatal(err)
	}

	if err := v.Encrypt(project, false); err == nil {
		t.Error("expected error when .env is missing")
	}
}

func TestEncrypt_ExistingBackupDeclined(t *testing.T) {
	declined := func(string, bool) bool { return false }
	v, _, dir := newTestVault(t, declined)
	project := filepath.Join(dir, "myproj")
	writeFileAt(t, filepath.Join(project, ".env"), "A=1", time.Time{})
	writeFileAt(t, v.BackupPath(project), "old-enc", time.Time{})

	err := v.Encrypt(project, false)
	if !errors.Is(err, ErrAborted) {
		t.Errorf("expected ErrAborted, got %v", err)
	}
}

func TestEncrypt_ExistingBackupSavedAside(t *testing.T) {
	v, _, dir := newTestVault(t, nil)
	project := filepath.Join(dir, "myproj")
	writeFileAt(t, filepath.Join(project, ".env"), "A=1", time.Time{})
	writeFileAt(t, v.BackupPath(project), "old-enc", time.Time{})

	if err := v.Encrypt(project, true); err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	saved, _ := filepath.Glob(v.BackupPath(project) + ".backup-*")
	if len(saved) != 1 {
		t.Fatalf("expected one saved backup, got %v", saved)
	}
	data, _ := os.ReadFile(saved[0])
	if string(data) != "old-enc" {
		t.Errorf("saved backup should hold previous content, got %q", data)
	}
}

func TestDecrypt_NoBackup(t *testing.T) {
	v, _, dir := newTestVault(t, nil)
	project := filepath.Join(dir, "myproj")
	if err := os.MkdirAll(project, 0755); err != nil {
		t.Fatal(err)
	}

	if err := v.Decrypt(project, false); err == nil {
		t.Error("expected error when no backup exists")
	}
}

func TestDecrypt_SavesCurrentEnvAside(t *testing.T) {
	v, _, dir := newTestVault(t, nil)
	project := filepath.Join(dir, "myproj")
	old := time.Now().Add(-time.Hour)
	writeFileAt(t, filepath.Join(project, ".env"), "LOCAL=1", old)
	writeFileAt(t, v.BackupPath(project), "enc", time.Now())

	if err := v.Decrypt(project, false); err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}

	saved, _ := filepath.Glob(filepath.Join(project, ".env.backup-*"))
	if len(saved) != 1 {
		t.Fatalf("expected one saved .env, got %v", saved)
	}

	data, _ := os.ReadFile(filepath.Join(project, ".env"))
	if string(data) != "SECRET=enc" {
		t.Errorf("expected decrypted content, got %q", data)
	}
}

func TestDecrypt_NewerLocalDeclined(t *testing.T) {
	declined := func(string, bool) bool { return false }
	v, _, dir := newTestVault(t, declined)
	project := filepath.Join(dir, "myproj")
	writeFileAt(t, v.BackupPath(project), "enc", time.Now().Add(-time.Hour))
	writeFileAt(t, filepath.Join(project, ".env"), "LOCAL=1", time.Now())

	err := v.Decrypt(project, false)
	if !errors.Is(err, ErrAborted) {
		t.Errorf("expected ErrAborted, got %v", err)
	}
}

func TestSync_DecisionTable(t *testing.T) {
	old := time.Now().Add(-time.Hour)
	recent := time.Now()

	cases := []struct {
		name    string
		env     bool
		envTime time.Time
		backup  bool
		bakTime time.Time
		want    Action
	}{
		{"local only encrypts", true, recent, false, time.Time{}, ActionEncrypted},
		{"vault only decrypts", false, time.Time{}, true, recent, ActionDecrypted},
		{"local newer encrypts", true, recent, true, old, ActionEncrypted},
		{"vault newer decrypts", true, old, true, recent, ActionDecrypted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, _, dir := newTestVault(t, nil)
			project := filepath.Join(dir, "proj")
			if err := os.MkdirAll(project, 0755); err != nil {
				t.Fatal(err)
			}
			if tc.env {
				writeFileAt(t, filepath.Join(project, ".env"), "A=1", tc.envTime)
			}
			if tc.backup {
				writeFileAt(t, v.BackupPath(project), "enc", tc.bakTime)
			}

			action, err := v.Sync(project, DirectionAuto)
			if err != nil {
				t.Fatalf("Sync failed: %v", err)
			}
			if action != tc.want {
				t.Errorf("expected %s, got %s", tc.want, action)
			}
		})
	}
}

func TestSync_Identical(t *testing.T) {
	v, runner, dir := newTestVault(t, nil)
	project := filepath.Join(dir, "proj")
	same := time.Now().Truncate(time.Second)
	writeFileAt(t, filepath.Join(project, ".env"), "A=1", same)
	writeFileAt(t, v.BackupPath(project), "enc", same)

	action, err := v.Sync(project, DirectionAuto)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if action != ActionNone {
		t.Errorf("expected none, got %s", action)
	}
	if len(runner.calls) != 0 {
		t.Errorf("identical state must not shell out, got %v", runner.calls)
	}
}

func TestSync_Neither(t *testing.T) {
	v, _, dir := newTestVault(t, nil)
	project := filepath.Join(dir, "proj")
	if err := os.MkdirAll(project, 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := v.Sync(project, DirectionAuto); err == nil {
		t.Error("expected error when nothing to sync")
	}
}

func TestSync_PullAgainstGrainNeedsConfirm(t *testing.T) {
	confirmed := false
	confirm := func(string, bool) bool { confirmed = true; return true }
	v, _, dir := newTestVault(t, confirm)
	project := filepath.Join(dir, "proj")
	writeFileAt(t, v.BackupPath(project), "enc", time.Now().Add(-time.Hour))
	writeFileAt(t, filepath.Join(project, ".env"), "A=1", time.Now())

	action, err := v.Sync(project, DirectionPull)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if !confirmed {
		t.Error("expected a confirmation prompt for --pull against newer local")
	}
	if action != ActionDecrypted {
		t.Errorf("expected decrypted, got %s", action)
	}
}

func TestList(t *testing.T) {
	v, _, _ := newTestVault(t, nil)
	if err := v.EnsureDir(); err != nil {
		t.Fatal(err)
	}
	writeFileAt(t, filepath.Join(v.Dir(), "beta.env.encrypt"), "b", time.Time{})
	writeFileAt(t, filepath.Join(v.Dir(), "alpha.env.encrypt"), "a", time.Time{})
	writeFileAt(t, filepath.Join(v.Dir(), "notes.txt"), "x", time.Time{})

	backups, err := v.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("expected 2 backups, got %d", len(backups))
	}
	if backups[0].Name != "alpha" || backups[1].Name != "beta" {
		t.Errorf("expected name-sorted backups, got %v", backups)
	}
}

func TestGPGKey_FromKeyring(t *testing.T) {
	v, _, _ := newTestVault(t, nil)

	key, err := v.GPGKey()
	if err != nil {
		t.Fatalf("GPGKey failed: %v", err)
	}
	if key != "ABCDEF1234567890" {
		t.Errorf("expected key ABCDEF1234567890, got %q", key)
	}
}

func TestGPGKey_NoSecretKey(t *testing.T) {
	runner := &mockRunner{gpgOut: "gpg: no secret keys"}
	v := New(t.TempDir(), runner, nil)

	if _, err := v.GPGKey(); err == nil {
		t.Error("expected error when keyring has no sec line")
	}
}

func TestGPGKey_SopsConfigOverride(t *testing.T) {
	v, runner, _ := newTestVault(t, nil)
	if err := v.EnsureDir(); err != nil {
		t.Fatal(err)
	}
	sopsYaml := "creation_rules:\n  - pgp: DEADBEEF00000000\n"
	if err := os.WriteFile(filepath.Join(v.Dir(), ".sops.yaml"), []byte(sopsYaml), 0644); err != nil {
		t.Fatal(err)
	}

	key, err := v.GPGKey()
	if err != nil {
		t.Fatalf("GPGKey failed: %v", err)
	}
	if key != "DEADBEEF00000000" {
		t.Errorf("expected .sops.yaml key, got %q", key)
	}
	if runner.callFor("gpg") != nil {
		t.Error("gpg must not be consulted when .sops.yaml names a key")
	}
}
