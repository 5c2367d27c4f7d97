package ledger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProfileEmptyPathReturnsDefaults(t *testing.T) {
	profile, err := LoadProfile("")
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if profile.GatewayURL != "http://localhost:7575" {
		t.Fatalf("gateway url = %q", profile.GatewayURL)
	}
	if profile.ApplicationID != "ledgerdeck" {
		t.Fatalf("application id = %q", profile.ApplicationID)
	}
	if len(profile.LedgerIDs) == 0 {
		t.Fatal("expected default ledger id candidates")
	}
}

func TestLoadProfileLayersFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	content := `
gatewayUrl: https://ledger.example.com
ledgerIds:
  - prod-ledger
packageIds:
  - a1b2c3
  - d4e5f6
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if profile.GatewayURL != "https://ledger.example.com" {
		t.Fatalf("gateway url = %q", profile.GatewayURL)
	}
	// Unset fields keep their defaults.
	if profile.ApplicationID != "ledgerdeck" {
		t.Fatalf("application id = %q", profile.ApplicationID)
	}
	if len(profile.LedgerIDs) != 1 || profile.LedgerIDs[0] != "prod-ledger" {
		t.Fatalf("ledger ids = %v", profile.LedgerIDs)
	}
	if len(profile.PackageIDs) != 2 {
		t.Fatalf("package ids = %v", profile.PackageIDs)
	}
}

func TestLoadProfileMissingFileErrors(t *testing.T) {
	if _, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing profile file")
	}
}

func TestLoadProfileMalformedYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("gatewayUrl: [unterminated"), 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	if _, err := LoadProfile(path); err == nil {
		t.Fatal("expected error for malformed profile file")
	}
}
