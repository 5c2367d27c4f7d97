package ledger

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile describes one ledger deployment: where the gateway lives and
// which metadata candidates the discovery routines should try. Package ids
// rotate on every archive upload, so operators append new candidates here
// instead of rebuilding the service.
type Profile struct {
	GatewayURL    string   `yaml:"gatewayUrl"`
	ApplicationID string   `yaml:"applicationId"`
	LedgerIDs     []string `yaml:"ledgerIds"`
	PackageIDs    []string `yaml:"packageIds"`
}

// DefaultProfile matches a local sandbox gateway with its conventional ids.
func DefaultProfile() Profile {
	return Profile{
		GatewayURL:    "http://localhost:7575",
		ApplicationID: "ledgerdeck",
		LedgerIDs:     []string{"sandbox", "default-ledger-id", "participant0"},
	}
}

// LoadProfile reads a profile file, layering it over the sandbox defaults.
// An empty path returns the defaults unchanged.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	path = strings.TrimSpace(path)
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile %s: %w", path, err)
	}
	var parsed Profile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}

	if strings.TrimSpace(parsed.GatewayURL) != "" {
		profile.GatewayURL = strings.TrimSpace(parsed.GatewayURL)
	}
	if strings.TrimSpace(parsed.ApplicationID) != "" {
		profile.ApplicationID = strings.TrimSpace(parsed.ApplicationID)
	}
	if len(parsed.LedgerIDs) > 0 {
		profile.LedgerIDs = parsed.LedgerIDs
	}
	if len(parsed.PackageIDs) > 0 {
		profile.PackageIDs = parsed.PackageIDs
	}
	return profile, nil
}
