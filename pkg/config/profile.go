package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// TenantProfile carries per-tenant operating defaults. Profiles do not
// change evaluation semantics; they only tune service-level behavior.
type TenantProfile struct {
	Name           string   `yaml:"name" json:"name"`
	TenantID       string   `yaml:"tenant_id" json:"tenant_id"`
	RateLimit      float64  `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty"`
	RateBurst      int      `yaml:"rate_burst,omitempty" json:"rate_burst,omitempty"`
	ArchivePrefix  string   `yaml:"archive_prefix,omitempty" json:"archive_prefix,omitempty"`
	RetentionDays  int      `yaml:"retention_days,omitempty" json:"retention_days,omitempty"`
	RequiredKinds  []string `yaml:"required_modules,omitempty" json:"required_modules,omitempty"`
	AuditRedaction bool     `yaml:"audit_redaction,omitempty" json:"audit_redaction,omitempty"`
}

// LoadProfile loads a tenant profile YAML by tenant id. It searches the
// profiles directory for profile_<tenant>.yaml.
func LoadProfile(profilesDir, tenantID string) (*TenantProfile, error) {
	tenantID = strings.ToLower(tenantID)
	path := filepath.Join(profilesDir, fmt.Sprintf("profile_%s.yaml", tenantID))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", tenantID, err)
	}

	var profile TenantProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile %q: %w", tenantID, err)
	}

	if profile.TenantID == "" {
		profile.TenantID = tenantID
	}

	return &profile, nil
}

// LoadAllProfiles loads every profile_*.yaml file from the profiles
// directory, keyed by tenant id.
func LoadAllProfiles(profilesDir string) (map[string]*TenantProfile, error) {
	matches, err := filepath.Glob(filepath.Join(profilesDir, "profile_*.yaml"))
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]*TenantProfile, len(matches))
	for _, path := range matches {
		base := filepath.Base(path)
		id := strings.TrimSuffix(strings.TrimPrefix(base, "profile_"), ".yaml")
		p, err := LoadProfile(profilesDir, id)
		if err != nil {
			return nil, err
		}
		profiles[p.TenantID] = p
	}
	return profiles, nil
}
