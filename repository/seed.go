package repository

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed_users.yaml
var seedUsersYAML []byte

// SeedAccount is one bootstrap account before hashing.
type SeedAccount struct {
	Name      string `yaml:"name"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	Role      string `yaml:"role"`
	Telephone string `yaml:"telephone"`
}

type seedFile struct {
	Accounts []SeedAccount `yaml:"accounts"`
}

// ParseSeedAccounts decodes a seed file and checks every entry is usable.
func ParseSeedAccounts(raw []byte) ([]SeedAccount, error) {
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed accounts: %w", err)
	}
	seen := make(map[string]bool, len(f.Accounts))
	for i, a := range f.Accounts {
		if a.Email == "" || a.Password == "" || a.Name == "" {
			return nil, fmt.Errorf("seed account %d: name, email and password are required", i)
		}
		if a.Role != "admin" && a.Role != "user" {
			return nil, fmt.Errorf("seed account %s: unknown role %q", a.Email, a.Role)
		}
		if seen[a.Email] {
			return nil, fmt.Errorf("seed account %s listed twice", a.Email)
		}
		seen[a.Email] = true
	}
	return f.Accounts, nil
}

// DefaultSeedAccounts returns the embedded bootstrap accounts.
func DefaultSeedAccounts() ([]SeedAccount, error) {
	return ParseSeedAccounts(seedUsersYAML)
}
