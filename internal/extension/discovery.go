package extension

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DiscoveryConfig controls where packages are looked for, mirroring the
// teacher's plugins.DiscoveryConfig shape.
type DiscoveryConfig struct {
	Enabled            bool
	Paths              []string
	ScanSubdirectories bool
}

// DefaultGlobalPath returns ~/.adkflow/adkflow_extensions, expanding the
// user's home directory.
func DefaultGlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".adkflow/adkflow_extensions"
	}
	return filepath.Join(home, ".adkflow", "adkflow_extensions")
}

// ProjectPath returns <projectRoot>/adkflow_extensions.
func ProjectPath(projectRoot string) string {
	return filepath.Join(projectRoot, "adkflow_extensions")
}

// DiscoveredPackage is one package.yaml plus the resolved path to its
// compiled plugin shared object.
type DiscoveredPackage struct {
	Name     string
	Scope    Scope
	DirPath  string
	SOPath   string
	Manifest Manifest
}

// Discover scans root (non-recursively unless scanSubdirectories) for
// package.yaml manifests, pairing each with a sibling .so file named after
// the manifest's directory.
func Discover(root string, scope Scope, scanSubdirectories bool) ([]DiscoveredPackage, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var found []DiscoveredPackage
	walk := func(dir string) error {
		manifestPath := filepath.Join(dir, "package.yaml")
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			return nil // not a package directory
		}
		var m Manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("parse manifest %s: %w", manifestPath, err)
		}
		if err := m.Validate(); err != nil {
			return fmt.Errorf("invalid manifest %s: %w", manifestPath, err)
		}
		soPath := filepath.Join(dir, filepath.Base(dir)+".so")
		if _, err := os.Stat(soPath); err != nil {
			return fmt.Errorf("package %s: plugin object %s not found", m.Name, soPath)
		}
		found = append(found, DiscoveredPackage{Name: m.Name, Scope: scope, DirPath: dir, SOPath: soPath, Manifest: m})
		return nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read extensions dir %s: %w", root, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if err := walk(dir); err != nil {
			return nil, err
		}
		if scanSubdirectories {
			sub, _ := os.ReadDir(dir)
			for _, s := range sub {
				if s.IsDir() {
					_ = walk(filepath.Join(dir, s.Name()))
				}
			}
		}
	}
	return found, nil
}
