package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	appName      = "noveld"
	DefaultLabel = "Default"
	profileExt   = ".yaml"
)

var ErrNoConfig = errors.New("no config selected")

// ConfigRoot is the per-user directory holding every profile.
func ConfigRoot() string {
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, appName)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

func ConfigsDir() string {
	return filepath.Join(ConfigRoot(), "configs")
}

func CurrentLabelFile() string {
	return filepath.Join(ConfigRoot(), "current_config")
}

func ensureDirs() error {
	return os.MkdirAll(ConfigsDir(), 0755)
}

func checkLabel(label string) error {
	switch {
	case strings.TrimSpace(label) == "":
		return errors.New("label cannot be empty")
	case strings.ContainsAny(label, `/\`) || label == "." || label == "..":
		return fmt.Errorf("label %q must not contain path separators", label)
	}

	return nil
}

func labelPath(label string) string {
	return filepath.Join(ConfigsDir(), label+profileExt)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func setCurrent(label string) error {
	return os.WriteFile(CurrentLabelFile(), []byte(label), 0644)
}

func CurrentLabel() (string, error) {
	if err := ensureDirs(); err != nil {
		return "", err
	}

	b, err := os.ReadFile(CurrentLabelFile())
	if os.IsNotExist(err) {
		return "", ErrNoConfig
	}
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(b)), nil
}

func ActiveConfigPath() (string, error) {
	label, err := CurrentLabel()
	if err != nil || label == "" {
		return "", ErrNoConfig
	}

	return labelPath(label), nil
}

// ConfigPathByLabel returns the file of an existing profile.
func ConfigPathByLabel(label string) (string, error) {
	if err := checkLabel(label); err != nil {
		return "", err
	}
	if err := ensureDirs(); err != nil {
		return "", err
	}

	path := labelPath(label)
	if !exists(path) {
		return "", fmt.Errorf("config %q does not exist", label)
	}

	return path, nil
}

type ConfigInfo struct {
	Label  string
	Path   string
	Active bool
}

func ListConfigs() ([]ConfigInfo, error) {
	if err := ensureDirs(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(ConfigsDir())
	if err != nil {
		return nil, err
	}

	activeLabel, _ := CurrentLabel()
	var out []ConfigInfo
	for _, e := range entries {
		label, ok := strings.CutSuffix(e.Name(), profileExt)
		if e.IsDir() || !ok {
			continue
		}
		out = append(out, ConfigInfo{
			Label:  label,
			Path:   labelPath(label),
			Active: label == activeLabel,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func SwitchConfig(label string) error {
	path, err := ConfigPathByLabel(label)
	if err != nil {
		return err
	}
	if _, err := loadYAML(path); err != nil {
		return fmt.Errorf("config %q is not valid YAML: %w", label, err)
	}

	return setCurrent(label)
}

// AddConfig imports an existing YAML file as a new profile.
func AddConfig(label, srcPath string) error {
	if err := checkLabel(label); err != nil {
		return err
	}
	if err := ensureDirs(); err != nil {
		return err
	}

	dst := labelPath(label)
	if exists(dst) {
		return fmt.Errorf("config %q already exists", label)
	}

	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	if _, err := loadYAML(srcPath); err != nil {
		return fmt.Errorf("%s is not a valid config: %w", srcPath, err)
	}

	return os.WriteFile(dst, raw, 0644)
}

// CreateConfig writes a fresh profile holding the default settings and
// sources.
func CreateConfig(label string) (string, error) {
	if err := checkLabel(label); err != nil {
		return "", err
	}
	if err := ensureDirs(); err != nil {
		return "", err
	}

	path := labelPath(label)
	if exists(path) {
		return "", fmt.Errorf("config %q already exists", label)
	}

	if err := SaveYAML(DefaultConfig(), path); err != nil {
		return "", err
	}

	return path, nil
}

func RenameConfig(oldLabel, newLabel string) error {
	if err := checkLabel(newLabel); err != nil {
		return err
	}

	oldPath, err := ConfigPathByLabel(oldLabel)
	if err != nil {
		return err
	}
	newPath := labelPath(newLabel)
	if exists(newPath) {
		return fmt.Errorf("config %q already exists", newLabel)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return err
	}

	if active, _ := CurrentLabel(); active == oldLabel {
		return setCurrent(newLabel)
	}

	return nil
}

// RemoveConfig deletes a profile. Removing the active profile falls back to
// Default, which itself can only go with force.
func RemoveConfig(label string, force bool) (switchedTo string, err error) {
	if label == DefaultLabel && !force {
		return "", fmt.Errorf("cannot remove the %s config without --force", DefaultLabel)
	}

	path, err := ConfigPathByLabel(label)
	if err != nil {
		return "", err
	}

	if active, _ := CurrentLabel(); active == label {
		if label == DefaultLabel {
			if err := os.Remove(CurrentLabelFile()); err != nil && !os.IsNotExist(err) {
				return "", err
			}
		} else {
			if err := SwitchConfig(DefaultLabel); err != nil {
				return "", fmt.Errorf("failed switching to %s: %w", DefaultLabel, err)
			}
			switchedTo = DefaultLabel
		}
	}

	return switchedTo, os.Remove(path)
}

// InitDefaultConfig creates the Default profile if needed and activates it.
// os.ErrExist is returned alongside the path when it was already there.
func InitDefaultConfig() (string, error) {
	if err := ensureDirs(); err != nil {
		return "", err
	}

	path := labelPath(DefaultLabel)
	if exists(path) {
		return path, errors.Join(setCurrent(DefaultLabel), os.ErrExist)
	}

	if err := SaveYAML(DefaultConfig(), path); err != nil {
		return "", err
	}

	return path, setCurrent(DefaultLabel)
}

// ResetActive overwrites the active profile with the defaults.
func ResetActive() (string, error) {
	path, err := ActiveConfigPath()
	if err != nil {
		return "", err
	}

	return path, SaveYAML(DefaultConfig(), path)
}
