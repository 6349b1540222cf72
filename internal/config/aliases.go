package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"
)

const aliasFileName = ".stringgraph.conf"

// AliasPrefix marks a location argument as an alias name, e.g. "@deps".
const AliasPrefix = "@"

// Alias names a graph location in the global alias registry.
type Alias struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
}

type aliasFile struct {
	Aliases []Alias `yaml:"aliases"`
}

// AliasPath returns the path to the global alias registry (~/.stringgraph.conf).
func AliasPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, aliasFileName)
}

// SetAlias adds or replaces the alias name.
func SetAlias(name, location string) error {
	if name == "" || strings.ContainsAny(name, " \t/"+AliasPrefix) {
		return fmt.Errorf("invalid alias name %q", name)
	}
	if location == "" {
		return fmt.Errorf("alias %q: location is required", name)
	}

	entries := ListAliases()
	i := slices.IndexFunc(entries, func(a Alias) bool { return a.Name == name })
	if i >= 0 {
		entries[i].Location = location
	} else {
		entries = append(entries, Alias{Name: name, Location: location})
	}
	return writeAliases(entries)
}

// RemoveAlias deletes the alias name and reports whether it existed.
func RemoveAlias(name string) (bool, error) {
	entries := ListAliases()
	n := len(entries)
	entries = slices.DeleteFunc(entries, func(a Alias) bool { return a.Name == name })
	if len(entries) == n {
		return false, nil
	}
	return true, writeAliases(entries)
}

// LookupAlias returns the location registered under name.
func LookupAlias(name string) (string, bool) {
	for _, a := range ListAliases() {
		if a.Name == name {
			return a.Location, true
		}
	}
	return "", false
}

// ResolveLocation expands an "@name" argument through the alias registry.
// Any other location is returned unchanged.
func ResolveLocation(location string) (string, error) {
	name, ok := strings.CutPrefix(location, AliasPrefix)
	if !ok {
		return location, nil
	}
	loc, found := LookupAlias(name)
	if !found {
		return "", fmt.Errorf("no graph alias %q", name)
	}
	return loc, nil
}

// ListAliases returns all registered aliases sorted by name. A missing or
// unreadable registry has no aliases.
func ListAliases() []Alias {
	regPath := AliasPath()
	if regPath == "" {
		return nil
	}

	data, err := os.ReadFile(regPath)
	if err != nil {
		return nil
	}

	var reg aliasFile
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil
	}
	slices.SortFunc(reg.Aliases, func(a, b Alias) int { return strings.Compare(a.Name, b.Name) })
	return reg.Aliases
}

func writeAliases(entries []Alias) error {
	regPath := AliasPath()
	if regPath == "" {
		return fmt.Errorf("cannot locate home directory for %s", aliasFileName)
	}

	reg := aliasFile{Aliases: entries}
	data, err := yaml.Marshal(&reg)
	if err != nil {
		return err
	}
	return os.WriteFile(regPath, data, 0644)
}
