// Package manifest stamps release versions into packaging manifests
// (Helm charts, docker-compose files) by replacing a placeholder token.
//
// The default text mode is a literal substring replacement over the whole
// file, so a placeholder that also appears elsewhere, say in a comment, is
// replaced too. The yaml mode limits the replacement to the scalar values of
// the listed keys.
package manifest

import (
	"os"

	"git.home.luguber.info/inful/sitehooks/internal/config"
	"git.home.luguber.info/inful/sitehooks/internal/release"
)

// Mode selects how a placeholder is located in the manifest.
type Mode string

const (
	ModeText Mode = config.ModeText
	ModeYAML Mode = config.ModeYAML
)

// Rule describes one placeholder substitution in one file.
type Rule struct {
	Name        string
	Path        string
	Placeholder string
	// Replacement may reference ${version} and ${semver}.
	Replacement string
	Mode        Mode
	Keys        []string
}

// Expand renders the replacement for version. Unknown variables are kept verbatim.
func (r Rule) Expand(version string) string {
	tmpl := r.Replacement
	if tmpl == "" {
		tmpl = "${version}"
	}
	return os.Expand(tmpl, func(key string) string {
		switch key {
		case "version":
			return version
		case "semver":
			return release.Semver(version)
		}
		return "${" + key + "}"
	})
}

// RulesFromConfig converts configured rules.
func RulesFromConfig(rules []config.ManifestRule) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, Rule{
			Name:        r.Name,
			Path:        r.Path,
			Placeholder: r.Placeholder,
			Replacement: r.Replacement,
			Mode:        Mode(r.Mode),
			Keys:        r.Keys,
		})
	}
	return out
}
