package config

import "strings"

// CurrentConfigVersion is the configVersion written by new notifier configs.
const CurrentConfigVersion = "1"

// SupportedConfigVersions lists every configVersion Load accepts.
var SupportedConfigVersions = []string{CurrentConfigVersion}

// IsSupportedConfigVersion reports whether v can be loaded.
func IsSupportedConfigVersion(v string) bool {
	for _, s := range SupportedConfigVersions {
		if v == s {
			return true
		}
	}
	return false
}

// SupportedConfigVersionsCSV formats the supported versions for error text.
func SupportedConfigVersionsCSV() string {
	return strings.Join(SupportedConfigVersions, ", ")
}
