package config

import "cuelang.org/go/cue"

// parseMetadataSection extracts optional metadata.* fields.
func parseMetadataSection(v cue.Value, m *Metadata) error {
	mv := lookup(v, "metadata")
	if !mv.Exists() {
		return nil
	}
	if err := optString(mv, "resolver", &m.Resolver); err != nil {
		return prefixed("metadata", err)
	}
	if err := optString(mv, "device", &m.Device); err != nil {
		return prefixed("metadata", err)
	}
	if err := optString(mv, "buildVersion", &m.BuildVersion); err != nil {
		return prefixed("metadata", err)
	}
	if err := optString(mv, "deviceVariable", &m.DeviceVariable); err != nil {
		return prefixed("metadata", err)
	}
	if err := optString(mv, "versionVariable", &m.VersionVariable); err != nil {
		return prefixed("metadata", err)
	}
	if err := optStringList(mv, "command", &m.Command); err != nil {
		return prefixed("metadata", err)
	}
	if err := optInt(mv, "timeoutMs", &m.TimeoutMs); err != nil {
		return prefixed("metadata", err)
	}
	return nil
}

// parseProgressSection extracts optional progress.* fields.
func parseProgressSection(v cue.Value, p *Progress) error {
	pv := lookup(v, "progress")
	if !pv.Exists() {
		return nil
	}
	if err := optString(pv, "parser", &p.Parser); err != nil {
		return prefixed("progress", err)
	}
	if err := optString(pv, "inline", &p.Inline); err != nil {
		return prefixed("progress", err)
	}
	if err := optString(pv, "file", &p.File); err != nil {
		return prefixed("progress", err)
	}
	if err := optInt(pv, "timeoutMs", &p.TimeoutMs); err != nil {
		return prefixed("progress", err)
	}
	return nil
}

// parseStorageSection extracts optional storage.* fields.
func parseStorageSection(v cue.Value, s *Storage) error {
	sv := lookup(v, "storage")
	if !sv.Exists() {
		return nil
	}
	for path, dst := range map[string]*string{
		"backend": &s.Backend,
		"bucket":  &s.Bucket,
		"region":  &s.Region,
		"dir":     &s.Dir,
		"prefix":  &s.Prefix,
	} {
		if err := optString(sv, path, dst); err != nil {
			return prefixed("storage", err)
		}
	}
	return nil
}

// parseMessagingSection extracts optional messaging.* fields.
func parseMessagingSection(v cue.Value, m *Messaging) error {
	mv := lookup(v, "messaging")
	if !mv.Exists() {
		return nil
	}
	for path, dst := range map[string]*string{
		"backend":         &m.Backend,
		"projectId":       &m.ProjectID,
		"credentialsFile": &m.CredentialsFile,
	} {
		if err := optString(mv, path, dst); err != nil {
			return prefixed("messaging", err)
		}
	}
	return nil
}

type sectionError struct {
	section string
	err     error
}

func (e sectionError) Error() string { return e.section + ": " + e.err.Error() }
func (e sectionError) Unwrap() error { return e.err }

func prefixed(section string, err error) error {
	return sectionError{section: section, err: err}
}
