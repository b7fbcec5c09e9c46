package state

// Record is the link record kept for one package name.
type Record struct {
	// RepoName is the directory name of the clone under the managed cache.
	RepoName string `json:"repo_name"`

	// NodeVersion is the manifest version declared before binding. Non-nil
	// means bound; an empty string means the manifest had no entry.
	NodeVersion *string `json:"node_version,omitempty"`

	// Dev reports whether the dependency lives in devDependencies.
	Dev *bool `json:"dev,omitempty"`

	// RepoURL is where the repository was fetched from.
	RepoURL string `json:"repo_url,omitempty"`

	// Workspaces maps workspace member directories bound with --recursive to
	// the version each declared before binding.
	Workspaces map[string]string `json:"workspaces,omitempty"`
}

// Bound reports whether the record denotes a bound package.
func (r Record) Bound() bool {
	return r.NodeVersion != nil
}

// IsDev reports whether the record belongs to the dev-dependency group.
func (r Record) IsDev() bool {
	return r.Dev != nil && *r.Dev
}

// PriorVersion returns the recorded pre-bind version, or "" when unbound.
func (r Record) PriorVersion() string {
	if r.NodeVersion == nil {
		return ""
	}
	return *r.NodeVersion
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }
