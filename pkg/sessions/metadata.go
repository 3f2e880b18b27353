package sessions

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// MaxNameLength bounds session names so they stay usable as file names and tmux targets.
const MaxNameLength = 64

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Record is the data stored on disk for one session, one file per name.
type Record struct {
	Name             string    `json:"name" yaml:"name" jsonschema:"required,pattern=^[A-Za-z0-9][A-Za-z0-9_.-]*$,maxLength=64,description=Unique session name"`
	WorkingDirectory string    `json:"workingDirectory" yaml:"workingDirectory" jsonschema:"required,minLength=1,description=Absolute directory the session was created in"`
	PublicURL        string    `json:"publicUrl,omitempty" yaml:"publicUrl,omitempty" jsonschema:"pattern=^https://,description=Public tunnel URL as reported by the tunnel provider"`
	CreatedAt        time.Time `json:"createdAt" yaml:"createdAt" jsonschema:"required,description=Creation time; never changes"`
	UpdatedAt        time.Time `json:"updatedAt" yaml:"updatedAt" jsonschema:"description=Last time the record was rewritten"`
}

// HasURL reports whether tunnel discovery has populated the public URL.
func (r Record) HasURL() bool {
	return r.PublicURL != ""
}

// ValidateName checks that name can be used as a record file name and tmux target.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("session name %q is longer than %d characters", name, MaxNameLength)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid session name %q: use letters, digits, '.', '_' and '-', starting with a letter or digit", name)
	}
	return nil
}

// ValidatePublicURL accepts only absolute https URLs with a host.
func ValidatePublicURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid public URL %q: %w", raw, err)
	}
	if u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("public URL %q is not an https URL", raw)
	}
	return nil
}

// Validate checks the invariants every persisted record must satisfy.
func (r Record) Validate() error {
	if err := ValidateName(r.Name); err != nil {
		return err
	}
	if !filepath.IsAbs(r.WorkingDirectory) {
		return fmt.Errorf("working directory %q must be absolute", r.WorkingDirectory)
	}
	if r.CreatedAt.IsZero() {
		return fmt.Errorf("record %q has no creation time", r.Name)
	}
	if r.PublicURL != "" {
		if strings.TrimSpace(r.PublicURL) != r.PublicURL {
			return fmt.Errorf("public URL %q has surrounding whitespace", r.PublicURL)
		}
		if err := ValidatePublicURL(r.PublicURL); err != nil {
			return err
		}
	}
	return nil
}
