package identity

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/magiconair/properties"
)

const (
	keyOptOut = "opt-out"
	keyGUID   = "guid"

	fileComment = "Usage statistics, set opt-out to true to stop contacting the collection server"
)

// Settings is a point-in-time snapshot of the persisted telemetry
// preferences. OptOut disables all submission; UniqueID identifies the
// installation anonymously across sessions.
type Settings struct {
	OptOut   bool
	UniqueID string
}

// Store reads and lazily creates the properties file holding the
// opt-out flag and installation GUID. It is not safe for concurrent
// use; the reporter serializes all access to it.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Reload returns the settings currently on disk. A missing file is
// created with opt-out=false and a freshly generated GUID before
// returning. A malformed opt-out value counts as false; only I/O
// failures are reported as errors.
func (s *Store) Reload() (Settings, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return s.create()
		}
		return Settings{}, fmt.Errorf("stat settings file: %w", err)
	}

	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadFile(s.path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings file: %w", err)
	}

	// A file without a guid entry keeps its empty identifier; the
	// installation is not re-identified.
	return Settings{
		OptOut:   p.GetBool(keyOptOut, false),
		UniqueID: p.GetString(keyGUID, ""),
	}, nil
}

func (s *Store) create() (Settings, error) {
	settings := Settings{OptOut: false, UniqueID: uuid.New().String()}

	p := properties.NewProperties()
	p.DisableExpansion = true
	p.MustSet(keyOptOut, "false")
	p.MustSet(keyGUID, settings.UniqueID)
	p.SetComment(keyOptOut, fileComment)

	f, err := os.Create(s.path)
	if err != nil {
		return Settings{}, fmt.Errorf("create settings file: %w", err)
	}
	defer f.Close()

	if _, err := p.WriteComment(f, "# ", properties.UTF8); err != nil {
		return Settings{}, fmt.Errorf("write settings file: %w", err)
	}

	return settings, nil
}
