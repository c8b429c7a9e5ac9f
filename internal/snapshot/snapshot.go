// Package snapshot persists the state container to a single file.
// The on-disk format is one BSON document. Writes go through a temp
// file plus rename so a crash mid-write never corrupts the previous
// snapshot.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson"

	"stayvault/internal/state"
	"stayvault/pkg/errors"
	"stayvault/pkg/model"
)

// Save serializes the container to path atomically.
func Save(path string, c *state.Container) error {
	data, err := bson.Marshal(c)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to encode snapshot", 500)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to create snapshot directory", 500)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to create snapshot temp file", 500)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.CodeInternal, "failed to write snapshot", 500)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.CodeInternal, "failed to sync snapshot", 500)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to close snapshot temp file", 500)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to replace snapshot", 500)
	}
	return nil
}

// Load restores a container from path. A missing file yields a fresh
// container; a present but undecodable file is a fatal state error,
// since proceeding would silently discard user data.
func Load(path string) (*state.Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return state.NewContainer(), nil
		}
		return nil, errors.FatalState(fmt.Sprintf("failed to read snapshot %s", path), err)
	}

	var c state.Container
	if err := bson.Unmarshal(data, &c); err != nil {
		return nil, errors.FatalState(fmt.Sprintf("failed to decode snapshot %s", path), err)
	}
	normalize(&c)
	return &c, nil
}

// normalize repairs containers restored from snapshots written before
// newer sections existed.
func normalize(c *state.Container) {
	if c.Users == nil {
		c.Users = make(map[string]*state.UserRecord)
	}
	for _, u := range c.Users {
		if u.Bookings == nil {
			u.Bookings = make(map[string]*model.Booking)
		}
	}
	// Snapshots that predate schema tracking carry a zero version; they
	// are by definition at the base version.
	if c.Schema.CurrentVersion == 0 {
		c.Schema.CurrentVersion = model.BaseSchemaVersion
	}
}
