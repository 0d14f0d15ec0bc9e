package store

import (
	"fmt"
	"strconv"

	"go.etcd.io/bbolt"
)

// CurrentSchemaVersion is bumped on breaking changes to the bolt layout.
const CurrentSchemaVersion = 1

var (
	bucketSchema     = []byte("schema")
	keySchemaVersion = []byte("schema_version")
)

// SchemaVersion returns 0 for a file that has never been migrated.
func (s *BoltStore) SchemaVersion() (int, error) {
	var version int
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSchema)
		if b == nil {
			return nil
		}
		data := b.Get(keySchemaVersion)
		if data == nil {
			return nil
		}
		v, err := strconv.Atoi(string(data))
		if err != nil {
			return fmt.Errorf("bad schema version %q: %w", data, err)
		}
		version = v
		return nil
	})
	return version, err
}

func (s *BoltStore) migrate() error {
	version, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	if version > CurrentSchemaVersion {
		return fmt.Errorf("database created by newer version (v%d > v%d)", version, CurrentSchemaVersion)
	}

	for v := version; v < CurrentSchemaVersion; v++ {
		if err := s.runMigration(v, v+1); err != nil {
			return fmt.Errorf("migration from v%d to v%d failed: %w", v, v+1, err)
		}
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketSchema)
		if err != nil {
			return err
		}
		return b.Put(keySchemaVersion, []byte(strconv.Itoa(CurrentSchemaVersion)))
	})
}

// runMigration upgrades the layout by one version. Version 1 is the initial
// layout, so moving a fresh file from 0 to 1 only records the version.
func (s *BoltStore) runMigration(from, to int) error {
	switch {
	case from == 0 && to == 1:
		return nil
	default:
		return fmt.Errorf("no migration path")
	}
}
