package parlex

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
)

// ArtifactCache stores encoded artifacts in a local leveldb keyed by
// grammar fingerprint, so rebuilding the tables for an unchanged
// grammar is a lookup instead of a saturation run.
type ArtifactCache struct {
	db *leveldb.DB
}

// OpenArtifactCache opens (creating if needed) the cache at dir.
func OpenArtifactCache(dir string) (*ArtifactCache, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, errors.Wrap(err, "can not open artifact cache")
	}
	return &ArtifactCache{db: db}, nil
}

// Get returns the cached artifact for fingerprint, or nil on a miss.
func (c *ArtifactCache) Get(fingerprint []byte) (*ParallelLexer, error) {
	data, err := c.db.Get(fingerprint, nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "can not read artifact cache")
	}
	pl, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "cached artifact is corrupt")
	}
	return pl, nil
}

// Put stores pl under fingerprint, replacing any previous entry.
func (c *ArtifactCache) Put(fingerprint []byte, pl *ParallelLexer) error {
	var buf bytes.Buffer
	if err := pl.Encode(&buf); err != nil {
		return err
	}
	if err := c.db.Put(fingerprint, buf.Bytes(), nil); err != nil {
		return errors.Wrap(err, "can not write artifact cache")
	}
	return nil
}

func (c *ArtifactCache) Close() error {
	return c.db.Close()
}
