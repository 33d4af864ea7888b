package icp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Cache keeps lookup responses on disk until their TTL runs out.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenCache opens (or creates) the badger store in dir.
func OpenCache(dir string, ttl time.Duration) (*Cache, error) {
	opts := badger.DefaultOptions(dir).
		WithNumVersionsToKeep(1).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open icp cache: %w", err)
	}
	return &Cache{db: db, ttl: ttl}, nil
}

func cacheKey(domain string) []byte {
	return []byte("icp:" + strings.ToLower(domain))
}

// Get returns the stored body for domain, or badger.ErrKeyNotFound.
func (c *Cache) Get(domain string) ([]byte, error) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(domain))
		if err != nil {
			return err
		}
		if item.IsDeletedOrExpired() {
			return badger.ErrKeyNotFound
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	return value, err
}

func (c *Cache) Set(domain string, body []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(cacheKey(domain), body)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
}

func (c *Cache) Delete(domain string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(cacheKey(domain))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (c *Cache) Close() error {
	return c.db.Close()
}
