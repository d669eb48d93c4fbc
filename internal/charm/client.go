// ABOUTME: Charm KV client exposed as a KV backend for the diary store.
// ABOUTME: Provides thread-safe initialization and automatic cloud sync after writes.
package charm

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/fitness/internal/storage"
)

const (
	// DBName is the Charm KV database holding the diaries.
	DBName    = "fitness"
	charmHost = "charm.2389.dev"
)

// ErrReadOnly is returned for writes while another process holds the database lock.
var ErrReadOnly = errors.New("cannot write: database is locked by another process (MCP server?)")

// kvDB is the part of *kv.KV the client relies on.
type kvDB interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Reset() error
	IsReadOnly() bool
	Close() error
}

var (
	globalClient *Client
	clientOnce   sync.Once
	clientErr    error
)

// Client wraps a Charm KV database.
type Client struct {
	kv       kvDB
	autoSync bool
	mu       sync.RWMutex
}

// InitClient initializes the global Charm client.
// Thread-safe; can be called multiple times.
func InitClient() (*Client, error) {
	clientOnce.Do(func() {
		// Set server before opening KV unless the caller chose one.
		if os.Getenv("CHARM_HOST") == "" {
			if err := os.Setenv("CHARM_HOST", charmHost); err != nil {
				clientErr = err
				return
			}
		}

		db, err := kv.OpenWithDefaultsFallback(DBName)
		if err != nil {
			clientErr = err
			return
		}

		globalClient = newClient(db, true)

		// Pull remote data on startup (skip in read-only mode)
		if !db.IsReadOnly() {
			_ = db.Sync()
		}
	})

	return globalClient, clientErr
}

func newClient(db kvDB, autoSync bool) *Client {
	return &Client{kv: db, autoSync: autoSync}
}

// Close closes the KV database connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// IsReadOnly returns true if the database is open in read-only mode.
// This happens when another process (like an MCP server) holds the lock.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// Sync synchronizes local state with Charm Cloud.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

func (c *Client) syncIfEnabled() {
	if c.autoSync && !c.kv.IsReadOnly() {
		_ = c.kv.Sync()
	}
}

// SetAutoSync enables or disables automatic sync after writes.
func (c *Client) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// Host returns the Charm server the client talks to.
func Host() string {
	if h := os.Getenv("CHARM_HOST"); h != "" {
		return h
	}
	return charmHost
}

// ID returns the Charm user ID for the current account.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Reset wipes local data and rebuilds from Charm Cloud.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}

// Get returns the value stored at key, or storage.ErrNotFound.
func (c *Client) Get(key []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.get(key)
}

func (c *Client) get(key []byte) ([]byte, error) {
	val, err := c.kv.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	return val, err
}

// Update replaces the value at key with fn(old) while holding the write lock.
func (c *Client) Update(key []byte, fn func(old []byte) ([]byte, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return ErrReadOnly
	}

	old, err := c.get(key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	val, err := fn(old)
	if err != nil {
		return err
	}
	if err := c.kv.Set(key, val); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

// Scan calls fn for each key with the prefix, in key order.
func (c *Client) Scan(prefix []byte, fn func(key, value []byte) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys, err := c.kv.Keys()
	if err != nil {
		return err
	}

	var matched [][]byte
	for _, key := range keys {
		if bytes.HasPrefix(key, prefix) {
			matched = append(matched, key)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return bytes.Compare(matched[i], matched[j]) < 0 })

	for _, key := range matched {
		val, err := c.get(key)
		if err != nil {
			return err
		}
		if err := fn(key, val); err != nil {
			return err
		}
	}
	return nil
}
