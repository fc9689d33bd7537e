package session

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
	"github.com/vmihailenco/msgpack/v5"
)

// keyPrefix namespaces our slots inside the badger keyspace.
const keyPrefix = "itla/session/"

// record is the msgpack envelope stored for every value.
type record struct {
	Value     string    `msgpack:"v"`
	UpdatedAt time.Time `msgpack:"u"`
}

// BadgerStorage is a durable Storage backed by a badger directory.
// Values survive process restarts.
type BadgerStorage struct {
	db *badger.DB
}

// OpenBadgerStorage opens (creating if needed) the store in dir.
// An empty dir opens an in-memory badger instance.
func OpenBadgerStorage(dir string) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{})
	if dir == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, serr.Wrap(err, "failed to create session directory")
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, serr.Wrap(err, "failed to open session store")
	}
	return &BadgerStorage{db: db}, nil
}

func (b *BadgerStorage) Get(key string) (string, bool, error) {
	var raw []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, serr.Wrap(err, "failed to read session key "+key)
	}

	var rec record
	if err := msgpack.Unmarshal(raw, &rec); err != nil {
		return "", false, serr.Wrap(err, "failed to decode session key "+key)
	}
	return rec.Value, true, nil
}

func (b *BadgerStorage) Set(key, value string) error {
	raw, err := msgpack.Marshal(record{Value: value, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return serr.Wrap(err, "failed to encode session key "+key)
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), raw)
	})
	if err != nil {
		return serr.Wrap(err, "failed to write session key "+key)
	}
	return nil
}

// Remove deletes key; removing a missing key is not an error.
func (b *BadgerStorage) Remove(key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
	if err != nil {
		return serr.Wrap(err, "failed to remove session key "+key)
	}
	return nil
}

func (b *BadgerStorage) Close() error {
	if err := b.db.Close(); err != nil {
		return serr.Wrap(err, "failed to close session store")
	}
	return nil
}

// badgerLogger routes badger's internal logging through our logger.
// Badger is chatty at info level, so info lines are demoted to debug.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logger.LogErr(serr.New(strings.TrimSpace(fmt.Sprintf(format, args...))), "badger")
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logger.Info("badger warning", "msg", strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logger.Debug("badger", "msg", strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logger.Debug("badger", "msg", strings.TrimSpace(fmt.Sprintf(format, args...)))
}
