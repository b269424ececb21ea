package gist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	ledger "github.com/belisario-afk/cakepop-ledger"
)

// ConfigKey is the KV key of the backup configuration.
const ConfigKey = "cakepop-gist-config"

var (
	// ErrNoToken is returned when backing up without an access token.
	ErrNoToken = errors.New("token missing")
	// ErrNoGist is returned when restoring without a token or a gist id.
	ErrNoGist = errors.New("token or gist id missing")
)

// Config is the persisted backup configuration.
type Config struct {
	Token      string        `json:"token"`
	GistID     string        `json:"gistId"`
	Interval   int           `json:"interval"` // minutes between automatic backups, 0 disables them
	LastBackup ledger.Millis `json:"lastBackup"`
}

// LoadConfig reads the configuration, an absent or unreadable one is empty.
func LoadConfig(kv ledger.KV) Config {
	var cfg Config
	data, err := kv.Get(ConfigKey)
	if err != nil {
		return Config{}
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// SaveConfig writes the configuration.
func SaveConfig(kv ledger.KV, cfg Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := kv.Set(ConfigKey, data); err != nil {
		return fmt.Errorf("cannot save gist config: %w", err)
	}
	return nil
}

// Result describes a successful backup.
type Result struct {
	Created bool
	GistID  string
}

// Syncer copies the active ledger to and from its gist.
type Syncer struct {
	Client *Client
	KV     ledger.KV // holds the Config
	Store  *ledger.Store

	// Logger receives automatic backup failures. Defaults to log.Default().
	Logger *log.Logger

	now  func() time.Time
	unit time.Duration // of Config.Interval
}

// NewSyncer returns a Syncer for store, configured in kv.
func NewSyncer(client *Client, kv ledger.KV, store *ledger.Store) *Syncer {
	return &Syncer{Client: client, KV: kv, Store: store, now: time.Now, unit: time.Minute}
}

func (s *Syncer) logger() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}

// Backup pushes the ledger snapshot, creating the gist on first use.
func (s *Syncer) Backup(ctx context.Context) (Result, error) {
	cfg := LoadConfig(s.KV)
	if cfg.Token == "" {
		return Result{}, ErrNoToken
	}
	content, err := s.Store.ExportSnapshot()
	if err != nil {
		return Result{}, err
	}

	res := Result{GistID: cfg.GistID}
	if cfg.GistID == "" {
		id, err := s.Client.Create(ctx, cfg.Token, content)
		if err != nil {
			return Result{}, err
		}
		res = Result{Created: true, GistID: id}
	} else if err := s.Client.Update(ctx, cfg.Token, cfg.GistID, content); err != nil {
		return Result{}, err
	}

	cfg.GistID = res.GistID
	cfg.LastBackup = ledger.MillisOf(s.now())
	if err := SaveConfig(s.KV, cfg); err != nil {
		return res, err
	}
	return res, nil
}

// Restore replaces the ledger with the gist content.
func (s *Syncer) Restore(ctx context.Context) error {
	cfg := LoadConfig(s.KV)
	if cfg.Token == "" || cfg.GistID == "" {
		return ErrNoGist
	}
	content, err := s.Client.Fetch(ctx, cfg.Token, cfg.GistID)
	if err != nil {
		return err
	}
	return s.Store.ImportDocument([]byte(content))
}

// Auto backs up every Config.Interval until ctx is done. Failures are
// logged and retried at the next tick. It returns at once when automatic
// backups are disabled.
func (s *Syncer) Auto(ctx context.Context) error {
	cfg := LoadConfig(s.KV)
	if cfg.Interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(time.Duration(cfg.Interval) * s.unit)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Backup(ctx); err != nil {
				s.logger().Printf("auto backup failed: %v", err)
			}
		}
	}
}
