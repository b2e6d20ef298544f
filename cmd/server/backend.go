// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tejzpr/learnmap/internal/config"
	"github.com/tejzpr/learnmap/internal/database"
	"github.com/tejzpr/learnmap/internal/storage"
	"github.com/tejzpr/learnmap/internal/tools"
)

// backend is the opened persistence layer selected by storage.type
type backend struct {
	storage storage.Storage
	history tools.HistorySource
	close   func() error
}

func (b *backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

func openBackend(cfg *config.Config, log zerolog.Logger) (*backend, error) {
	switch cfg.Storage.Type {
	case config.StorageFile:
		var opts []storage.FileOption
		opts = append(opts, storage.WithFileLogger(log))
		if cfg.Storage.Git {
			opts = append(opts, storage.WithGit())
		}
		fs, err := storage.NewFileStore(cfg.Storage.RootPath, opts...)
		if err != nil {
			return nil, err
		}
		b := &backend{storage: fs}
		if fs.Versioned() {
			b.history = fs
		}
		log.Info().Str("root", cfg.Storage.RootPath).Bool("git", fs.Versioned()).Msg("using file store")
		return b, nil

	case config.StorageDatabase:
		db, err := database.Open(databaseConfig(cfg))
		if err != nil {
			return nil, err
		}
		log.Info().Str("type", cfg.Database.Type).Msg("connected to database")
		return &backend{storage: db, close: db.Close}, nil

	case config.StorageMemory:
		log.Warn().Msg("using in-memory storage: records are lost on exit")
		return &backend{storage: storage.NewMemoryStore()}, nil

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}
