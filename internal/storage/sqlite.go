package storage

import (
	_ "github.com/mattn/go-sqlite3"

	"inmo-backoffice/internal/config"
)

type SQLiteProvider struct {
	SQLProvider
}

func NewSQLiteProvider(config *config.Storage) (provider *SQLiteProvider) {
	inner := NewSQLProvider(config, "sqlite3", config.SQLite.Path+"?_fk=on")
	if inner == nil {
		return nil
	}
	return &SQLiteProvider{
		SQLProvider: *inner,
	}
}
