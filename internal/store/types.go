package store

import (
	"database/sql"
	"sync"
)

// store handles all database operations for the ladder service.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}
