package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tejiriaustin/filemonitor/models"
)

// Client is the event journal. It records what the monitor reported; it is
// never read back into the monitor's snapshot.
type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	database, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	// sqlite serialises writers; one connection avoids SQLITE_BUSY between
	// the monitor and the status server.
	database.SetMaxOpenConns(1)

	return &Client{db: database}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) CreateFileEventsTable() error {
	query := `CREATE TABLE IF NOT EXISTS file_events (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        path TEXT NOT NULL,
        operation TEXT NOT NULL,
        timestamp DATETIME NOT NULL
    )`
	_, err := c.db.Exec(query)
	return err
}

func (c *Client) InsertFileEvent(event models.FileEvent) (int64, error) {
	query := `INSERT INTO file_events (path, operation, timestamp) VALUES (?, ?, ?)`
	res, err := c.db.Exec(query, event.Path, string(event.Operation), event.Timestamp.UTC())
	if err != nil {
		return 0, fmt.Errorf("error inserting file event: %w", err)
	}
	return res.LastInsertId()
}

// GetFileEvents returns up to limit events, newest first. A limit <= 0 returns
// every event.
func (c *Client) GetFileEvents(limit int) ([]models.FileEvent, error) {
	query := `SELECT id, path, operation, timestamp FROM file_events ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying file events: %w", err)
	}
	defer rows.Close()

	events := make([]models.FileEvent, 0)
	for rows.Next() {
		var (
			event     models.FileEvent
			operation string
		)
		if err := rows.Scan(&event.ID, &event.Path, &operation, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		event.Operation = models.Operation(operation)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return events, nil
}
