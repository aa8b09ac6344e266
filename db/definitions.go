package db

import "github.com/tejiriaustin/filemonitor/models"

type Repository interface {
	Close() error
	CreateFileEventsTable() error
	InsertFileEvent(event models.FileEvent) (int64, error)
	GetFileEvents(limit int) ([]models.FileEvent, error)
}

var _ Repository = (*Client)(nil)
