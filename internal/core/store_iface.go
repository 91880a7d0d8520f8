package core

import "context"

// DocumentStore persists document state. Writes are last-write-wins.
type DocumentStore interface {
	// Get reports found=false for an unknown id.
	Get(ctx context.Context, id string) (data string, found bool, err error)
	Put(ctx context.Context, id, data string) error
	Close() error
}

// DocumentLister is implemented by stores that can enumerate their documents.
type DocumentLister interface {
	// List returns every stored document id, sorted.
	List(ctx context.Context) ([]string, error)
}
