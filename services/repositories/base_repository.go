package repositories

import "errors"

var (
	ErrRecordNotFound  = errors.New("record not found")
	ErrDuplicateRecord = errors.New("record already exists")

	// errUnchanged aborts an update without saving the document.
	errUnchanged = errors.New("document unchanged")
)

// DocumentStore is the subset of the document store the repositories need.
type DocumentStore interface {
	Read(name string, out interface{}) error
	Update(name string, out interface{}, fn func() error) error
}

// BaseRepository provides access to one named document
type BaseRepository struct {
	store DocumentStore
	name  string
}

func NewBaseRepository(store DocumentStore, name string) BaseRepository {
	return BaseRepository{store: store, name: name}
}

// Store returns the underlying document store
func (r *BaseRepository) Store() DocumentStore {
	return r.store
}

func (r *BaseRepository) read(out interface{}) error {
	return r.store.Read(r.name, out)
}

func (r *BaseRepository) update(out interface{}, fn func() error) error {
	if err := r.store.Update(r.name, out, fn); err != nil && !errors.Is(err, errUnchanged) {
		return err
	}
	return nil
}
