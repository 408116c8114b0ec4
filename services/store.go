package services

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/services/repositories"
	"github.com/lac-hong-legacy/study_api/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const STORE_SVC = "store_svc"

const (
	StoreDriverFile     = "file"
	StoreDriverSqlite   = "sqlite"
	StoreDriverPostgres = "postgres"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrDocumentMalformed = errors.New("document malformed")
)

// documentBackend persists raw document bytes by name.
type documentBackend interface {
	Load(name string) ([]byte, error)
	Save(name string, data []byte) error
	// Update runs fn against the current bytes (nil when absent) and stores the result.
	Update(name string, fn func(current []byte) ([]byte, error)) error
}

type StoreService struct {
	context.DefaultService

	driver  string
	dataDir string

	backend    documentBackend
	monitoring *MonitoringService

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (svc StoreService) Id() string {
	return STORE_SVC
}

func (svc *StoreService) Configure(ctx *context.Context) error {
	svc.driver = os.Getenv("STORE_DRIVER")
	if svc.driver == "" {
		svc.driver = StoreDriverFile
	}

	svc.dataDir = os.Getenv("DATA_DIR")
	if svc.dataDir == "" {
		svc.dataDir = "./data"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *StoreService) Start() error {
	if monitoring, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monitoring = monitoring
	}

	switch svc.driver {
	case StoreDriverSqlite:
		sqliteSvc, ok := svc.Service(SQLITE_SVC).(*SqliteService)
		if !ok || sqliteSvc.Db() == nil {
			return fmt.Errorf("store driver %q requires %s", svc.driver, SQLITE_SVC)
		}
		svc.backend = newGormBackend(sqliteSvc.Db(), false)
	case StoreDriverPostgres:
		postgresSvc, ok := svc.Service(POSTGRES_SVC).(*PostgresService)
		if !ok || postgresSvc.Db() == nil {
			return fmt.Errorf("store driver %q requires %s", svc.driver, POSTGRES_SVC)
		}
		svc.backend = newGormBackend(postgresSvc.Db(), true)
	case StoreDriverFile:
		backend, err := newFileBackend(svc.dataDir)
		if err != nil {
			return err
		}
		svc.backend = backend
	default:
		return fmt.Errorf("unknown store driver %q", svc.driver)
	}

	if err := svc.EnsureDefaults(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"driver":   svc.driver,
		"data_dir": svc.dataDir,
	}).Info("Document store ready")
	return nil
}

func (svc *StoreService) Shutdown() {}

// NewFileStore opens a file-backed store outside the service registry and
// creates any missing documents.
func NewFileStore(dataDir string) (*StoreService, error) {
	backend, err := newFileBackend(dataDir)
	if err != nil {
		return nil, err
	}

	svc := &StoreService{
		driver:  StoreDriverFile,
		dataDir: dataDir,
		backend: backend,
	}
	if err := svc.EnsureDefaults(); err != nil {
		return nil, err
	}
	return svc, nil
}

// NewGormStore wraps an open database whose documents table is already migrated.
func NewGormStore(db *gorm.DB, driver string) (*StoreService, error) {
	svc := &StoreService{
		driver:  driver,
		backend: newGormBackend(db, driver == StoreDriverPostgres),
	}
	if err := svc.EnsureDefaults(); err != nil {
		return nil, err
	}
	return svc, nil
}

// Read loads the named document into out.
func (svc *StoreService) Read(name string, out interface{}) (err error) {
	defer svc.observe("read", name, time.Now(), &err)

	data, err := svc.backend.Load(name)
	if err != nil {
		return err
	}
	return decodeDocument(name, data, out)
}

// Write replaces the named document with value.
func (svc *StoreService) Write(name string, value interface{}) (err error) {
	defer svc.observe("write", name, time.Now(), &err)

	lock := svc.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	data, err := encodeDocument(value)
	if err != nil {
		return err
	}
	return svc.backend.Save(name, data)
}

// WriteRaw replaces the named document with already encoded JSON.
func (svc *StoreService) WriteRaw(name string, data []byte) (err error) {
	defer svc.observe("write", name, time.Now(), &err)

	if !shared.DocumentJSON.Valid(data) {
		return fmt.Errorf("%w: %s", ErrDocumentMalformed, name)
	}

	lock := svc.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	return svc.backend.Save(name, data)
}

// Update decodes the named document into out, calls fn and writes out back when fn
// succeeds. Updates of the same document are serialized. A missing document is
// treated as the zero value of out.
func (svc *StoreService) Update(name string, out interface{}, fn func() error) (err error) {
	defer svc.observe("update", name, time.Now(), &err)

	lock := svc.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	return svc.backend.Update(name, func(current []byte) ([]byte, error) {
		if current != nil {
			if err := decodeDocument(name, current, out); err != nil {
				return nil, err
			}
		}
		if err := fn(); err != nil {
			return nil, err
		}
		return encodeDocument(out)
	})
}

// EnsureDefaults creates every known document that does not exist yet.
func (svc *StoreService) EnsureDefaults() error {
	for _, name := range shared.Documents {
		_, err := svc.backend.Load(name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrDocumentNotFound) {
			return err
		}

		if err := svc.Write(name, defaultDocument(name)); err != nil {
			return fmt.Errorf("failed to create default %s document: %w", name, err)
		}
		log.WithField("document", name).Info("Created default document")
	}
	return nil
}

// Snapshot returns the raw bytes of every known document that exists.
func (svc *StoreService) Snapshot() (map[string][]byte, error) {
	snapshot := make(map[string][]byte, len(shared.Documents))
	for _, name := range shared.Documents {
		data, err := svc.backend.Load(name)
		if errors.Is(err, ErrDocumentNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		snapshot[name] = data
	}
	return snapshot, nil
}

func (svc *StoreService) HandleError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := shared.GetAppError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, repositories.ErrRecordNotFound):
		return shared.NewNotFoundError(err, "")
	case errors.Is(err, repositories.ErrDuplicateRecord):
		return shared.NewConflictError(err, "")
	case errors.Is(err, ErrDocumentNotFound):
		log.WithError(err).Warn("Document missing")
		return shared.NewNotFoundError(err, "Document not found")
	case errors.Is(err, ErrDocumentMalformed):
		log.WithError(err).Error("Document could not be parsed")
		return shared.NewInternalError(err)
	default:
		log.WithError(err).Error("Document store error")
		return shared.NewInternalError(err)
	}
}

// HandleLookupError is HandleError with a specific message for missing records.
func (svc *StoreService) HandleLookupError(err error, notFoundMessage string) error {
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return shared.NewNotFoundError(err, notFoundMessage)
	}
	return svc.HandleError(err)
}

func (svc *StoreService) lockFor(name string) *sync.Mutex {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.locks == nil {
		svc.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := svc.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		svc.locks[name] = lock
	}
	return lock
}

func (svc *StoreService) observe(operation, name string, start time.Time, err *error) {
	if svc.monitoring == nil {
		return
	}
	status := "ok"
	if *err != nil {
		status = "error"
	}
	svc.monitoring.RecordStoreOperation(operation, name, status, time.Since(start))
}

func encodeDocument(value interface{}) ([]byte, error) {
	data, err := shared.DocumentJSON.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return append(data, '\n'), nil
}

func decodeDocument(name string, data []byte, out interface{}) error {
	if err := shared.DocumentJSON.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDocumentMalformed, name, err)
	}
	return nil
}

func defaultDocument(name string) interface{} {
	switch name {
	case shared.DocCourses:
		return model.CoursesDocument{Courses: []model.Course{}}
	case shared.DocUsers:
		return model.UsersDocument{Users: []model.User{}}
	case shared.DocFlashcards:
		return model.FlashcardsDocument{
			Cards:   []model.Flashcard{},
			Decks:   []model.FlashcardDeck{},
			Reviews: []model.ReviewLog{},
		}
	case shared.DocSessions:
		return model.SessionsDocument{Sessions: []model.StudySession{}}
	case shared.DocGoals:
		return model.GoalsDocument{Goals: []model.StudyGoal{}}
	}
	return map[string]interface{}{}
}
