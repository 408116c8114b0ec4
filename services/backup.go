package services

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/shared"
	log "github.com/sirupsen/logrus"
)

const BACKUP_SVC = "backup_svc"

const (
	backupRoot        = "backups"
	backupTimeLayout  = "20060102T150405Z"
	backupURLExpiry   = time.Hour
	defaultBackupKeep = 14
)

// BackupService snapshots every document into object storage under
// backups/<timestamp>/<document>.json.
type BackupService struct {
	context.DefaultService

	storeSvc *StoreService
	minioSvc *MinIOService

	keep int
}

func (svc BackupService) Id() string {
	return BACKUP_SVC
}

func (svc *BackupService) Configure(ctx *context.Context) error {
	svc.keep = defaultBackupKeep
	if keep, err := strconv.Atoi(os.Getenv("BACKUP_KEEP")); err == nil && keep > 0 {
		svc.keep = keep
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *BackupService) Start() error {
	svc.storeSvc = svc.Service(STORE_SVC).(*StoreService)
	svc.minioSvc, _ = svc.Service(MINIO_SVC).(*MinIOService)
	return nil
}

func (svc *BackupService) Enabled() bool {
	return svc != nil && svc.minioSvc.Enabled()
}

func errBackupsUnavailable() error {
	return shared.NewAppError(http.StatusServiceUnavailable, nil, "Backup storage is not configured")
}

func (svc *BackupService) CreateBackup() (*dto.BackupResponse, error) {
	if !svc.Enabled() {
		return nil, errBackupsUnavailable()
	}

	snapshot, err := svc.storeSvc.Snapshot()
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}

	now := time.Now().UTC()
	prefix := path.Join(backupRoot, now.Format(backupTimeLayout))
	backup := &dto.BackupResponse{Prefix: prefix, CreatedAt: now}

	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		data := snapshot[name]
		key := path.Join(prefix, name+".json")
		if _, err := svc.minioSvc.UploadFile(key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
			log.WithFields(log.Fields{"key": key, "error": err}).Error("Backup upload failed")
			return nil, shared.NewInternalError(err)
		}
		backup.Objects = append(backup.Objects, dto.BackupObject{
			Key:          key,
			Document:     name,
			Size:         int64(len(data)),
			LastModified: now,
		})
	}

	log.WithFields(log.Fields{
		"prefix":    prefix,
		"documents": len(backup.Objects),
	}).Info("Backup created")
	return backup, nil
}

// ListBackups groups stored objects by snapshot, newest first.
func (svc *BackupService) ListBackups() ([]dto.BackupResponse, error) {
	if !svc.Enabled() {
		return nil, errBackupsUnavailable()
	}

	objects, err := svc.minioSvc.ListFiles(backupRoot + "/")
	if err != nil {
		return nil, shared.NewInternalError(err)
	}

	byPrefix := map[string]*dto.BackupResponse{}
	for _, object := range objects {
		prefix := path.Dir(object.Key)
		backup, ok := byPrefix[prefix]
		if !ok {
			createdAt, err := time.Parse(backupTimeLayout, path.Base(prefix))
			if err != nil {
				createdAt = object.LastModified
			}
			backup = &dto.BackupResponse{Prefix: prefix, CreatedAt: createdAt}
			byPrefix[prefix] = backup
		}

		url, err := svc.minioSvc.GetFileURL(object.Key, backupURLExpiry)
		if err != nil {
			log.WithFields(log.Fields{"key": object.Key, "error": err}).Warn("Failed to presign backup object")
		}
		backup.Objects = append(backup.Objects, dto.BackupObject{
			Key:          object.Key,
			Document:     strings.TrimSuffix(path.Base(object.Key), ".json"),
			Size:         object.Size,
			LastModified: object.LastModified,
			URL:          url,
		})
	}

	backups := make([]dto.BackupResponse, 0, len(byPrefix))
	for _, backup := range byPrefix {
		backups = append(backups, *backup)
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// RestoreBackup overwrites every document found under prefix.
func (svc *BackupService) RestoreBackup(prefix string) (*dto.RestoreBackupResponse, error) {
	if !svc.Enabled() {
		return nil, errBackupsUnavailable()
	}

	objects, err := svc.minioSvc.ListFiles(strings.TrimSuffix(prefix, "/") + "/")
	if err != nil {
		return nil, shared.NewInternalError(err)
	}
	if len(objects) == 0 {
		return nil, shared.NewNotFoundError(nil, "Backup not found")
	}

	known := map[string]bool{}
	for _, name := range shared.Documents {
		known[name] = true
	}

	result := &dto.RestoreBackupResponse{Prefix: prefix}
	for _, object := range objects {
		name := strings.TrimSuffix(path.Base(object.Key), ".json")
		if !known[name] {
			continue
		}

		data, err := svc.minioSvc.DownloadFile(object.Key)
		if err != nil {
			return nil, shared.NewInternalError(err)
		}

		if err := svc.storeSvc.WriteRaw(name, data); err != nil {
			if errors.Is(err, ErrDocumentMalformed) {
				return nil, shared.NewBadRequestError(err, fmt.Sprintf("Backup document %s is malformed", name))
			}
			return nil, svc.storeSvc.HandleError(err)
		}
		result.Documents = append(result.Documents, name)
	}

	log.WithFields(log.Fields{
		"prefix":    prefix,
		"documents": result.Documents,
	}).Warn("Backup restored")
	return result, nil
}

// PruneBackups deletes all but the newest keep snapshots.
func (svc *BackupService) PruneBackups() (int, error) {
	backups, err := svc.ListBackups()
	if err != nil {
		return 0, err
	}
	if len(backups) <= svc.keep {
		return 0, nil
	}

	removed := 0
	for _, backup := range backups[svc.keep:] {
		for _, object := range backup.Objects {
			if err := svc.minioSvc.DeleteFile(object.Key); err != nil {
				return removed, shared.NewInternalError(err)
			}
		}
		removed++
	}
	return removed, nil
}
