package dto

import "time"

type BackupResponse struct {
	Prefix    string         `json:"prefix"`
	Objects   []BackupObject `json:"objects"`
	CreatedAt time.Time      `json:"created_at"`
}

type BackupObject struct {
	Key          string    `json:"key"`
	Document     string    `json:"document"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	URL          string    `json:"url,omitempty"`
}

type RestoreBackupRequest struct {
	Prefix string `json:"prefix" validate:"required,startswith=backups/"`
}

func (r RestoreBackupRequest) Validate() error {
	return GetValidator().Struct(r)
}

type RestoreBackupResponse struct {
	Prefix    string   `json:"prefix"`
	Documents []string `json:"documents"`
}
