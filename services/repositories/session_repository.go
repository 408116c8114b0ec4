package repositories

import (
	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/shared"
)

// SessionRepository handles study session records
type SessionRepository struct {
	BaseRepository
}

func NewSessionRepository(store DocumentStore) *SessionRepository {
	return &SessionRepository{
		BaseRepository: NewBaseRepository(store, shared.DocSessions),
	}
}

func (ds *SessionRepository) GetUserSessions(userID string) ([]model.StudySession, error) {
	var doc model.SessionsDocument
	if err := ds.read(&doc); err != nil {
		return nil, err
	}
	var sessions []model.StudySession
	for _, session := range doc.Sessions {
		if session.UserID == userID {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

func (ds *SessionRepository) GetSession(userID, sessionID string) (*model.StudySession, error) {
	sessions, err := ds.GetUserSessions(userID)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].ID == sessionID {
			return &sessions[i], nil
		}
	}
	return nil, ErrRecordNotFound
}

func (ds *SessionRepository) CreateSession(session *model.StudySession) error {
	var doc model.SessionsDocument
	return ds.update(&doc, func() error {
		for _, existing := range doc.Sessions {
			if existing.ID == session.ID {
				return ErrDuplicateRecord
			}
		}
		doc.Sessions = append(doc.Sessions, *session)
		return nil
	})
}

func (ds *SessionRepository) DeleteSession(userID, sessionID string) error {
	var doc model.SessionsDocument
	return ds.update(&doc, func() error {
		for i := range doc.Sessions {
			if doc.Sessions[i].ID == sessionID && doc.Sessions[i].UserID == userID {
				doc.Sessions = append(doc.Sessions[:i], doc.Sessions[i+1:]...)
				return nil
			}
		}
		return ErrRecordNotFound
	})
}
