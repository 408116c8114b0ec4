package repositories

import (
	"time"

	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/shared"
)

// UserRepository handles user and progress records
type UserRepository struct {
	BaseRepository
}

func NewUserRepository(store DocumentStore) *UserRepository {
	return &UserRepository{
		BaseRepository: NewBaseRepository(store, shared.DocUsers),
	}
}

func (ds *UserRepository) GetUsers() ([]model.User, error) {
	var doc model.UsersDocument
	if err := ds.read(&doc); err != nil {
		return nil, err
	}
	return doc.Users, nil
}

func (ds *UserRepository) GetUser(userID string) (*model.User, error) {
	users, err := ds.GetUsers()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == userID {
			return &users[i], nil
		}
	}
	return nil, ErrRecordNotFound
}

func (ds *UserRepository) CreateUser(user *model.User) error {
	var doc model.UsersDocument
	return ds.update(&doc, func() error {
		for _, existing := range doc.Users {
			if existing.ID == user.ID {
				return ErrDuplicateRecord
			}
		}
		now := time.Now().UTC()
		user.CreatedAt = now
		user.UpdatedAt = now
		doc.Users = append(doc.Users, *user)
		return nil
	})
}

// UpdateUser applies fn to the stored user and returns the saved copy.
func (ds *UserRepository) UpdateUser(userID string, fn func(user *model.User) error) (*model.User, error) {
	var doc model.UsersDocument
	var saved model.User
	err := ds.update(&doc, func() error {
		for i := range doc.Users {
			if doc.Users[i].ID != userID {
				continue
			}
			if err := fn(&doc.Users[i]); err != nil {
				return err
			}
			doc.Users[i].UpdatedAt = time.Now().UTC()
			saved = doc.Users[i]
			return nil
		}
		return ErrRecordNotFound
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpsertUser is UpdateUser that first creates the user with init when it is absent.
func (ds *UserRepository) UpsertUser(userID string, init func() model.User, fn func(user *model.User) error) (*model.User, error) {
	var doc model.UsersDocument
	var saved model.User
	err := ds.update(&doc, func() error {
		idx := -1
		for i := range doc.Users {
			if doc.Users[i].ID == userID {
				idx = i
				break
			}
		}
		now := time.Now().UTC()
		if idx < 0 {
			user := init()
			user.ID = userID
			user.CreatedAt = now
			doc.Users = append(doc.Users, user)
			idx = len(doc.Users) - 1
		}
		if err := fn(&doc.Users[idx]); err != nil {
			return err
		}
		doc.Users[idx].UpdatedAt = now
		saved = doc.Users[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}
