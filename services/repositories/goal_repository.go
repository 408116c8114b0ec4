package repositories

import (
	"time"

	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/shared"
)

// GoalRepository handles study goal records
type GoalRepository struct {
	BaseRepository
}

func NewGoalRepository(store DocumentStore) *GoalRepository {
	return &GoalRepository{
		BaseRepository: NewBaseRepository(store, shared.DocGoals),
	}
}

func (ds *GoalRepository) GetGoals() ([]model.StudyGoal, error) {
	var doc model.GoalsDocument
	if err := ds.read(&doc); err != nil {
		return nil, err
	}
	return doc.Goals, nil
}

func (ds *GoalRepository) GetUserGoals(userID string) ([]model.StudyGoal, error) {
	goals, err := ds.GetGoals()
	if err != nil {
		return nil, err
	}
	var userGoals []model.StudyGoal
	for _, goal := range goals {
		if goal.UserID == userID {
			userGoals = append(userGoals, goal)
		}
	}
	return userGoals, nil
}

func (ds *GoalRepository) GetGoal(userID, goalID string) (*model.StudyGoal, error) {
	goals, err := ds.GetUserGoals(userID)
	if err != nil {
		return nil, err
	}
	for i := range goals {
		if goals[i].ID == goalID {
			return &goals[i], nil
		}
	}
	return nil, ErrRecordNotFound
}

func (ds *GoalRepository) CreateGoal(goal *model.StudyGoal) error {
	var doc model.GoalsDocument
	return ds.update(&doc, func() error {
		doc.Goals = append(doc.Goals, *goal)
		return nil
	})
}

// UpdateGoal applies fn to the user's goal and returns the saved copy.
func (ds *GoalRepository) UpdateGoal(userID, goalID string, fn func(goal *model.StudyGoal) error) (*model.StudyGoal, error) {
	var doc model.GoalsDocument
	var saved model.StudyGoal
	err := ds.update(&doc, func() error {
		for i := range doc.Goals {
			if doc.Goals[i].ID != goalID || doc.Goals[i].UserID != userID {
				continue
			}
			if err := fn(&doc.Goals[i]); err != nil {
				return err
			}
			doc.Goals[i].UpdatedAt = time.Now().UTC()
			saved = doc.Goals[i]
			return nil
		}
		return ErrRecordNotFound
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateGoals applies fn to every goal and returns how many it reported as changed.
// The document is only saved when at least one goal changed.
func (ds *GoalRepository) UpdateGoals(fn func(goal *model.StudyGoal) bool) (int, error) {
	var doc model.GoalsDocument
	changed := 0
	err := ds.update(&doc, func() error {
		now := time.Now().UTC()
		for i := range doc.Goals {
			if fn(&doc.Goals[i]) {
				doc.Goals[i].UpdatedAt = now
				changed++
			}
		}
		if changed == 0 {
			return errUnchanged
		}
		return nil
	})
	return changed, err
}

func (ds *GoalRepository) DeleteGoal(userID, goalID string) error {
	var doc model.GoalsDocument
	return ds.update(&doc, func() error {
		for i := range doc.Goals {
			if doc.Goals[i].ID == goalID && doc.Goals[i].UserID == userID {
				doc.Goals = append(doc.Goals[:i], doc.Goals[i+1:]...)
				return nil
			}
		}
		return ErrRecordNotFound
	})
}
