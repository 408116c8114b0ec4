package model

import "time"

// Course is the root of the read-only catalog.
type Course struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Subject     string    `json:"subject" yaml:"subject"`
	Level       string    `json:"level" yaml:"level"` // beginner, intermediate, advanced
	Units       []Unit    `json:"units" yaml:"units"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

type Unit struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Order       int     `json:"order" yaml:"order"`
	Topics      []Topic `json:"topics" yaml:"topics"`
}

type Topic struct {
	ID               string     `json:"id" yaml:"id"`
	Title            string     `json:"title" yaml:"title"`
	Description      string     `json:"description" yaml:"description"`
	Content          string     `json:"content" yaml:"content"`
	EstimatedMinutes int        `json:"estimated_minutes" yaml:"estimated_minutes"`
	Questions        []Question `json:"questions" yaml:"questions"`
}

type Question struct {
	ID          string   `json:"id" yaml:"id"`
	Type        string   `json:"type" yaml:"type"` // multiple_choice, true_false, short_answer
	Prompt      string   `json:"prompt" yaml:"prompt"`
	Options     []string `json:"options,omitempty" yaml:"options,omitempty"`
	Answer      string   `json:"answer" yaml:"answer"`
	Explanation string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Difficulty  string   `json:"difficulty" yaml:"difficulty"`
	Points      int      `json:"points" yaml:"points"`
}

func (c *Course) FindUnit(unitID string) *Unit {
	for i := range c.Units {
		if c.Units[i].ID == unitID {
			return &c.Units[i]
		}
	}
	return nil
}

func (u *Unit) FindTopic(topicID string) *Topic {
	for i := range u.Topics {
		if u.Topics[i].ID == topicID {
			return &u.Topics[i]
		}
	}
	return nil
}

func (t *Topic) HasQuestion(questionID string) bool {
	for _, q := range t.Questions {
		if q.ID == questionID {
			return true
		}
	}
	return false
}
