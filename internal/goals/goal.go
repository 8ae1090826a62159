package goals

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const targetDateLayout = "2006-01-02"

var ErrInvalidGoal = errors.New("invalid goal")

type Goal struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TargetDate  string    `json:"targetDate"` // YYYY-MM-DD or empty
	CreatedAt   time.Time `json:"createdAt"`
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidGoal)
	}
	if g.TargetDate != "" {
		if _, err := time.Parse(targetDateLayout, g.TargetDate); err != nil {
			return fmt.Errorf("%w: target date [%s] not in YYYY-MM-DD format", ErrInvalidGoal, g.TargetDate)
		}
	}
	return nil
}
