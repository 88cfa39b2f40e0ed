package tracker

import (
	"context"
	"errors"
	"time"
)

// RecordReader reads single daily records. Store implements it.
type RecordReader interface {
	DailyRecord(ctx context.Context, profileID, date string) (*DailyRecord, error)
}

// LastDays returns the records for the n days ending on end (inclusive),
// oldest first. Days without a record are returned as empty records.
func LastDays(ctx context.Context, r RecordReader, profileID string, end time.Time, n int) ([]DailyRecord, error) {
	days := make([]DailyRecord, 0, n)
	for i := n - 1; i >= 0; i-- {
		date := end.AddDate(0, 0, -i).Format(DateLayout)

		rec, err := r.DailyRecord(ctx, profileID, date)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			rec = &DailyRecord{
				Date:            date,
				HabitsCompleted: HabitsCompleted{Positive: []string{}, Negative: []string{}},
				Foods:           []FoodEntry{},
				Exercises:       []ExerciseEntry{},
			}
		}
		days = append(days, *rec)
	}
	return days, nil
}
