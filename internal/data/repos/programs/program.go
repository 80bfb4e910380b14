package programs

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mand0ng/fitness-app-backend/internal/domain/workout"
	"github.com/mand0ng/fitness-app-backend/internal/pkg/dbctx"
	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
)

var ErrNotFound = errors.New("workout program not found")

type ProgramRepo interface {
	CreateProgram(dbc dbctx.Context, program *workout.WorkoutProgram) (*workout.WorkoutProgram, error)
	CreateDays(dbc dbctx.Context, days []*workout.WorkoutDay) ([]*workout.WorkoutDay, error)
	GetLatestByUser(dbc dbctx.Context, userID uuid.UUID) (*workout.WorkoutProgram, error)
	ExistsForUser(dbc dbctx.Context, userID uuid.UUID) (bool, error)
}

type programRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgramRepo(db *gorm.DB, baseLog *logger.Logger) ProgramRepo {
	return &programRepo{db: db, log: baseLog.With("repo", "ProgramRepo")}
}

func (r *programRepo) CreateProgram(dbc dbctx.Context, program *workout.WorkoutProgram) (*workout.WorkoutProgram, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if program == nil {
		return nil, errors.New("nil program")
	}
	// Days are inserted separately so the caller controls their batch.
	if err := transaction.WithContext(dbc.Ctx).Omit("Days").Create(program).Error; err != nil {
		return nil, err
	}
	return program, nil
}

func (r *programRepo) CreateDays(dbc dbctx.Context, days []*workout.WorkoutDay) ([]*workout.WorkoutDay, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(days) == 0 {
		return []*workout.WorkoutDay{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&days).Error; err != nil {
		return nil, err
	}
	return days, nil
}

// GetLatestByUser loads the user's newest program with its days ordered by
// sequence.
func (r *programRepo) GetLatestByUser(dbc dbctx.Context, userID uuid.UUID) (*workout.WorkoutProgram, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, ErrNotFound
	}
	var program workout.WorkoutProgram
	err := transaction.WithContext(dbc.Ctx).
		Preload("Days", func(q *gorm.DB) *gorm.DB { return q.Order("day_sequence ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Take(&program).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *programRepo) ExistsForUser(dbc dbctx.Context, userID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&workout.WorkoutProgram{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
