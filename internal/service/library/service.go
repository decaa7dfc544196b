package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/haneimo/harts-viewer/internal/model"
	"github.com/haneimo/harts-viewer/internal/service/replay"
	appErr "github.com/haneimo/harts-viewer/pkg/errors"
	"github.com/haneimo/harts-viewer/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service persists uploaded replay logs so they can be re-opened
// later. The raw JSON payload is stored verbatim; metadata columns
// exist only so listings do not need to re-parse it.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type ListResult struct {
	Items []model.ReplayLog
	Total int64
}

// SaveLog validates and stores a raw replay log. Malformed payloads
// are rejected wholesale; nothing partial is written.
func (s *Service) SaveLog(ctx context.Context, name string, raw []byte) (*model.ReplayLog, error) {
	lg, err := replay.ParseGameLog(raw)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = lg.GameType
		if lg.StartTime != "" {
			name = fmt.Sprintf("%s %s", lg.GameType, lg.StartTime)
		}
	}

	entry := model.ReplayLog{
		Name:        name,
		GameType:    lg.GameType,
		StartTime:   lg.StartTime,
		TurnCount:   len(lg.Turns),
		RoundCount:  replay.MaxRounds(lg),
		PayloadJSON: datatypes.JSON(raw),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}
	logger.Log.Info("replay log saved",
		zap.Int64("id", entry.ID),
		zap.String("name", entry.Name),
		zap.Int("turns", entry.TurnCount),
	)
	return &entry, nil
}

func (s *Service) List(ctx context.Context, page, size int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}

	var total int64
	if err := s.db.WithContext(ctx).
		Model(&model.ReplayLog{}).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var items []model.ReplayLog
	if total > 0 {
		offset := (page - 1) * size
		if err := s.db.WithContext(ctx).
			Model(&model.ReplayLog{}).
			Omit("payload_json").
			Order("id DESC").
			Limit(size).
			Offset(offset).
			Find(&items).Error; err != nil {
			return nil, err
		}
	}

	return &ListResult{Items: items, Total: total}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.ReplayLog, error) {
	var entry model.ReplayLog
	if err := s.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErr.ErrLogNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// LoadGameLog fetches a stored entry and parses it back into a
// GameLog ready for a session.
func (s *Service) LoadGameLog(ctx context.Context, id int64) (*model.GameLog, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return replay.ParseGameLog(entry.PayloadJSON)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&model.ReplayLog{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return appErr.ErrLogNotFound
	}
	return nil
}
