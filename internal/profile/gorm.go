package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type profileRow struct {
	ParticipantID int `gorm:"primaryKey;autoIncrement:false"`
	Name          string
	BaseModel     string
	APIBase       string
	APIKey        string
	AgentClass    string
	UpdatedAt     time.Time
}

func (profileRow) TableName() string { return "participant_profiles" }

func (r profileRow) profile() Profile {
	return Profile{
		ParticipantID: r.ParticipantID,
		Name:          r.Name,
		BaseModel:     r.BaseModel,
		APIBase:       r.APIBase,
		APIKey:        r.APIKey,
		AgentClass:    r.AgentClass,
	}
}

// GormStore keeps profiles in a SQL table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&profileRow{}); err != nil {
		return nil, fmt.Errorf("profile: migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(ctx context.Context, id int) (Profile, error) {
	var row profileRow
	err := s.db.WithContext(ctx).First(&row, "participant_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("profile: get %d: %w", id, err)
	}
	return row.profile(), nil
}

func (s *GormStore) GetMany(ctx context.Context, ids []int) ([]Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []profileRow
	if err := s.db.WithContext(ctx).Where("participant_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("profile: get many: %w", err)
	}
	out := make([]Profile, len(rows))
	for i, r := range rows {
		out[i] = r.profile()
	}
	return out, nil
}

func (s *GormStore) Put(ctx context.Context, p Profile) error {
	row := profileRow{
		ParticipantID: p.ParticipantID,
		Name:          p.Name,
		BaseModel:     p.BaseModel,
		APIBase:       p.APIBase,
		APIKey:        p.APIKey,
		AgentClass:    p.AgentClass,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "participant_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("profile: put %d: %w", p.ParticipantID, err)
	}
	return nil
}
