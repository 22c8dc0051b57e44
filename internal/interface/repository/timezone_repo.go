package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"flightsched-service/internal/domain/entity"
	"flightsched-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormTimezoneRepository reads the m_timezone_list airport reference table
type GormTimezoneRepository struct {
	db *gorm.DB
}

// NewGormTimezoneRepository creates a new GORM timezone repository
func NewGormTimezoneRepository(db *gorm.DB) repository.TimezoneRepository {
	return &GormTimezoneRepository{
		db: db,
	}
}

// Timezonelist GORM model for database mapping
type Timezonelist struct {
	ID          uint           `gorm:"primaryKey"`
	AirportCode string         `gorm:"column:airportcode;unique"`
	AirportName string         `gorm:"column:airport_name"`
	CityCode    string         `gorm:"column:citycode"`
	CityName    string         `gorm:"column:cityname"`
	GmtTz       string         `gorm:"column:gmttz"`
	TzName      string         `gorm:"column:tzname"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the default table name
func (Timezonelist) TableName() string {
	return "m_timezone_list"
}

// GetByAirportCode finds an airport by IATA code
func (r *GormTimezoneRepository) GetByAirportCode(ctx context.Context, code string) (*entity.Timezone, error) {
	var tz Timezonelist
	result := r.db.WithContext(ctx).Where("airportcode = ?", strings.ToUpper(code)).First(&tz)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, result.Error
	}

	return &entity.Timezone{
		ID:          tz.ID,
		AirportCode: tz.AirportCode,
		AirportName: tz.AirportName,
		CityCode:    tz.CityCode,
		CityName:    tz.CityName,
		GmtTz:       tz.GmtTz,
		TzName:      tz.TzName,
		CreatedAt:   tz.CreatedAt,
		UpdatedAt:   tz.UpdatedAt,
		DeletedAt:   tz.DeletedAt,
	}, nil
}
