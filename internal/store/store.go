// Package store persists vdesk records changed at runtime.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/1broseidon/stacktile/internal/tiling"
)

// VDeskRecord is the stored form of a tiling.VDeskConf.
type VDeskRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Zone      int       `gorm:"not null;uniqueIndex:idx_vdesk_desk" json:"zone"`
	X         int       `gorm:"not null;uniqueIndex:idx_vdesk_desk" json:"x"`
	Y         int       `gorm:"not null;uniqueIndex:idx_vdesk_desk" json:"y"`
	NbStacks  int       `gorm:"not null" json:"nb_stacks"`
	UseRows   bool      `gorm:"not null" json:"use_rows"`
	Layout    string    `gorm:"not null;default:stacks" json:"layout"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (VDeskRecord) TableName() string {
	return "vdesks"
}

// Conf converts the record to the engine's form.
func (r VDeskRecord) Conf() tiling.VDeskConf {
	layout := tiling.LayoutKind(r.Layout)
	if layout == "" {
		layout = tiling.LayoutStacks
	}
	return tiling.VDeskConf{
		X:        r.X,
		Y:        r.Y,
		Zone:     r.Zone,
		NbStacks: r.NbStacks,
		UseRows:  r.UseRows,
		Layout:   layout,
	}
}

// Store wraps the sqlite database.
type Store struct {
	db *gorm.DB
}

var _ tiling.ConfSaver = (*Store)(nil)

// Open opens (creating if needed) the database at path and migrates the
// schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	if err := db.AutoMigrate(&VDeskRecord{}); err != nil {
		return nil, errors.Wrap(err, "failed to initialize database schema")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	return sqlDB.Close()
}

// SaveVDesk inserts or replaces the record for conf's desk.
func (s *Store) SaveVDesk(conf tiling.VDeskConf) error {
	rec := VDeskRecord{
		Zone:     conf.Zone,
		X:        conf.X,
		Y:        conf.Y,
		NbStacks: conf.NbStacks,
		UseRows:  conf.UseRows,
		Layout:   string(conf.Layout),
	}
	if rec.Layout == "" {
		rec.Layout = string(tiling.LayoutStacks)
	}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "zone"}, {Name: "x"}, {Name: "y"}},
		DoUpdates: clause.AssignmentColumns([]string{"nb_stacks", "use_rows", "layout", "updated_at"}),
	}).Create(&rec)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "failed to save vdesk %d:%d:%d", conf.Zone, conf.X, conf.Y)
	}
	return nil
}

// VDesk returns the stored record for a desk. ok is false when none exists.
func (s *Store) VDesk(zone, x, y int) (tiling.VDeskConf, bool, error) {
	var rec VDeskRecord
	result := s.db.Where("zone = ? AND x = ? AND y = ?", zone, x, y).Limit(1).Find(&rec)
	if result.Error != nil {
		return tiling.VDeskConf{}, false, errors.Wrap(result.Error, "failed to get vdesk")
	}
	if result.RowsAffected == 0 {
		return tiling.VDeskConf{}, false, nil
	}
	return rec.Conf(), true, nil
}

// VDesks lists every stored record ordered by zone, y, x.
func (s *Store) VDesks() ([]tiling.VDeskConf, error) {
	var recs []VDeskRecord
	result := s.db.Order("zone ASC, y ASC, x ASC").Find(&recs)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to list vdesks")
	}
	out := make([]tiling.VDeskConf, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Conf())
	}
	return out, nil
}

// DeleteVDesk removes a desk's record so the config file applies again.
func (s *Store) DeleteVDesk(zone, x, y int) error {
	result := s.db.Where("zone = ? AND x = ? AND y = ?", zone, x, y).Delete(&VDeskRecord{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete vdesk")
	}
	return nil
}
