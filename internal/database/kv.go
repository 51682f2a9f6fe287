package database

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry - One persisted key (a whole collection or a singleton)
type KVEntry struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     string `gorm:"type:longtext;not null"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string { return "kv_entries" }

// KV is the store.Backend kept in a database table.
type KV struct {
	db *gorm.DB
}

func NewKV(db *gorm.DB) *KV {
	return &KV{db: db}
}

func (k *KV) Get(key string) (string, bool, error) {
	var entry KVEntry
	err := k.db.Where("`key` = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (k *KV) Set(key, value string) error {
	entry := KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return k.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (k *KV) Remove(key string) error {
	return k.db.Where("`key` = ?", key).Delete(&KVEntry{}).Error
}
