package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Alwanly/service-env-state/internal/models"
	"github.com/Alwanly/service-env-state/pkg/pubsub"
)

type Repository struct {
	DB  *gorm.DB
	Pub pubsub.Publisher
}

func NewRepository(db *gorm.DB, publisher pubsub.Publisher) *Repository {
	return &Repository{DB: db, Pub: publisher}
}

type IRepository interface {
	SaveSnapshot(ctx context.Context, snapshot *models.EnvSnapshot) error
	LatestSnapshot(ctx context.Context) (*models.EnvSnapshot, error)
	ListSnapshots(ctx context.Context, limit int) ([]models.EnvSnapshot, error)
	PublishEnvUpdate(ctx context.Context, n pubsub.EnvUpdateNotification) error
}

// SaveSnapshot persists a snapshot row
func (r *Repository) SaveSnapshot(ctx context.Context, snapshot *models.EnvSnapshot) error {
	if err := r.DB.WithContext(ctx).Create(snapshot).Error; err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the highest-version snapshot, or nil when none is stored
func (r *Repository) LatestSnapshot(ctx context.Context) (*models.EnvSnapshot, error) {
	var snapshot models.EnvSnapshot
	err := r.DB.WithContext(ctx).Order("version DESC").Order("id DESC").First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}
	return &snapshot, nil
}

// ListSnapshots returns up to limit snapshots, newest first
func (r *Repository) ListSnapshots(ctx context.Context, limit int) ([]models.EnvSnapshot, error) {
	var snapshots []models.EnvSnapshot
	if err := r.DB.WithContext(ctx).Order("version DESC").Order("id DESC").Limit(limit).Find(&snapshots).Error; err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snapshots, nil
}

// PublishEnvUpdate publishes a change notification (if a publisher is configured)
func (r *Repository) PublishEnvUpdate(ctx context.Context, n pubsub.EnvUpdateNotification) error {
	if r.Pub == nil {
		// Redis not configured; agents pick the change up on their next poll
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	payload, err := n.Encode()
	if err != nil {
		return err
	}

	if err := r.Pub.Publish(ctx, pubsub.EnvUpdatesChannel, payload); err != nil {
		return fmt.Errorf("failed to publish env update: %w", err)
	}

	return nil
}
