package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"archive-session-store/internal/entity"
	"archive-session-store/internal/mapper"
	"archive-session-store/internal/model"
	"archive-session-store/internal/repository/contract"
	"archive-session-store/pkg/token"

	"gorm.io/gorm"
)

// GormSessionRepositoryImpl backs the session store with a relational table.
// The snapshot column stays an opaque blob; the database contributes only
// keyed lookup and the created_at index the sweeper scans on.
type GormSessionRepositoryImpl struct {
	db      *gorm.DB
	mapper  *mapper.SessionMapper
	idBytes int
}

func NewGormSessionRepository(db *gorm.DB, idBytes int) contract.SessionRepository {
	return &GormSessionRepositoryImpl{
		db:      db,
		mapper:  mapper.NewSessionMapper(),
		idBytes: idBytes,
	}
}

func (r *GormSessionRepositoryImpl) Create(ctx context.Context, session *entity.Session) error {
	if !token.IsValid(session.Id, r.idBytes) {
		return contract.ErrInvalidSessionId
	}

	m, err := r.mapper.ToModel(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.Id, err)
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return contract.ErrSessionExists
		}
		return fmt.Errorf("insert session %s: %w", session.Id, err)
	}
	return nil
}

func (r *GormSessionRepositoryImpl) Read(ctx context.Context, id string) (*entity.Session, error) {
	if !token.IsValid(id, r.idBytes) {
		return nil, contract.ErrInvalidSessionId
	}

	var m model.AnalysisSession
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contract.ErrSessionNotFound
		}
		return nil, fmt.Errorf("select session %s: %w", id, err)
	}

	return r.mapper.ToEntity(&m)
}

func (r *GormSessionRepositoryImpl) Exists(ctx context.Context, id string) (bool, error) {
	if !token.IsValid(id, r.idBytes) {
		return false, contract.ErrInvalidSessionId
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.AnalysisSession{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count session %s: %w", id, err)
	}
	return count > 0, nil
}

func (r *GormSessionRepositoryImpl) Delete(ctx context.Context, id string) error {
	if !token.IsValid(id, r.idBytes) {
		return contract.ErrInvalidSessionId
	}

	if err := r.db.WithContext(ctx).Delete(&model.AnalysisSession{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func (r *GormSessionRepositoryImpl) Age(ctx context.Context, id string) (time.Duration, error) {
	if !token.IsValid(id, r.idBytes) {
		return 0, contract.ErrInvalidSessionId
	}

	var m model.AnalysisSession
	if err := r.db.WithContext(ctx).Select("id", "created_at").First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, contract.ErrSessionNotFound
		}
		return 0, fmt.Errorf("select session age %s: %w", id, err)
	}

	return time.Since(m.CreatedAt), nil
}

func (r *GormSessionRepositoryImpl) ListIds(ctx context.Context) ([]string, error) {
	ids := make([]string, 0)
	if err := r.db.WithContext(ctx).Model(&model.AnalysisSession{}).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return ids, nil
}
