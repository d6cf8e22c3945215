package mapper

import (
	"archive-session-store/internal/entity"
	"archive-session-store/internal/model"
	"archive-session-store/pkg/snapshot"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

// ToModel encodes the artifact into the snapshot column. The database only
// ever sees the opaque blob.
func (m *SessionMapper) ToModel(s *entity.Session) (*model.AnalysisSession, error) {
	if s == nil {
		return nil, nil
	}

	blob, err := snapshot.Encode(s.Artifact)
	if err != nil {
		return nil, err
	}

	return &model.AnalysisSession{
		Id:        s.Id,
		CreatedAt: s.CreatedAt,
		Snapshot:  blob,
	}, nil
}

// ToEntity decodes the snapshot column; a row that fails to decode surfaces
// snapshot.ErrCorruptSnapshot to the caller.
func (m *SessionMapper) ToEntity(s *model.AnalysisSession) (*entity.Session, error) {
	if s == nil {
		return nil, nil
	}

	artifact, err := snapshot.Decode(s.Snapshot)
	if err != nil {
		return nil, err
	}

	return &entity.Session{
		Id:        s.Id,
		CreatedAt: s.CreatedAt,
		Artifact:  artifact,
	}, nil
}
