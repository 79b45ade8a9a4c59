package services

import (
	"strings"

	"rencontre_backend/internal/models"
	"rencontre_backend/internal/repositories"
	"rencontre_backend/internal/services/dto"
	"rencontre_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	MinSearchAge = 18
	MaxSearchAge = 99

	SearchLimitQuery = 20
	SearchLimitForm  = 50
)

type SearchService interface {
	// Search - limit 20 для GET и 50 для POST
	Search(db *gorm.DB, req *dto.SearchRequest, limit int) (*dto.SearchResponse, error)
}

type searchService struct {
	profileRepo repositories.ProfileRepository
	media       MediaService
}

func NewSearchService(profileRepo repositories.ProfileRepository, media MediaService) SearchService {
	return &searchService{
		profileRepo: profileRepo,
		media:       media,
	}
}

func (s *searchService) Search(db *gorm.DB, req *dto.SearchRequest, limit int) (*dto.SearchResponse, error) {
	filter, err := buildSearchFilter(req)
	if err != nil {
		return nil, err
	}
	filter.Limit = limit

	profiles, total, err := s.profileRepo.Search(db, *filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.SearchResponse{
		Results: buildProfileList(ctxOf(db), s.media, profiles),
		Count:   total,
	}, nil
}

// buildSearchFilter переводит возраст в границы даты рождения:
// min_age -> dob <= today - min, max_age -> dob >= today - (max+1) лет
func buildSearchFilter(req *dto.SearchRequest) (*repositories.ProfileFilter, error) {
	filter := &repositories.ProfileFilter{
		Gender:           models.Gender(req.Gender),
		RelationshipGoal: models.RelationshipGoal(req.RelationshipGoal),
		City:             strings.TrimSpace(req.City),
		IsDiaspora:       req.IsDiaspora,
	}

	if req.MinAge != nil && (*req.MinAge < MinSearchAge || *req.MinAge > MaxSearchAge) {
		return nil, apperrors.FieldError("min_age", "Age must be between 18 and 99")
	}
	if req.MaxAge != nil && (*req.MaxAge < MinSearchAge || *req.MaxAge > MaxSearchAge) {
		return nil, apperrors.FieldError("max_age", "Age must be between 18 and 99")
	}
	if req.MinAge != nil && req.MaxAge != nil && *req.MinAge > *req.MaxAge {
		return nil, apperrors.FieldError("min_age", "min_age cannot be greater than max_age")
	}

	today := timeNow()
	if req.MinAge != nil {
		bornBefore := today.AddDate(-*req.MinAge, 0, 0)
		filter.BornBefore = &bornBefore
	}
	if req.MaxAge != nil {
		bornAfter := today.AddDate(-(*req.MaxAge + 1), 0, 0)
		filter.BornAfter = &bornAfter
	}

	return filter, nil
}
