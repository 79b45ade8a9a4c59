package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"rencontre_backend/internal/imageprocessor"
	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/models"
	"rencontre_backend/internal/repositories"
	"rencontre_backend/internal/services/dto"
	"rencontre_backend/internal/utils"
	"rencontre_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const ProfilesPageSize = 12

type ProfileService interface {
	ListProfiles(db *gorm.DB, page int) (*dto.PaginatedResponse, error)
	// GetProfile - viewerID пустой для анонимов; чужой просмотр пишется в ProfileView
	GetProfile(db *gorm.DB, profileID, viewerID string) (*dto.ProfileDetailResponse, error)
	GetMyProfile(db *gorm.DB, userID string) (*dto.ProfileResponse, error)
	UpdateMyProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)

	AddImage(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader, isCover bool) (*dto.ProfileImageResponse, error)
	DeleteImage(ctx context.Context, db *gorm.DB, userID, imageID string) error

	Like(db *gorm.DB, userID, profileID string) (*dto.LikeResponse, error)
	Unlike(db *gorm.DB, userID, profileID string) (*dto.LikeResponse, error)

	GetDashboard(db *gorm.DB, userID string) (*dto.DashboardResponse, error)
}

type profileService struct {
	profileRepo repositories.ProfileRepository
	userRepo    repositories.UserRepository
	chatRepo    repositories.ChatRepository
	media       MediaService
}

func NewProfileService(
	profileRepo repositories.ProfileRepository,
	userRepo repositories.UserRepository,
	chatRepo repositories.ChatRepository,
	media MediaService,
) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		chatRepo:    chatRepo,
		media:       media,
	}
}

// DefaultProfile - анкета, которая создаётся вместе с пользователем
func DefaultProfile(userID string, now time.Time) *models.Profile {
	return &models.Profile{
		UserID:           userID,
		Gender:           models.GenderMale,
		DateOfBirth:      now.AddDate(0, 0, -18*365).Truncate(24 * time.Hour),
		City:             "Cotonou",
		Country:          "Bénin",
		RelationshipGoal: models.GoalSerious,
		IsActive:         true,
	}
}

func (s *profileService) ListProfiles(db *gorm.DB, page int) (*dto.PaginatedResponse, error) {
	profiles, total, err := s.profileRepo.Search(db, repositories.ProfileFilter{
		Limit:  ProfilesPageSize,
		Offset: dto.Offset(page, ProfilesPageSize),
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPaginatedResponse(s.profileList(ctxOf(db), profiles), total, page, ProfilesPageSize), nil
}

func (s *profileService) GetProfile(db *gorm.DB, profileID, viewerID string) (*dto.ProfileDetailResponse, error) {
	profile, err := s.profileRepo.FindByID(db, profileID)
	if err != nil {
		return nil, handleProfileError(err)
	}

	resp := &dto.ProfileDetailResponse{
		ProfileResponse: s.profileResponse(ctxOf(db), profile),
		IsOwner:         viewerID != "" && viewerID == profile.UserID,
	}
	if viewerID == "" || resp.IsOwner {
		return resp, nil
	}

	if err := s.profileRepo.RecordView(db, viewerID, profile.ID, timeNow()); err != nil {
		return nil, apperrors.InternalError(err)
	}

	liked, err := s.profileRepo.IsLiked(db, viewerID, profile.UserID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp.IsLiked = liked

	thread, err := getOrCreateThread(db, s.chatRepo, viewerID, profile.UserID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp.ThreadID = thread.ID

	return resp, nil
}

func (s *profileService) GetMyProfile(db *gorm.DB, userID string) (*dto.ProfileResponse, error) {
	profile, err := s.ownProfile(db, userID)
	if err != nil {
		return nil, err
	}
	return s.profileResponse(ctxOf(db), profile), nil
}

func (s *profileService) UpdateMyProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	profile, err := s.ownProfile(db, userID)
	if err != nil {
		return nil, err
	}

	if req.Gender != nil {
		profile.Gender = models.Gender(*req.Gender)
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse(dto.DateLayout, *req.DateOfBirth)
		if err != nil {
			return nil, apperrors.FieldError("date_of_birth", "Use YYYY-MM-DD")
		}
		if dob.After(timeNow()) {
			return nil, apperrors.FieldError("date_of_birth", "Date of birth cannot be in the future")
		}
		profile.DateOfBirth = dob
	}
	if req.Bio != nil {
		profile.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.City != nil {
		profile.City = strings.TrimSpace(*req.City)
	}
	if req.Country != nil {
		profile.Country = strings.TrimSpace(*req.Country)
	}
	if req.IsDiaspora != nil {
		profile.IsDiaspora = *req.IsDiaspora
	}
	if req.RelationshipGoal != nil {
		profile.RelationshipGoal = models.RelationshipGoal(*req.RelationshipGoal)
	}
	if req.IsActive != nil {
		profile.IsActive = *req.IsActive
	}

	if err := s.profileRepo.Update(db, profile); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.profileResponse(ctxOf(db), profile), nil
}

// AddImage сохраняет оригинал и миниатюру; с isCover прежняя обложка теряет флаг
func (s *profileService) AddImage(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader, isCover bool) (*dto.ProfileImageResponse, error) {
	profile, err := s.ownProfile(db, userID)
	if err != nil {
		return nil, err
	}

	original, err := s.media.SaveImage(ctx, file, "profiles", imageprocessor.SizeLarge)
	if err != nil {
		return nil, err
	}
	thumb, err := s.media.SaveImage(ctx, file, "profiles/thumbs", imageprocessor.SizeThumbnail)
	if err != nil {
		s.media.Delete(ctx, original.Path)
		return nil, err
	}

	image := &models.ProfileImage{
		ProfileID: profile.ID,
		Image:     original.Path,
		Thumbnail: thumb.Path,
		IsCover:   isCover,
	}

	cleanup := func() {
		s.media.Delete(ctx, original.Path)
		s.media.Delete(ctx, thumb.Path)
	}

	tx := db.Begin()
	if tx.Error != nil {
		cleanup()
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if isCover {
		if err := s.profileRepo.ClearCover(tx, profile.ID); err != nil {
			cleanup()
			return nil, apperrors.InternalError(err)
		}
	}
	if err := s.profileRepo.CreateImage(tx, image); err != nil {
		cleanup()
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		cleanup()
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "profile image added", "profile_id", profile.ID, "image_id", image.ID, "is_cover", isCover)
	return s.imageResponse(ctx, image), nil
}

func (s *profileService) DeleteImage(ctx context.Context, db *gorm.DB, userID, imageID string) error {
	profile, err := s.ownProfile(db, userID)
	if err != nil {
		return err
	}

	image, err := s.profileRepo.FindImage(db, profile.ID, imageID)
	if err != nil {
		return handleProfileError(err)
	}

	if err := s.profileRepo.DeleteImage(db, image); err != nil {
		return apperrors.InternalError(err)
	}

	s.media.Delete(ctx, image.Image)
	s.media.Delete(ctx, image.Thumbnail)
	return nil
}

func (s *profileService) Like(db *gorm.DB, userID, profileID string) (*dto.LikeResponse, error) {
	target, err := s.profileRepo.FindByID(db, profileID)
	if err != nil {
		return nil, handleProfileError(err)
	}
	if target.UserID == userID {
		return nil, apperrors.ErrCannotLikeSelf
	}

	if err := s.profileRepo.Like(db, userID, target.UserID); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.LikeResponse{Liked: true}, nil
}

func (s *profileService) Unlike(db *gorm.DB, userID, profileID string) (*dto.LikeResponse, error) {
	target, err := s.profileRepo.FindByID(db, profileID)
	if err != nil {
		return nil, handleProfileError(err)
	}
	if target.UserID == userID {
		return nil, apperrors.ErrCannotLikeSelf
	}

	if err := s.profileRepo.Unlike(db, userID, target.UserID); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.LikeResponse{Liked: false}, nil
}

func (s *profileService) GetDashboard(db *gorm.DB, userID string) (*dto.DashboardResponse, error) {
	ctx := ctxOf(db)

	profile, err := s.profileRepo.FindByUserID(db, userID)
	if errors.Is(err, repositories.ErrProfileNotFound) {
		// анкета могла пропасть у старых аккаунтов, создаём минимальную
		if err := s.profileRepo.Create(db, DefaultProfile(userID, timeNow())); err != nil {
			return nil, apperrors.InternalError(err)
		}
		profile, err = s.profileRepo.FindByUserID(db, userID)
	}
	if err != nil {
		return nil, handleProfileError(err)
	}

	stats, err := s.dashboardStats(db, profile)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	activity, err := s.recentActivity(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	suggestions, err := s.suggestions(db, profile)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.DashboardResponse{
		Profile:        s.profileResponse(ctx, profile),
		Completion:     profileCompletion(profile),
		Stats:          stats,
		RecentActivity: activity,
		Suggestions:    s.profileList(ctx, suggestions),
		Popularity:     popularity(len(profile.Images), profile.Bio, stats.LikesReceived),
	}, nil
}

func (s *profileService) dashboardStats(db *gorm.DB, profile *models.Profile) (*dto.DashboardStats, error) {
	var (
		stats dto.DashboardStats
		err   error
	)
	if stats.VisitsLastWeek, err = s.profileRepo.CountViewsSince(db, profile.ID, timeNow().AddDate(0, 0, -7)); err != nil {
		return nil, err
	}
	if stats.UniqueVisitors, err = s.profileRepo.CountUniqueViewers(db, profile.ID); err != nil {
		return nil, err
	}
	if stats.UnreadMessages, err = s.chatRepo.CountUnreadForUser(db, profile.UserID); err != nil {
		return nil, err
	}
	if stats.ActiveThreads, err = s.chatRepo.CountActiveThreads(db, profile.UserID); err != nil {
		return nil, err
	}
	if stats.LikesReceived, err = s.profileRepo.CountLikesReceived(db, profile.UserID); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *profileService) recentActivity(db *gorm.DB, userID string) ([]*dto.ActivityItem, error) {
	ctx := ctxOf(db)

	likes, err := s.profileRepo.RecentLikesReceived(db, userID, activityPerKind)
	if err != nil {
		return nil, err
	}
	likeItems := make([]*dto.ActivityItem, 0, len(likes))
	for i := range likes {
		likeItems = append(likeItems, &dto.ActivityItem{
			Type:      "like",
			User:      participantResponse(ctx, s.media, likes[i].User),
			CreatedAt: likes[i].CreatedAt,
		})
	}

	messages, err := s.chatRepo.FindRecentReceived(db, userID, activityPerKind)
	if err != nil {
		return nil, err
	}
	messageItems := make([]*dto.ActivityItem, 0, len(messages))
	for _, m := range messages {
		sender, err := s.userRepo.FindByID(db, m.SenderID)
		if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
			return nil, err
		}
		preview := utils.Truncate(m.Content, 50)
		if preview == "" {
			preview = "Photo"
		}
		messageItems = append(messageItems, &dto.ActivityItem{
			Type:      "message",
			User:      participantResponse(ctx, s.media, sender),
			ThreadID:  m.ThreadID,
			Preview:   preview,
			CreatedAt: m.CreatedAt,
		})
	}

	return mergeActivity(activityLimit, likeItems, messageItems), nil
}

// suggestions - по приоритету: тот же город, диаспора, та же страна
func (s *profileService) suggestions(db *gorm.DB, profile *models.Profile) ([]models.Profile, error) {
	base := repositories.ProfileFilter{
		Gender:         profile.Gender.Opposite(),
		ExcludeUserIDs: []string{profile.UserID},
		Limit:          suggestionsPerGroup,
	}

	var groups [][]models.Profile

	// без города группы "тот же город" нет, иначе в неё попали бы все анкеты
	if profile.City != "" {
		sameCity := base
		sameCity.CityExact = profile.City
		found, _, err := s.profileRepo.Search(db, sameCity)
		if err != nil {
			return nil, err
		}
		groups = append(groups, found)
	}

	if profile.IsDiaspora {
		diaspora := base
		yes := true
		diaspora.IsDiaspora = &yes
		found, _, err := s.profileRepo.Search(db, diaspora)
		if err != nil {
			return nil, err
		}
		groups = append(groups, found)
	}

	sameCountry := base
	sameCountry.Country = profile.Country
	sameCountry.ExcludeCity = profile.City
	found, _, err := s.profileRepo.Search(db, sameCountry)
	if err != nil {
		return nil, err
	}
	groups = append(groups, found)

	return mergeSuggestions(suggestionsLimit, groups...), nil
}

func (s *profileService) ownProfile(db *gorm.DB, userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		return nil, handleProfileError(err)
	}
	return profile, nil
}

func (s *profileService) profileList(ctx context.Context, profiles []models.Profile) []*dto.ProfileResponse {
	return buildProfileList(ctx, s.media, profiles)
}

func (s *profileService) profileResponse(ctx context.Context, p *models.Profile) *dto.ProfileResponse {
	return buildProfileResponse(ctx, s.media, p)
}

func (s *profileService) imageResponse(ctx context.Context, img *models.ProfileImage) *dto.ProfileImageResponse {
	return buildImageResponse(ctx, s.media, img)
}

func buildProfileList(ctx context.Context, media MediaService, profiles []models.Profile) []*dto.ProfileResponse {
	items := make([]*dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, buildProfileResponse(ctx, media, &profiles[i]))
	}
	return items
}

func buildProfileResponse(ctx context.Context, media MediaService, p *models.Profile) *dto.ProfileResponse {
	resp := &dto.ProfileResponse{
		ID:               p.ID,
		User:             participantResponse(ctx, media, p.User),
		Gender:           string(p.Gender),
		Age:              p.Age(timeNow()),
		Bio:              p.Bio,
		City:             p.City,
		Country:          p.Country,
		IsDiaspora:       p.IsDiaspora,
		RelationshipGoal: string(p.RelationshipGoal),
		IsActive:         p.IsActive,
		LastSeen:         p.LastSeen,
		Images:           make([]*dto.ProfileImageResponse, 0, len(p.Images)),
	}
	if !p.DateOfBirth.IsZero() {
		resp.DateOfBirth = p.DateOfBirth.Format(dto.DateLayout)
	}
	for i := range p.Images {
		img := buildImageResponse(ctx, media, &p.Images[i])
		if p.Images[i].IsCover && resp.CoverURL == "" {
			resp.CoverURL = img.ImageURL
		}
		resp.Images = append(resp.Images, img)
	}
	return resp
}

func buildImageResponse(ctx context.Context, media MediaService, img *models.ProfileImage) *dto.ProfileImageResponse {
	return &dto.ProfileImageResponse{
		ID:           img.ID,
		ImageURL:     media.URL(ctx, img.Image),
		ThumbnailURL: media.URL(ctx, img.Thumbnail),
		IsCover:      img.IsCover,
		CreatedAt:    img.CreatedAt,
	}
}

func handleProfileError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrProfileNotFound):
		return apperrors.NewNotFoundError("profile", "Profile not found")
	case errors.Is(err, repositories.ErrImageNotFound):
		return apperrors.NewNotFoundError("profile", "Image not found")
	}
	return apperrors.InternalError(err)
}
