package repositories

import (
	"errors"
	"strings"
	"time"

	"rencontre_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists for this user")
	ErrImageNotFound        = errors.New("profile image not found")
)

// ProfileFilter - критерии поиска анкет. Границы дат рождения уже
// посчитаны из возраста сервисом.
type ProfileFilter struct {
	Gender           models.Gender
	RelationshipGoal models.RelationshipGoal
	City             string // подстрока, без учёта регистра
	CityExact        string // точное совпадение, без учёта регистра
	Country          string
	ExcludeCity      string
	IsDiaspora       *bool
	BornAfter        *time.Time // dob >= BornAfter
	BornBefore       *time.Time // dob <= BornBefore
	ExcludeUserIDs   []string
	Limit            int
	Offset           int
}

type ProfileRepository interface {
	Create(db *gorm.DB, profile *models.Profile) error
	FindByID(db *gorm.DB, id string) (*models.Profile, error)
	FindByUserID(db *gorm.DB, userID string) (*models.Profile, error)
	Update(db *gorm.DB, profile *models.Profile) error
	TouchLastSeen(db *gorm.DB, userID string, at time.Time) error
	// Search - активные анкеты, новые пользователи первыми
	Search(db *gorm.DB, filter ProfileFilter) ([]models.Profile, int64, error)

	// Images
	CreateImage(db *gorm.DB, image *models.ProfileImage) error
	FindImage(db *gorm.DB, profileID, imageID string) (*models.ProfileImage, error)
	DeleteImage(db *gorm.DB, image *models.ProfileImage) error
	CountImages(db *gorm.DB, profileID string) (int64, error)
	HasCover(db *gorm.DB, profileID string) (bool, error)
	ClearCover(db *gorm.DB, profileID string) error

	// Views
	RecordView(db *gorm.DB, viewerID, profileID string, at time.Time) error
	CountViewsSince(db *gorm.DB, profileID string, since time.Time) (int64, error)
	CountUniqueViewers(db *gorm.DB, profileID string) (int64, error)

	// Likes
	Like(db *gorm.DB, userID, likedUserID string) error
	Unlike(db *gorm.DB, userID, likedUserID string) error
	IsLiked(db *gorm.DB, userID, likedUserID string) (bool, error)
	CountLikesReceived(db *gorm.DB, userID string) (int64, error)
	RecentLikesReceived(db *gorm.DB, userID string, limit int) ([]models.Like, error)
}

type profileRepository struct{}

func NewProfileRepository() ProfileRepository {
	return &profileRepository{}
}

// обложка первой, затем новые
func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("is_cover DESC").Order("created_at DESC")
}

func (r *profileRepository) Create(db *gorm.DB, profile *models.Profile) error {
	var count int64
	if err := db.Model(&models.Profile{}).Where("user_id = ?", profile.UserID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrProfileAlreadyExists
	}
	return db.Create(profile).Error
}

func (r *profileRepository) FindByID(db *gorm.DB, id string) (*models.Profile, error) {
	return r.findOne(db, "profiles.id = ?", id)
}

func (r *profileRepository) FindByUserID(db *gorm.DB, userID string) (*models.Profile, error) {
	return r.findOne(db, "profiles.user_id = ?", userID)
}

func (r *profileRepository) findOne(db *gorm.DB, query string, arg interface{}) (*models.Profile, error) {
	var profile models.Profile
	err := db.Preload("User").
		Preload("Images", orderedImages).
		Where(query, arg).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(db *gorm.DB, profile *models.Profile) error {
	return db.Omit(clause.Associations).Save(profile).Error
}

func (r *profileRepository) TouchLastSeen(db *gorm.DB, userID string, at time.Time) error {
	return db.Model(&models.Profile{}).Where("user_id = ?", userID).Update("last_seen", at).Error
}

func (r *profileRepository) Search(db *gorm.DB, f ProfileFilter) ([]models.Profile, int64, error) {
	query := db.Model(&models.Profile{}).
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("profiles.is_active = ?", true)

	if f.Gender != "" {
		query = query.Where("profiles.gender = ?", f.Gender)
	}
	if f.RelationshipGoal != "" {
		query = query.Where("profiles.relationship_goal = ?", f.RelationshipGoal)
	}
	if f.City != "" {
		query = query.Where("profiles.city ILIKE ?", "%"+escapeLike(f.City)+"%")
	}
	if f.CityExact != "" {
		query = query.Where("LOWER(profiles.city) = LOWER(?)", f.CityExact)
	}
	if f.Country != "" {
		query = query.Where("profiles.country = ?", f.Country)
	}
	if f.ExcludeCity != "" {
		query = query.Where("LOWER(profiles.city) <> LOWER(?)", f.ExcludeCity)
	}
	if f.IsDiaspora != nil {
		query = query.Where("profiles.is_diaspora = ?", *f.IsDiaspora)
	}
	if f.BornAfter != nil {
		query = query.Where("profiles.date_of_birth >= ?", *f.BornAfter)
	}
	if f.BornBefore != nil {
		query = query.Where("profiles.date_of_birth <= ?", *f.BornBefore)
	}
	if len(f.ExcludeUserIDs) > 0 {
		query = query.Where("profiles.user_id NOT IN ?", f.ExcludeUserIDs)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("User").Preload("Images", orderedImages).Order("users.created_at DESC")
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}

	var profiles []models.Profile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// --- Images ---

func (r *profileRepository) CreateImage(db *gorm.DB, image *models.ProfileImage) error {
	return db.Create(image).Error
}

func (r *profileRepository) FindImage(db *gorm.DB, profileID, imageID string) (*models.ProfileImage, error) {
	var image models.ProfileImage
	err := db.Where("id = ? AND profile_id = ?", imageID, profileID).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return &image, nil
}

func (r *profileRepository) DeleteImage(db *gorm.DB, image *models.ProfileImage) error {
	return db.Delete(image).Error
}

func (r *profileRepository) CountImages(db *gorm.DB, profileID string) (int64, error) {
	var count int64
	err := db.Model(&models.ProfileImage{}).Where("profile_id = ?", profileID).Count(&count).Error
	return count, err
}

func (r *profileRepository) HasCover(db *gorm.DB, profileID string) (bool, error) {
	var count int64
	err := db.Model(&models.ProfileImage{}).
		Where("profile_id = ? AND is_cover = ?", profileID, true).
		Count(&count).Error
	return count > 0, err
}

func (r *profileRepository) ClearCover(db *gorm.DB, profileID string) error {
	return db.Model(&models.ProfileImage{}).
		Where("profile_id = ? AND is_cover = ?", profileID, true).
		Update("is_cover", false).Error
}

// --- Views ---

func (r *profileRepository) RecordView(db *gorm.DB, viewerID, profileID string, at time.Time) error {
	return db.Create(&models.ProfileView{
		ViewerID:        viewerID,
		ViewedProfileID: profileID,
		ViewedAt:        at,
	}).Error
}

func (r *profileRepository) CountViewsSince(db *gorm.DB, profileID string, since time.Time) (int64, error) {
	var count int64
	err := db.Model(&models.ProfileView{}).
		Where("viewed_profile_id = ? AND viewed_at >= ?", profileID, since).
		Count(&count).Error
	return count, err
}

func (r *profileRepository) CountUniqueViewers(db *gorm.DB, profileID string) (int64, error) {
	var count int64
	err := db.Model(&models.ProfileView{}).
		Where("viewed_profile_id = ?", profileID).
		Distinct("viewer_id").
		Count(&count).Error
	return count, err
}

// --- Likes ---

// Like идемпотентен: повторный лайк ничего не меняет
func (r *profileRepository) Like(db *gorm.DB, userID, likedUserID string) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "liked_user_id"}},
		DoNothing: true,
	}).Create(&models.Like{UserID: userID, LikedUserID: likedUserID}).Error
}

func (r *profileRepository) Unlike(db *gorm.DB, userID, likedUserID string) error {
	return db.Where("user_id = ? AND liked_user_id = ?", userID, likedUserID).
		Delete(&models.Like{}).Error
}

func (r *profileRepository) IsLiked(db *gorm.DB, userID, likedUserID string) (bool, error) {
	var count int64
	err := db.Model(&models.Like{}).
		Where("user_id = ? AND liked_user_id = ?", userID, likedUserID).
		Count(&count).Error
	return count > 0, err
}

func (r *profileRepository) CountLikesReceived(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Like{}).Where("liked_user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *profileRepository) RecentLikesReceived(db *gorm.DB, userID string, limit int) ([]models.Like, error) {
	var likes []models.Like
	err := db.Preload("User").
		Where("liked_user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&likes).Error
	return likes, err
}
