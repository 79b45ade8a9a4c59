package services

import (
	"sort"

	"rencontre_backend/internal/models"
	"rencontre_backend/internal/services/dto"
)

const (
	suggestionsPerGroup = 3
	suggestionsLimit    = 6
	activityPerKind     = 5
	activityLimit       = 10
)

// Шаги заполнения анкеты
const (
	StepBasicInfo        = "basic_info"
	StepProfilePhoto     = "profile_photo"
	StepBio              = "bio"
	StepRelationshipGoal = "relationship_goal"
	StepCoverPhoto       = "cover_photo"
)

// Уровни популярности
const (
	LevelStar     = "Star"
	LevelPopular  = "Populaire"
	LevelRising   = "En hausse"
	LevelBeginner = "Débutant"
)

// profileCompletion - 5 шагов, процент целый. Images должны быть загружены.
func profileCompletion(p *models.Profile) *dto.ProfileCompletion {
	hasCover := false
	for _, img := range p.Images {
		if img.IsCover {
			hasCover = true
			break
		}
	}

	steps := []struct {
		name string
		done bool
	}{
		{StepBasicInfo, p.Gender != "" && !p.DateOfBirth.IsZero() && p.City != ""},
		{StepProfilePhoto, len(p.Images) > 0},
		{StepBio, len([]rune(p.Bio)) > 20},
		{StepRelationshipGoal, p.RelationshipGoal != ""},
		{StepCoverPhoto, hasCover},
	}

	done := 0
	missing := make([]string, 0, len(steps))
	for _, step := range steps {
		if step.done {
			done++
		} else {
			missing = append(missing, step.name)
		}
	}

	return &dto.ProfileCompletion{
		Percent: done * 100 / len(steps),
		Missing: missing,
	}
}

func popularity(imageCount int, bio string, likes int64) *dto.Popularity {
	score := 0
	if imageCount > 0 {
		score += 25
	}
	if imageCount >= 3 {
		score += 15
	}
	if len([]rune(bio)) > 50 {
		score += 20
	}
	if likes > 0 {
		score += int(min(40, likes*2))
	}

	level := LevelBeginner
	switch {
	case score >= 80:
		level = LevelStar
	case score >= 60:
		level = LevelPopular
	case score >= 40:
		level = LevelRising
	}
	return &dto.Popularity{Score: score, Level: level}
}

// mergeSuggestions склеивает группы по приоритету без повторов
func mergeSuggestions(limit int, groups ...[]models.Profile) []models.Profile {
	seen := make(map[string]bool)
	result := make([]models.Profile, 0, limit)
	for _, group := range groups {
		for _, p := range group {
			if len(result) >= limit {
				return result
			}
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			result = append(result, p)
		}
	}
	return result
}

// mergeActivity - новые сверху, не больше limit
func mergeActivity(limit int, groups ...[]*dto.ActivityItem) []*dto.ActivityItem {
	var items []*dto.ActivityItem
	for _, g := range groups {
		items = append(items, g...)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		items = []*dto.ActivityItem{}
	}
	return items
}
