package services

import (
	"context"
	"time"

	"rencontre_backend/internal/models"
	"rencontre_backend/internal/services/dto"

	"gorm.io/gorm"
)

const signedURLExpiry = 15 * time.Minute

// timeNow подменяется в тестах
var timeNow = time.Now

// ctxOf - контекст запроса, который DBMiddleware кладёт в *gorm.DB
func ctxOf(db *gorm.DB) context.Context {
	if db != nil && db.Statement != nil && db.Statement.Context != nil {
		return db.Statement.Context
	}
	return context.Background()
}

func participantResponse(ctx context.Context, media MediaService, user *models.User) *dto.ParticipantResponse {
	if user == nil {
		return nil
	}
	return &dto.ParticipantResponse{
		ID:        user.ID,
		Username:  user.Username,
		FullName:  user.FullName(),
		AvatarURL: media.URL(ctx, user.Avatar),
	}
}
