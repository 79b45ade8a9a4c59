package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"rencontre_backend/internal/imageprocessor"
	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/metrics"
	"rencontre_backend/internal/models/chat"
	"rencontre_backend/internal/repositories"
	"rencontre_backend/internal/services/dto"
	"rencontre_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	threadMessagesLimit = 50
	ThreadsPageSize     = 20
	EventNewMessage     = "new_message"
)

// MessageNotifier - доставка событий подключённым клиентам (websocket-хаб)
type MessageNotifier interface {
	SendToUsers(userIDs []string, event interface{})
}

type ChatService interface {
	ListThreads(db *gorm.DB, userID string, page, pageSize int) (*dto.ThreadListResponse, error)
	// GetThread отдаёт последние сообщения и помечает чужие прочитанными
	GetThread(db *gorm.DB, threadID, userID string) (*dto.ThreadDetailResponse, error)
	SendMessage(ctx context.Context, db *gorm.DB, threadID, userID, content string, image *multipart.FileHeader) (*dto.MessageResponse, error)
	Poll(db *gorm.DB, threadID, userID string, lastID uint64) (*dto.PollResponse, error)
	Check(db *gorm.DB, threadID, userID string, lastID uint64) (*dto.CheckResponse, error)
	StartThread(db *gorm.DB, userID, otherUserID string) (*dto.ThreadResponse, error)
	UnreadCount(db *gorm.DB, userID string) (*dto.UnreadCountResponse, error)
}

type chatService struct {
	chatRepo repositories.ChatRepository
	userRepo repositories.UserRepository
	media    MediaService
	notifier MessageNotifier
}

func NewChatService(
	chatRepo repositories.ChatRepository,
	userRepo repositories.UserRepository,
	media MediaService,
	notifier MessageNotifier,
) ChatService {
	return &chatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
		media:    media,
		notifier: notifier,
	}
}

func (s *chatService) ListThreads(db *gorm.DB, userID string, page, pageSize int) (*dto.ThreadListResponse, error) {
	threads, total, err := s.chatRepo.FindUserThreads(db, userID, pageSize, dto.Offset(page, pageSize))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.ThreadResponse, 0, len(threads))
	for i := range threads {
		resp, err := s.buildThreadResponse(db, &threads[i], userID)
		if err != nil {
			return nil, err
		}
		items = append(items, resp)
	}

	totalUnread, err := s.chatRepo.CountUnreadForUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.ThreadListResponse{
		Threads:     dto.NewPaginatedResponse(items, total, page, pageSize),
		TotalUnread: totalUnread,
	}, nil
}

func (s *chatService) GetThread(db *gorm.DB, threadID, userID string) (*dto.ThreadDetailResponse, error) {
	thread, err := s.loadThreadFor(db, threadID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.chatRepo.MarkThreadRead(db, thread.ID, userID); err != nil {
		return nil, apperrors.InternalError(err)
	}

	messages, err := s.chatRepo.FindRecentMessages(db, thread.ID, threadMessagesLimit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	threadResp, err := s.buildThreadResponse(db, thread, userID)
	if err != nil {
		return nil, err
	}

	ctx := ctxOf(db)
	resp := &dto.ThreadDetailResponse{
		Thread:   threadResp,
		Messages: make([]*dto.MessageResponse, 0, len(messages)),
	}
	for i := range messages {
		resp.Messages = append(resp.Messages, s.messageResponse(ctx, &messages[i], userID))
		resp.LastMessageID = messages[i].ID
	}
	return resp, nil
}

func (s *chatService) SendMessage(ctx context.Context, db *gorm.DB, threadID, userID, content string, image *multipart.FileHeader) (*dto.MessageResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" && image == nil {
		return nil, apperrors.ErrEmptyMessage
	}

	thread, err := s.loadThreadFor(db, threadID, userID)
	if err != nil {
		return nil, err
	}

	message := &chat.Message{
		ThreadID: thread.ID,
		SenderID: userID,
		Content:  content,
	}

	if image != nil {
		stored, err := s.media.SaveImage(ctx, image, "messages", imageprocessor.SizeLarge)
		if err != nil {
			return nil, err
		}
		message.Image = stored.Path
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.chatRepo.CreateMessage(tx, message); err != nil {
		s.media.Delete(ctx, message.Image)
		return nil, apperrors.InternalError(err)
	}
	if err := s.chatRepo.TouchThread(tx, thread.ID, timeNow()); err != nil {
		s.media.Delete(ctx, message.Image)
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		s.media.Delete(ctx, message.Image)
		return nil, apperrors.InternalError(err)
	}

	metrics.MessagesSent.Inc()
	logger.CtxDebug(ctx, "message sent", "thread_id", thread.ID, "message_id", message.ID)

	resp := s.messageResponse(ctx, message, userID)
	s.notify(thread, resp)
	return resp, nil
}

// Poll - новые чужие сообщения после lastID, сразу помечаются прочитанными
func (s *chatService) Poll(db *gorm.DB, threadID, userID string, lastID uint64) (*dto.PollResponse, error) {
	thread, err := s.loadThreadFor(db, threadID, userID)
	if err != nil {
		return nil, err
	}

	messages, err := s.chatRepo.FindMessagesAfter(db, thread.ID, lastID, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	ctx := ctxOf(db)
	resp := &dto.PollResponse{
		Messages:      make([]*dto.MessageResponse, 0, len(messages)),
		LastMessageID: lastID,
	}
	ids := make([]uint64, 0, len(messages))
	for i := range messages {
		messages[i].IsRead = true
		ids = append(ids, messages[i].ID)
		resp.Messages = append(resp.Messages, s.messageResponse(ctx, &messages[i], userID))
		if messages[i].ID > resp.LastMessageID {
			resp.LastMessageID = messages[i].ID
		}
	}

	if err := s.chatRepo.MarkRead(db, ids); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return resp, nil
}

// Check - то же, что Poll, но без выборки и без пометки прочитанным
func (s *chatService) Check(db *gorm.DB, threadID, userID string, lastID uint64) (*dto.CheckResponse, error) {
	thread, err := s.loadThreadFor(db, threadID, userID)
	if err != nil {
		return nil, err
	}

	count, err := s.chatRepo.CountMessagesAfter(db, thread.ID, lastID, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.CheckResponse{HasNew: count > 0, NewCount: count}, nil
}

func (s *chatService) StartThread(db *gorm.DB, userID, otherUserID string) (*dto.ThreadResponse, error) {
	if userID == otherUserID {
		return nil, apperrors.ErrSelfConversation
	}

	exists, err := s.userRepo.Exists(db, otherUserID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !exists {
		return nil, apperrors.NewNotFoundError("user", "User not found")
	}

	thread, err := getOrCreateThread(db, s.chatRepo, userID, otherUserID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.buildThreadResponse(db, thread, userID)
}

func (s *chatService) UnreadCount(db *gorm.DB, userID string) (*dto.UnreadCountResponse, error) {
	count, err := s.chatRepo.CountUnreadForUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.UnreadCountResponse{UnreadCount: count}, nil
}

// getOrCreateThread - диалог ровно из двух участников, создаётся в транзакции
func getOrCreateThread(db *gorm.DB, chatRepo repositories.ChatRepository, userA, userB string) (*chat.Thread, error) {
	thread, err := chatRepo.FindThreadBetween(db, userA, userB)
	if err == nil {
		return thread, nil
	}
	if !errors.Is(err, repositories.ErrThreadNotFound) {
		return nil, err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	// повторная проверка внутри транзакции
	if existing, err := chatRepo.FindThreadBetween(tx, userA, userB); err == nil {
		return existing, nil
	}

	thread = &chat.Thread{
		IsActive: true,
		Participants: []chat.ThreadParticipant{
			{UserID: userA},
			{UserID: userB},
		},
	}
	if err := chatRepo.CreateThread(tx, thread); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return thread, nil
}

func (s *chatService) loadThreadFor(db *gorm.DB, threadID, userID string) (*chat.Thread, error) {
	thread, err := s.chatRepo.FindThreadByID(db, threadID)
	if err != nil {
		if errors.Is(err, repositories.ErrThreadNotFound) {
			return nil, apperrors.NewNotFoundError("messaging", "Conversation not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if !thread.HasParticipant(userID) {
		return nil, apperrors.ErrThreadAccessDenied
	}
	return thread, nil
}

func (s *chatService) buildThreadResponse(db *gorm.DB, thread *chat.Thread, userID string) (*dto.ThreadResponse, error) {
	ctx := ctxOf(db)
	resp := &dto.ThreadResponse{
		ID:        thread.ID,
		IsActive:  thread.IsActive,
		UpdatedAt: thread.UpdatedAt,
	}

	if otherID := thread.OtherParticipant(userID); otherID != "" {
		other, err := s.userRepo.FindByID(db, otherID)
		if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.InternalError(err)
		}
		resp.OtherParticipant = participantResponse(ctx, s.media, other)
	}

	last, err := s.chatRepo.FindLastMessage(db, thread.ID)
	switch {
	case err == nil:
		resp.LastMessage = s.messageResponse(ctx, last, userID)
	case !errors.Is(err, repositories.ErrMessageNotFound):
		return nil, apperrors.InternalError(err)
	}

	unread, err := s.chatRepo.CountUnreadInThread(db, thread.ID, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp.UnreadCount = unread

	return resp, nil
}

func (s *chatService) messageResponse(ctx context.Context, m *chat.Message, userID string) *dto.MessageResponse {
	return &dto.MessageResponse{
		ID:        m.ID,
		ThreadID:  m.ThreadID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		ImageURL:  s.media.URL(ctx, m.Image),
		IsRead:    m.IsRead,
		IsMine:    m.SenderID == userID,
		CreatedAt: m.CreatedAt,
	}
}

func (s *chatService) notify(thread *chat.Thread, message *dto.MessageResponse) {
	if s.notifier == nil {
		return
	}
	userIDs := make([]string, 0, len(thread.Participants))
	for _, p := range thread.Participants {
		userIDs = append(userIDs, p.UserID)
	}
	s.notifier.SendToUsers(userIDs, &dto.WSEvent{
		Type:     EventNewMessage,
		ThreadID: thread.ID,
		Message:  message,
	})
}
