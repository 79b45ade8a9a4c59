package repositories

import (
	"errors"
	"time"

	"rencontre_backend/internal/models/chat"

	"gorm.io/gorm"
)

var (
	ErrThreadNotFound  = errors.New("thread not found")
	ErrMessageNotFound = errors.New("message not found")
)

// lastActivity - время последнего сообщения, иначе updated_at диалога
const lastActivity = "COALESCE((SELECT MAX(m.created_at) FROM messages m WHERE m.thread_id = threads.id), threads.updated_at)"

type ChatRepository interface {
	// Threads
	CreateThread(db *gorm.DB, thread *chat.Thread) error
	FindThreadByID(db *gorm.DB, id string) (*chat.Thread, error)
	// FindThreadBetween - активный диалог ровно из этих двух пользователей
	FindThreadBetween(db *gorm.DB, userA, userB string) (*chat.Thread, error)
	FindUserThreads(db *gorm.DB, userID string, limit, offset int) ([]chat.Thread, int64, error)
	IsParticipant(db *gorm.DB, threadID, userID string) (bool, error)
	TouchThread(db *gorm.DB, threadID string, at time.Time) error
	CountActiveThreads(db *gorm.DB, userID string) (int64, error)

	// Messages
	CreateMessage(db *gorm.DB, message *chat.Message) error
	FindLastMessage(db *gorm.DB, threadID string) (*chat.Message, error)
	// FindRecentMessages - последние limit сообщений по возрастанию id
	FindRecentMessages(db *gorm.DB, threadID string, limit int) ([]chat.Message, error)
	// FindMessagesAfter - сообщения с id > lastID не от userID
	FindMessagesAfter(db *gorm.DB, threadID string, lastID uint64, userID string) ([]chat.Message, error)
	CountMessagesAfter(db *gorm.DB, threadID string, lastID uint64, userID string) (int64, error)
	MarkThreadRead(db *gorm.DB, threadID, readerID string) error
	MarkRead(db *gorm.DB, ids []uint64) error
	CountUnreadInThread(db *gorm.DB, threadID, userID string) (int64, error)
	CountUnreadForUser(db *gorm.DB, userID string) (int64, error)
	FindRecentReceived(db *gorm.DB, userID string, limit int) ([]chat.Message, error)
}

type chatRepository struct{}

func NewChatRepository() ChatRepository {
	return &chatRepository{}
}

// --- Threads ---

func (r *chatRepository) CreateThread(db *gorm.DB, thread *chat.Thread) error {
	return db.Create(thread).Error
}

func (r *chatRepository) FindThreadByID(db *gorm.DB, id string) (*chat.Thread, error) {
	var thread chat.Thread
	if err := db.Preload("Participants").First(&thread, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}
	return &thread, nil
}

func (r *chatRepository) FindThreadBetween(db *gorm.DB, userA, userB string) (*chat.Thread, error) {
	twoParty := db.Model(&chat.ThreadParticipant{}).
		Select("thread_id").
		Group("thread_id").
		Having("COUNT(*) = 2 AND SUM(CASE WHEN user_id IN (?, ?) THEN 1 ELSE 0 END) = 2", userA, userB)

	var thread chat.Thread
	err := db.Preload("Participants").
		Where("id IN (?)", twoParty).
		Where("is_active = ?", true).
		Order("created_at ASC").
		First(&thread).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}
	return &thread, nil
}

func (r *chatRepository) userThreads(db *gorm.DB, userID string) *gorm.DB {
	return db.Model(&chat.Thread{}).
		Joins("JOIN thread_participants tp ON tp.thread_id = threads.id AND tp.user_id = ?", userID).
		Where("threads.is_active = ?", true)
}

func (r *chatRepository) FindUserThreads(db *gorm.DB, userID string, limit, offset int) ([]chat.Thread, int64, error) {
	var total int64
	if err := r.userThreads(db, userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var threads []chat.Thread
	err := r.userThreads(db, userID).
		Preload("Participants").
		Order(lastActivity + " DESC").
		Limit(limit).
		Offset(offset).
		Find(&threads).Error
	return threads, total, err
}

func (r *chatRepository) IsParticipant(db *gorm.DB, threadID, userID string) (bool, error) {
	var count int64
	err := db.Model(&chat.ThreadParticipant{}).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *chatRepository) TouchThread(db *gorm.DB, threadID string, at time.Time) error {
	return db.Model(&chat.Thread{}).Where("id = ?", threadID).Update("updated_at", at).Error
}

func (r *chatRepository) CountActiveThreads(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := r.userThreads(db, userID).Count(&count).Error
	return count, err
}

// --- Messages ---

func (r *chatRepository) CreateMessage(db *gorm.DB, message *chat.Message) error {
	return db.Create(message).Error
}

func (r *chatRepository) FindLastMessage(db *gorm.DB, threadID string) (*chat.Message, error) {
	var message chat.Message
	err := db.Where("thread_id = ?", threadID).Order("id DESC").First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

func (r *chatRepository) FindRecentMessages(db *gorm.DB, threadID string, limit int) ([]chat.Message, error) {
	var messages []chat.Message
	err := db.Where("thread_id = ?", threadID).
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *chatRepository) FindMessagesAfter(db *gorm.DB, threadID string, lastID uint64, userID string) ([]chat.Message, error) {
	var messages []chat.Message
	err := db.Where("thread_id = ? AND id > ? AND sender_id <> ?", threadID, lastID, userID).
		Order("id ASC").
		Find(&messages).Error
	return messages, err
}

func (r *chatRepository) CountMessagesAfter(db *gorm.DB, threadID string, lastID uint64, userID string) (int64, error) {
	var count int64
	err := db.Model(&chat.Message{}).
		Where("thread_id = ? AND id > ? AND sender_id <> ?", threadID, lastID, userID).
		Count(&count).Error
	return count, err
}

func (r *chatRepository) MarkThreadRead(db *gorm.DB, threadID, readerID string) error {
	return db.Model(&chat.Message{}).
		Where("thread_id = ? AND sender_id <> ? AND is_read = ?", threadID, readerID, false).
		Update("is_read", true).Error
}

func (r *chatRepository) MarkRead(db *gorm.DB, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Model(&chat.Message{}).Where("id IN ?", ids).Update("is_read", true).Error
}

func (r *chatRepository) CountUnreadInThread(db *gorm.DB, threadID, userID string) (int64, error) {
	var count int64
	err := db.Model(&chat.Message{}).
		Where("thread_id = ? AND sender_id <> ? AND is_read = ?", threadID, userID, false).
		Count(&count).Error
	return count, err
}

func (r *chatRepository) CountUnreadForUser(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&chat.Message{}).
		Joins("JOIN thread_participants tp ON tp.thread_id = messages.thread_id AND tp.user_id = ?", userID).
		Where("messages.sender_id <> ? AND messages.is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *chatRepository) FindRecentReceived(db *gorm.DB, userID string, limit int) ([]chat.Message, error) {
	var messages []chat.Message
	err := db.Joins("JOIN thread_participants tp ON tp.thread_id = messages.thread_id AND tp.user_id = ?", userID).
		Where("messages.sender_id <> ?", userID).
		Order("messages.created_at DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}
