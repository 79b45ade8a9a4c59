package services

import (
	"net/http"
	"testing"

	"rencontre_backend/internal/models/chat"
	"rencontre_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	chatThreadID = "thread-1"
	chatAma      = "user-ama"
	chatKofi     = "user-kofi"
)

type fakeChatRepo struct {
	repositories.ChatRepository
	threads  map[string]*chat.Thread
	messages []*chat.Message
	marked   []uint64
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		threads: map[string]*chat.Thread{
			chatThreadID: {
				ID:       chatThreadID,
				IsActive: true,
				Participants: []chat.ThreadParticipant{
					{ThreadID: chatThreadID, UserID: chatAma},
					{ThreadID: chatThreadID, UserID: chatKofi},
				},
			},
		},
	}
}

func (r *fakeChatRepo) add(id uint64, senderID, content string) {
	r.messages = append(r.messages, &chat.Message{ID: id, ThreadID: chatThreadID, SenderID: senderID, Content: content})
}

func (r *fakeChatRepo) FindThreadByID(_ *gorm.DB, id string) (*chat.Thread, error) {
	t, ok := r.threads[id]
	if !ok {
		return nil, repositories.ErrThreadNotFound
	}
	return t, nil
}

func (r *fakeChatRepo) FindMessagesAfter(_ *gorm.DB, threadID string, lastID uint64, userID string) ([]chat.Message, error) {
	var out []chat.Message
	for _, m := range r.messages {
		if m.ThreadID == threadID && m.ID > lastID && m.SenderID != userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) CountMessagesAfter(db *gorm.DB, threadID string, lastID uint64, userID string) (int64, error) {
	msgs, _ := r.FindMessagesAfter(db, threadID, lastID, userID)
	return int64(len(msgs)), nil
}

func (r *fakeChatRepo) MarkRead(_ *gorm.DB, ids []uint64) error {
	r.marked = append(r.marked, ids...)
	for _, m := range r.messages {
		for _, id := range ids {
			if m.ID == id {
				m.IsRead = true
			}
		}
	}
	return nil
}

func newTestChatService(repo *fakeChatRepo) ChatService {
	return NewChatService(repo, newFakeUserRepo(), &fakeMedia{}, nil)
}

func TestChatPoll(t *testing.T) {
	repo := newFakeChatRepo()
	repo.add(1, chatKofi, "Salut")
	repo.add(2, chatAma, "Bonsoir")
	repo.add(3, chatKofi, "Ça va?")
	svc := newTestChatService(repo)

	resp, err := svc.Poll(nil, chatThreadID, chatAma, 1)
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, uint64(3), resp.Messages[0].ID)
	assert.True(t, resp.Messages[0].IsRead)
	assert.False(t, resp.Messages[0].IsMine)
	assert.Equal(t, uint64(3), resp.LastMessageID)
	assert.Equal(t, []uint64{3}, repo.marked)
	assert.False(t, repo.messages[1].IsRead, "own messages stay untouched")

	// ничего нового: last_id возвращается как есть
	resp, err = svc.Poll(nil, chatThreadID, chatAma, 3)
	require.NoError(t, err)
	assert.Empty(t, resp.Messages)
	assert.Equal(t, uint64(3), resp.LastMessageID)
}

func TestChatCheck(t *testing.T) {
	repo := newFakeChatRepo()
	repo.add(4, chatAma, "Tu es là?")
	repo.add(5, chatAma, "Réponds")
	svc := newTestChatService(repo)

	resp, err := svc.Check(nil, chatThreadID, chatKofi, 3)
	require.NoError(t, err)
	assert.True(t, resp.HasNew)
	assert.Equal(t, int64(2), resp.NewCount)
	assert.Empty(t, repo.marked, "check must not mark anything read")

	resp, err = svc.Check(nil, chatThreadID, chatAma, 3)
	require.NoError(t, err)
	assert.False(t, resp.HasNew)
	assert.Zero(t, resp.NewCount)
}

func TestChatPollAccess(t *testing.T) {
	svc := newTestChatService(newFakeChatRepo())

	_, err := svc.Poll(nil, chatThreadID, "user-stranger", 0)
	requireAppError(t, err, http.StatusForbidden)

	_, err = svc.Check(nil, chatThreadID, "user-stranger", 0)
	requireAppError(t, err, http.StatusForbidden)

	_, err = svc.Poll(nil, "thread-missing", chatAma, 0)
	requireAppError(t, err, http.StatusNotFound)
}
