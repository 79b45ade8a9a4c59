package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st, err := NewStorage(Config{Type: "local", BasePath: t.TempDir(), BaseURL: "/media"})
	require.NoError(t, err)

	require.NoError(t, st.Save(ctx, "avatars/a.png", strings.NewReader("png-bytes"), "image/png"))

	ok, err := st.Exists(ctx, "avatars/a.png")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := st.Get(ctx, "avatars/a.png")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "png-bytes", string(data))

	url, err := st.GetURL(ctx, "avatars/a.png")
	require.NoError(t, err)
	assert.Equal(t, "/media/avatars/a.png", url)

	require.NoError(t, st.Delete(ctx, "avatars/a.png"))
	ok, err = st.Exists(ctx, "avatars/a.png")
	require.NoError(t, err)
	assert.False(t, ok)

	// повторное удаление не ошибка
	assert.NoError(t, st.Delete(ctx, "avatars/a.png"))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	st, err := NewLocalStorage(Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	err = st.Save(context.Background(), "../escape.txt", strings.NewReader("x"), "text/plain")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = st.Get(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestNewStorage_Validation(t *testing.T) {
	_, err := NewStorage(Config{Type: "ftp"})
	assert.Error(t, err)

	_, err = NewStorage(Config{Type: "cloudflare_r2", Bucket: "b"})
	assert.Error(t, err)

	_, err = NewStorage(Config{Type: "s3"})
	assert.Error(t, err)
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("profiles", "Photo.JPG")
	assert.True(t, strings.HasPrefix(key, "profiles/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, ObjectKey("profiles", "Photo.JPG"))
}

func TestLocalStorage_MissingAndURL(t *testing.T) {
	ctx := context.Background()
	st, err := NewLocalStorage(Config{BasePath: t.TempDir(), BaseURL: "https://cdn.rencontre.bj/media/"})
	require.NoError(t, err)

	_, err = st.Get(ctx, "docs/none.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	url, err := st.GetSignedURL(ctx, "docs/cv.pdf", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.rencontre.bj/media/docs/cv.pdf", url)

	// перезапись заменяет содержимое целиком
	require.NoError(t, st.Save(ctx, "docs/cv.pdf", strings.NewReader("first version"), "application/pdf"))
	require.NoError(t, st.Save(ctx, "docs/cv.pdf", strings.NewReader("v2"), "application/pdf"))
	rc, err := st.Get(ctx, "docs/cv.pdf")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "v2", string(data))
}
