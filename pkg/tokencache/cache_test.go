package tokencache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseCache runs the behaviour every Cache implementation must share.
func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok, "fresh cache should have no access token")

	require.NoError(t, c.Set(ctx, KeyAccessToken, "acc-1"))
	require.NoError(t, c.Set(ctx, KeyRefreshToken, "ref-1"))
	require.NoError(t, c.Set(ctx, KeyResetToken, "reset-1"))

	v, ok, err := c.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "acc-1", v)

	require.NoError(t, c.Set(ctx, KeyAccessToken, "acc-2"))
	v, _, err = c.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "acc-2", v, "Set should overwrite")

	require.NoError(t, c.Remove(ctx, KeyAccessToken))
	_, ok, err = c.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing twice is fine and other keys survive.
	require.NoError(t, c.Remove(ctx, KeyAccessToken))
	v, ok, err = c.Get(ctx, KeyResetToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "reset-1", v)
}

func TestMemory(t *testing.T) {
	exerciseCache(t, NewMemory())
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	exerciseCache(t, NewFile(path))
}

func TestFile_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tokens.json")

	require.NoError(t, NewFile(path).Set(ctx, KeyRefreshToken, "ref-persisted"))

	v, ok, err := NewFile(path).Get(ctx, KeyRefreshToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ref-persisted", v)
}

func TestFile_Permissions(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), ".synex")
	path := filepath.Join(dir, "tokens.json")

	require.NoError(t, NewFile(path).Set(ctx, KeyAccessToken, "secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())

	_, err = os.Stat(path + ".new")
	assert.True(t, os.IsNotExist(err), "stage file should not linger")
}

func TestFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, _, err := NewFile(path).Get(context.Background(), KeyAccessToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestFile_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	_, ok, err := NewFile(path).Get(context.Background(), KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close() //nolint:errcheck

	c := NewRedis(rdb, "test")
	exerciseCache(t, c)

	require.NoError(t, c.Set(context.Background(), KeyRefreshToken, "ref-x"))
	got, err := mr.Get("test:" + KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "ref-x", got, "keys should be namespaced by prefix")
}

func TestRedis_DefaultPrefix(t *testing.T) {
	c := NewRedis(nil, "")
	assert.Equal(t, "synex:accessToken", c.key(KeyAccessToken))
}

func TestDialRedis_BadURL(t *testing.T) {
	_, err := DialRedis("not-a-url://")
	require.Error(t, err)
}
