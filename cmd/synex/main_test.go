package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/synex/internal/config"
	"github.com/naveenspark/synex/pkg/tokencache"
)

func testConfig(t *testing.T, store string) config.Config {
	t.Helper()
	return config.Config{
		APIURL:       "http://127.0.0.1:1",
		DashboardURL: "https://synex.test/dashboard",
		TokenStore:   store,
		TokenFile:    t.TempDir() + "/tokens.json",
		RedisPrefix:  "synex-test",
		LogLevel:     "debug",
	}
}

func wire(t *testing.T, cfg config.Config) *wiring {
	t.Helper()
	w, err := newWiring(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(w.Close)
	return w
}

func seed(t *testing.T, c tokencache.Cache, access, refresh string) {
	t.Helper()
	ctx := context.Background()
	if access != "" {
		require.NoError(t, c.Set(ctx, tokencache.KeyAccessToken, access))
	}
	if refresh != "" {
		require.NoError(t, c.Set(ctx, tokencache.KeyRefreshToken, refresh))
	}
}

func TestRunVersionAndHelp(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"version"}, &out))
	assert.Equal(t, "synex dev\n", out.String())

	out.Reset()
	require.NoError(t, run([]string{"--help"}, &out))
	for _, cmd := range []string{"status", "logout", "open", "update", "SYNEX_TOKEN_STORE"} {
		assert.Contains(t, out.String(), cmd)
	}
}

func TestNewWiringStores(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		store string
		want  any
	}{
		{config.StoreFile, &tokencache.File{}},
		{config.StoreMemory, &tokencache.Memory{}},
		{config.StoreRedis, &tokencache.Redis{}},
	}
	for _, tc := range tests {
		t.Run(tc.store, func(t *testing.T) {
			cfg := testConfig(t, tc.store)
			cfg.RedisURL = "redis://" + mr.Addr() + "/0"
			w := wire(t, cfg)
			assert.IsType(t, tc.want, w.cache)
			require.NotNil(t, w.gateway)
		})
	}
}

func TestNewWiringBadRedisURL(t *testing.T) {
	cfg := testConfig(t, config.StoreRedis)
	cfg.RedisURL = "not a url"
	_, err := newWiring(cfg, zerolog.Nop())
	require.Error(t, err)
}

func TestRunLogout(t *testing.T) {
	w := wire(t, testConfig(t, config.StoreFile))
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, runLogout(ctx, w, &out))
	assert.Equal(t, "Already logged out.\n", out.String())

	seed(t, w.cache, "acc", "ref")
	require.NoError(t, w.cache.Set(ctx, tokencache.KeyResetToken, "reset"))
	out.Reset()
	require.NoError(t, runLogout(ctx, w, &out))
	assert.Equal(t, "Logged out.\n", out.String())

	pair, err := w.gateway.PersistedTokens(ctx)
	require.NoError(t, err)
	assert.True(t, pair.Empty())
	_, ok, err := w.cache.Get(ctx, tokencache.KeyResetToken)
	require.NoError(t, err)
	assert.True(t, ok, "logout keeps the reset token")
}

func TestRunStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	signed := func(exp time.Time) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(exp),
		}).SignedString([]byte("k"))
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name    string
		access  string
		refresh string
		want    []string
	}{
		{"signed out", "", "", []string{"Not signed in."}},
		{"valid", signed(now.Add(time.Hour)), "ref", []string{"user-42, valid until", "Refresh:  present"}},
		{"expired", signed(now.Add(-time.Hour)), "", []string{"user-42, expired", "Refresh:  missing"}},
		{"opaque", "opaque-token", "ref", []string{"present (opaque)"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := wire(t, testConfig(t, config.StoreMemory))
			seed(t, w.cache, tc.access, tc.refresh)

			var out bytes.Buffer
			require.NoError(t, runStatus(context.Background(), w, &out, now))
			for _, want := range tc.want {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestRunUpdateDevBuild(t *testing.T) {
	w := wire(t, testConfig(t, config.StoreMemory))
	var out bytes.Buffer
	require.NoError(t, runUpdate(context.Background(), w, &out))
	assert.Contains(t, out.String(), "dev build")
}

func TestUpdateMessages(t *testing.T) {
	var out bytes.Buffer
	printUpdateSuccess(&out, "v1.0.0", "v1.1.0")
	s := out.String()
	for _, r := range "SYNEX" {
		assert.True(t, strings.ContainsRune(s, r))
	}
	assert.Contains(t, s, "v1.1.0")

	out.Reset()
	printAlreadyCurrent(&out, "v1.1.0")
	assert.Contains(t, out.String(), "already the latest")
}
