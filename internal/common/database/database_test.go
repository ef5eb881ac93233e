package database

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"

	"work-advisor/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Redis
// ==========================

func TestRedisClient_GetSet(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx))

	_, err = client.Get(ctx, "predictionSnapshots")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, client.Set(ctx, "predictionSnapshots", `[]`))
	val, err := client.Get(ctx, "predictionSnapshots")
	require.NoError(t, err)
	assert.Equal(t, `[]`, val)
	assert.Zero(t, mr.TTL("predictionSnapshots"))

	require.NoError(t, client.Del(ctx, "predictionSnapshots"))
	assert.False(t, mr.Exists("predictionSnapshots"))
}

func TestRedisClient_BackendErrors(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	client := NewRedisFromClient(rdb)
	ctx := context.Background()

	mock.ExpectGet("k").SetErr(errors.New("connection reset"))
	_, err := client.Get(ctx, "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeyNotFound)
	assert.Contains(t, err.Error(), "connection reset")

	mock.ExpectGet("k").RedisNil()
	_, err = client.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	mock.ExpectSet("k", "v", 0).SetErr(errors.New("READONLY"))
	err = client.Set(ctx, "k", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "READONLY")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_NilClientClose(t *testing.T) {
	c := &RedisClient{}
	assert.NoError(t, c.Close())
}

// ==========================
// Postgres
// ==========================

func TestPostgresClient_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	client := NewPostgresFromDB(db, "")
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM "kv_store" WHERE key = $1`)).
		WithArgs("predictionSnapshots").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`[{"name":"a"}]`))

	val, err := client.Get(ctx, "predictionSnapshots")
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"a"}]`, val)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM "kv_store" WHERE key = $1`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, err = client.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM "kv_store"`)).
		WithArgs("broken").
		WillReturnError(errors.New("connection refused"))

	_, err = client.Get(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeyNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_SetUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	client := NewPostgresFromDB(db, "snapshots_kv")

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "snapshots_kv" (key, value, updated_at)`)).
		WithArgs("predictionSnapshots", `[]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, client.Set(context.Background(), "predictionSnapshots", `[]`))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	client := NewPostgresFromDB(db, "kv_store")

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "kv_store"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, client.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Elasticsearch
// ==========================

type fakeElasticsearch struct {
	mu   sync.Mutex
	docs map[string]string
}

func (f *fakeElasticsearch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[1] != "_doc" {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
		return
	}
	id := parts[2]

	switch r.Method {
	case http.MethodGet:
		doc, ok := f.docs[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"found":false}`))
			return
		}
		_, _ = w.Write([]byte(`{"found":true,"_source":` + doc + `}`))
	case http.MethodPut, http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		f.docs[id] = string(body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestElasticsearchClient_GetSet(t *testing.T) {
	fake := &fakeElasticsearch{docs: map[string]string{}}
	server := httptest.NewServer(fake)
	defer server.Close()

	client, err := NewElasticsearch(config.ElasticsearchConfig{URL: server.URL, Index: "kv"})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.Get(ctx, "predictionSnapshots")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, client.Set(ctx, "predictionSnapshots", `[{"name":"x"}]`))

	var stored kvDocument
	require.NoError(t, json.Unmarshal([]byte(fake.docs["predictionSnapshots"]), &stored))
	assert.Equal(t, `[{"name":"x"}]`, stored.Value)

	val, err := client.Get(ctx, "predictionSnapshots")
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"x"}]`, val)
}

func TestElasticsearchClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{server.URL}})
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeyNotFound)
}

// ==========================
// Memory
// ==========================

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "k", "v1"))
	require.NoError(t, store.Set(ctx, "k", "v2"))
	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", val)
}

// ==========================
// Factory
// ==========================

func TestOpenKeyValue(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		kv, err := OpenKeyValue(ctx, &config.Config{Storage: config.StorageConfig{Driver: config.StorageDriverMemory}})
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, kv)
		require.NoError(t, kv.Close())
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{
			Storage:  config.StorageConfig{Driver: config.StorageDriverRedis},
			Database: config.DatabaseConfig{Redis: config.RedisConfig{Address: mr.Addr()}},
		}
		kv, err := OpenKeyValue(ctx, cfg)
		require.NoError(t, err)
		defer kv.Close()

		require.NoError(t, kv.Set(ctx, "k", "v"))
		assert.True(t, mr.Exists("k"))
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cfg := &config.Config{
			Storage:  config.StorageConfig{Driver: config.StorageDriverRedis},
			Database: config.DatabaseConfig{Redis: config.RedisConfig{Address: addr}},
		}
		_, err := OpenKeyValue(ctx, cfg)
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := OpenKeyValue(ctx, &config.Config{Storage: config.StorageConfig{Driver: "cassandra"}})
		assert.EqualError(t, err, "unknown storage driver: cassandra")
	})
}
