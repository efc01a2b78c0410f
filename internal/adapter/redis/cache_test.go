package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/birdflu-tracker/internal/domain"
)

type fakeClient struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeClient) Get(_ context.Context, key string) *goredis.StringCmd {
	if f.getErr != nil {
		return goredis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeClient) Set(_ context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd {
	if f.setErr != nil {
		return goredis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeClient) Ping(_ context.Context) *goredis.StatusCmd {
	return goredis.NewStatusResult("PONG", f.getErr)
}

func sampleResult() *domain.Result {
	return &domain.Result{
		RunID:       "run-1",
		Fingerprint: "abc123",
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Records: []domain.JoinedRecord{{
			CaseRecord:  domain.CaseRecord{CollectionDate: "2024-02-01", BirdSpecies: "Mallard", HPAIStrain: "H5N1", State: "IA", County: "Polk"},
			Coordinates: &domain.Coordinates{Latitude: 41.6855, Longitude: -93.5735},
		}},
		Stats:   domain.Stats{TotalCases: 1, StatesAffected: 1, CountiesAffected: 1},
		Missing: []domain.MissingKey{},
		States:  []domain.StateSummary{{State: "IA", Cases: 1}},
	}
}

func TestResultCache_RoundTrip(t *testing.T) {
	client := newFakeClient()
	c := NewResultCache(client, time.Hour)

	require.NoError(t, c.Put(context.Background(), sampleResult()))
	assert.Equal(t, time.Hour, client.ttls[keyPrefix+"abc123"])

	got, ok, err := c.Get(context.Background(), "abc123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleResult(), got)
}

func TestResultCache_Miss(t *testing.T) {
	c := NewResultCache(newFakeClient(), time.Hour)

	got, ok, err := c.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestResultCache_GetError(t *testing.T) {
	client := newFakeClient()
	client.getErr = errors.New("connection refused")
	c := NewResultCache(client, time.Hour)

	_, ok, err := c.Get(context.Background(), "abc123")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Error(t, c.Ping(context.Background()))
}

func TestResultCache_CorruptEntry(t *testing.T) {
	client := newFakeClient()
	client.data[keyPrefix+"abc123"] = "{not json"
	c := NewResultCache(client, time.Hour)

	_, ok, err := c.Get(context.Background(), "abc123")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestResultCache_SetError(t *testing.T) {
	client := newFakeClient()
	client.setErr = errors.New("READONLY")
	c := NewResultCache(client, time.Hour)

	err := c.Put(context.Background(), sampleResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "READONLY")
}

func TestNewClient_EmptyAddr(t *testing.T) {
	assert.Nil(t, NewClient("", "", 0))
}
