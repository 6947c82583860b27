package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Name string `json:"name"`
}

func TestAside_WithoutRedisCallsFetch(t *testing.T) {
	SetClient(nil)

	var got profile
	calls := 0
	err := Aside(context.Background(), RequesterKey(1), &got, RequesterTTL, func() error {
		calls++
		got.Name = "Anna"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "Anna", got.Name)
}

func TestAside_CachesAndInvalidates(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	defer SetClient(nil)

	ctx := context.Background()
	calls := 0
	load := func(dest *profile) error {
		return Aside(ctx, RequesterKey(7), dest, RequesterTTL, func() error {
			calls++
			dest.Name = "Jan"
			return nil
		})
	}

	var first, second profile
	require.NoError(t, load(&first))
	require.NoError(t, load(&second))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "Jan", second.Name)
	assert.True(t, mr.Exists("requester:7"))

	InvalidateRequester(ctx, 7)
	assert.False(t, mr.Exists("requester:7"))

	var third profile
	require.NoError(t, load(&third))
	assert.Equal(t, 2, calls)
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer SetClient(nil)

	boom := errors.New("boom")
	var p profile
	err := Aside(context.Background(), SectorsKey, &p, SectorsTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(SectorsKey))
}

func TestAside_RedisDownFallsBackToFetch(t *testing.T) {
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer SetClient(nil)
	mr.Close()

	var p profile
	err := Aside(context.Background(), RequesterKey(3), &p, RequesterTTL, func() error {
		p.Name = "Ewa"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Ewa", p.Name)
}

func TestInitRedis_BadURL(t *testing.T) {
	defer SetClient(nil)
	assert.Nil(t, InitRedis("redis://%zz"))
	assert.Nil(t, GetClient())
}
