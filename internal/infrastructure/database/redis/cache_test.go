package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/charlesmartinedd/k12-background-check-interpreter/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	client *Client
	mock   redismock.ClientMock
	cache  Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.client = NewClientFromRDB(db, logging.NewNopLogger())
	s.cache = NewCache(s.client, logging.NewNopLogger(), WithPrefix("test:"))
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type cachedResult struct {
	Code   string `json:"code"`
	Status string `json:"status"`
}

func (s *CacheTestSuite) TestGet_Hit() {
	val := cachedResult{Code: "484 PC", Status: "non-disqualifying"}
	data, _ := json.Marshal(val)

	s.mock.ExpectGet("test:484 PC").SetVal(string(data))

	var dest cachedResult
	err := s.cache.Get(context.Background(), "484 PC", &dest)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGet_Miss() {
	s.mock.ExpectGet("test:484 PC").RedisNil()

	var dest cachedResult
	err := s.cache.Get(context.Background(), "484 PC", &dest)

	assert.Equal(s.T(), ErrCacheMiss, err)
	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeNotFound))
}

func (s *CacheTestSuite) TestGet_NullSentinelIsMiss() {
	s.mock.ExpectGet("test:484 PC").SetVal(nullSentinel)

	var dest cachedResult
	err := s.cache.Get(context.Background(), "484 PC", &dest)

	assert.Equal(s.T(), ErrCacheMiss, err)
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:a", "test:b").SetVal(2)

	err := s.cache.Delete(context.Background(), "a", "b")
	assert.NoError(s.T(), err)
}

func (s *CacheTestSuite) TestExists() {
	s.mock.ExpectExists("test:a").SetVal(1)

	ok, err := s.cache.Exists(context.Background(), "a")
	assert.NoError(s.T(), err)
	assert.True(s.T(), ok)
}

func (s *CacheTestSuite) TestGetOrSet_HitSkipsLoader() {
	val := cachedResult{Code: "211 PC", Status: "mandatory-disqualification"}
	data, _ := json.Marshal(val)

	s.mock.ExpectGet("test:211 PC").SetVal(string(data))

	loaderCalled := false
	var dest cachedResult
	err := s.cache.GetOrSet(context.Background(), "211 PC", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		loaderCalled = true
		return nil, nil
	})

	assert.NoError(s.T(), err)
	assert.False(s.T(), loaderCalled)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGetOrSet_NilLoaderResultCachesNull() {
	s.mock.ExpectGet("test:9999").RedisNil()
	s.mock.ExpectSet("test:9999", nullSentinel, 30*time.Second).SetVal("OK")

	var dest cachedResult
	err := s.cache.GetOrSet(context.Background(), "9999", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		return nil, nil
	})

	assert.Equal(s.T(), ErrCacheMiss, err)
}

func (s *CacheTestSuite) TestGetOrSet_LoaderErrorPropagates() {
	s.mock.ExpectGet("test:211 PC").RedisNil()

	loadErr := pkgerrors.New(pkgerrors.ErrCodeOracleUnavailable, "oracle down")
	var dest cachedResult
	err := s.cache.GetOrSet(context.Background(), "211 PC", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		return nil, loadErr
	})

	assert.ErrorIs(s.T(), err, loadErr)
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}
