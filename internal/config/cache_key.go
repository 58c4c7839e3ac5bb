package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AdminSessionKey returns the cache key holding an admin token's session
func (r *CacheKeyStruct) AdminSessionKey(tokenID string) string {
	return fmt.Sprintf("admin:session:%s", tokenID)
}

// CategoryConfigKey returns the cache key for a category's subject/chapter config
func (r *CacheKeyStruct) CategoryConfigKey(categoryType, value string) string {
	return fmt.Sprintf("category:%s:%s:config", categoryType, value)
}

// QuestionStatsKey returns the cache key for the admin dashboard stats
func (r *CacheKeyStruct) QuestionStatsKey() string {
	return "stats:questions"
}

// PracticeResultsChannel returns the pub/sub channel announcing completed practice attempts
func (r *CacheKeyStruct) PracticeResultsChannel() string {
	return "practice:results:live"
}

var CacheKey = NewCacheKeyStruct()
