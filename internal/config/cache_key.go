package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key of one login session (one JWT ID).
func (r *CacheKeyStruct) UserSessionKey(userID int, jti string) string {
	return fmt.Sprintf("session:%d:%s", userID, jti)
}

// UserSessionPattern matches every session key of a user.
func (r *CacheKeyStruct) UserSessionPattern(userID int) string {
	return fmt.Sprintf("session:%d:*", userID)
}

var CacheKey = NewCacheKeyStruct()
