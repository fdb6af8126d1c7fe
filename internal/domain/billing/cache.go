package billing

import "time"

type StandingCache interface {
	Get(memberID int64) (bool, bool)
	Set(memberID int64, upToDate bool, ttl time.Duration)
	Delete(memberID int64)
}

type noopStandingCache struct{}

func (noopStandingCache) Get(int64) (bool, bool) {
	return false, false
}

func (noopStandingCache) Set(int64, bool, time.Duration) {}

func (noopStandingCache) Delete(int64) {}
