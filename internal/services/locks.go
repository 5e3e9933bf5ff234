package services

import "github.com/im7mortal/kmutex"

// AppLocks serialises writes that belong to the same application. Writes
// for different applications never wait on each other.
type AppLocks struct {
	km *kmutex.Kmutex
}

func NewAppLocks() *AppLocks {
	return &AppLocks{km: kmutex.New()}
}

// Lock blocks until appID is free and returns the matching unlock.
func (l *AppLocks) Lock(appID string) func() {
	l.km.Lock(appID)
	return func() { l.km.Unlock(appID) }
}

func StatsCacheKey(appID string) string {
	return "stats:" + appID
}

func CertificatesCacheKey(appID string) string {
	return "certs:" + appID
}
