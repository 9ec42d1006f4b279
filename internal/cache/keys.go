package cache

import "fmt"

const (
	SessionRevokedPrefix = "session:revoked:%s"
)

// SessionRevokedKey marks a session token id as logged out.
func SessionRevokedKey(jti string) string {
	return fmt.Sprintf(SessionRevokedPrefix, jti)
}
