package sessionstore

import "github.com/ayopaul/ejidike-foundation-sub002/internal/auth"

func hashOf(token string) string { return auth.HashToken(token) }
