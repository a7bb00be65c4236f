package sessionstore

var (
	_ Store = (*DatabaseStore)(nil)
	_ Store = (*RedisStore)(nil)
	_ Store = (*JWTStore)(nil)
)
