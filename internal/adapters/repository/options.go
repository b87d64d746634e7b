package repository

const defaultFilePath = "./data"

type settings struct {
	path      string
	dsn       string
	redisAddr string
	redisDB   int
	prefix    string
}

// Option applies a configuration option to Open.
type Option func(*settings)

// WithPath sets the directory of the file driver.
func WithPath(path string) Option {
	return func(s *settings) {
		if path != "" {
			s.path = path
		}
	}
}

// WithDSN sets the data source name of the sqlite and postgres drivers.
func WithDSN(dsn string) Option {
	return func(s *settings) { s.dsn = dsn }
}

// WithRedis sets the address and logical database of the redis driver.
func WithRedis(addr string, db int) Option {
	return func(s *settings) {
		s.redisAddr = addr
		s.redisDB = db
	}
}

// WithKeyPrefix namespaces every key, e.g. "alice:".
func WithKeyPrefix(prefix string) Option {
	return func(s *settings) { s.prefix = prefix }
}
