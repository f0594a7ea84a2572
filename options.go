package richdex

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey" or "redis"
	addrs    []string
	username string
	password string
	db       int

	chunkSize int

	collections []declaredCollection
}

type declaredCollection struct {
	name string
	opts []CollectionOption

	// sample-based declarations only
	sample  Document
	indexed []string
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithUsername sets the database username (ACL setups).
func WithUsername(username string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
	})
}

// WithDB selects a logical database number.
func WithDB(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.db = n
	})
}

// WithChunkSize caps the number of entries per substrate write command.
// Default: 1000.
func WithChunkSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.chunkSize = size
	})
}

// WithCollection declares a collection: its schema, filter views and id
// mode. Declare every collection the client will touch; operations on
// undeclared collections fail.
func WithCollection(name string, opts ...CollectionOption) Option {
	return optionFunc(func(c *clientConfig) {
		c.collections = append(c.collections, declaredCollection{name: name, opts: opts})
	})
}

// WithSampledCollection declares a collection whose field kinds are
// inferred from a representative default-valued document. indexed
// names the fields that get secondary indexes and must all be present
// in the sample. Filter views and WithAutoID go in opts; WithField is
// not needed.
func WithSampledCollection(name string, sample Document, indexed []string, opts ...CollectionOption) Option {
	return optionFunc(func(c *clientConfig) {
		c.collections = append(c.collections, declaredCollection{
			name: name, opts: opts, sample: sample, indexed: indexed,
		})
	})
}
