package richdex

import "github.com/kailas-cloud/richdex/internal/config"

// CollectionOption configures a collection declaration.
type CollectionOption func(*config.CollectionConfig)

// WithAutoID makes the collection assign numeric ids from a shared
// counter. Without it every inserted document must carry an "id".
func WithAutoID() CollectionOption {
	return func(c *config.CollectionConfig) {
		c.AutoID = true
	}
}

// WithField adds an indexed field to the collection schema.
func WithField(name string, kind FieldKind) CollectionOption {
	return func(c *config.CollectionConfig) {
		c.Fields = append(c.Fields, config.FieldConfig{
			Name: name, Kind: string(kind), Indexed: true,
		})
	}
}

// WithStoredField adds a field that is stored with the record but never
// indexed.
func WithStoredField(name string, kind FieldKind) CollectionOption {
	return func(c *config.CollectionConfig) {
		c.Fields = append(c.Fields, config.FieldConfig{
			Name: name, Kind: string(kind), Indexed: false,
		})
	}
}

// WithFilter declares an unordered filter view. The match argument is a
// CEL expression over the record, bound as "doc".
func WithFilter(name, match string) CollectionOption {
	return func(c *config.CollectionConfig) {
		c.Filters = append(c.Filters, config.FilterConfig{Name: name, Match: match})
	}
}

// WithOrderedFilter declares a filter view kept sorted by the given
// field. The order field must be numeric or time (or "id" on auto-id
// collections).
func WithOrderedFilter(name, match, orderBy string) CollectionOption {
	return func(c *config.CollectionConfig) {
		c.Filters = append(c.Filters, config.FilterConfig{Name: name, Match: match, OrderBy: orderBy})
	}
}
