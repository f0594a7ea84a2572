// Package schema turns configured collection declarations into their
// validated domain form, compiling filter expressions on the way.
package schema

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/richdex/internal/config"
	"github.com/kailas-cloud/richdex/internal/domain/collection"
	"github.com/kailas-cloud/richdex/internal/domain/collection/field"
	"github.com/kailas-cloud/richdex/internal/domain/filter"
	"github.com/kailas-cloud/richdex/internal/domain/record"
)

// Build converts configured collections into domain declarations,
// sorted by collection name. Any invalid field kind, filter expression,
// or order field fails the whole build; schema problems are fatal at
// startup, never at query time.
func Build(cols map[string]config.CollectionConfig) ([]collection.Declaration, error) {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]collection.Declaration, 0, len(names))
	for _, name := range names {
		decl, err := buildOne(name, cols[name])
		if err != nil {
			return nil, err
		}
		out = append(out, decl)
	}
	return out, nil
}

func buildOne(name string, cfg config.CollectionConfig) (collection.Declaration, error) {
	fields := make([]field.Field, 0, len(cfg.Fields))
	for _, fc := range cfg.Fields {
		f, err := field.New(fc.Name, record.Kind(fc.Kind), fc.Indexed)
		if err != nil {
			return collection.Declaration{}, fmt.Errorf("collection %s: %w", name, err)
		}
		fields = append(fields, f)
	}

	filters, err := buildFilters(name, cfg.Filters)
	if err != nil {
		return collection.Declaration{}, err
	}

	return collection.New(name, fields, filters, cfg.AutoID)
}

// BuildFromSample builds one declaration with field kinds inferred
// from a representative default-valued record instead of explicit
// field declarations. indexed names the fields that get secondary
// indexes; filters and auto-id still come from the config.
func BuildFromSample(
	name string, sample record.Record, indexed []string, cfg config.CollectionConfig,
) (collection.Declaration, error) {
	filters, err := buildFilters(name, cfg.Filters)
	if err != nil {
		return collection.Declaration{}, err
	}
	return collection.NewFromSample(name, sample, indexed, filters, cfg.AutoID)
}

func buildFilters(name string, cfgs []config.FilterConfig) ([]filter.Definition, error) {
	filters := make([]filter.Definition, 0, len(cfgs))
	for _, fc := range cfgs {
		pred, err := filter.CompileCEL(fc.Match)
		if err != nil {
			return nil, fmt.Errorf("collection %s: filter %s: %w", name, fc.Name, err)
		}
		def, err := filter.NewOrdered(fc.Name, pred, fc.OrderBy)
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", name, err)
		}
		filters = append(filters, def)
	}
	return filters, nil
}
