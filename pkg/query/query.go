// Package query composes aggregation pipeline stages from declarative
// options, so that pagination, sorting and join semantics are defined in one
// place instead of inline per route. The builder knows nothing about the
// requesting actor: visibility filters are merged in by the resource services.
package query

import (
	"go.mongodb.org/mongo-driver/bson"

	"VidTube.com/pkg/constants"
)

// Lookup describes a left join against another collection. Unmatched targets
// yield an empty joined array, never an error.
type Lookup struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	// Project, when non-empty, restricts the joined documents to these fields.
	Project []string
	// Unwind flattens the joined array to a single embedded document,
	// preserving the parent document when the join found nothing.
	Unwind bool
}

// Options is the declarative description of a list query.
type Options struct {
	// Filters are matched with logical AND. Values may use operators
	// (e.g. $or) when a caller layers a visibility condition on top.
	Filters bson.M
	// Search adds a $text match, ANDed with Filters.
	Search string
	// SortBy/SortOrder; zero values fall back to createdAt descending.
	SortBy    string
	SortOrder int
	Page      int64
	Limit     int64
	Lookups   []Lookup
	// Project, when non-nil, is appended as the final $project stage.
	Project bson.M
}

// Normalize clamps paging into the supported window: page >= 1 and
// limit within [1, MaxLimit], defaulting to DefaultLimit.
func (o *Options) Normalize() {
	if o.Page < constants.DefaultPage {
		o.Page = constants.DefaultPage
	}
	if o.Limit <= 0 {
		o.Limit = constants.DefaultLimit
	}
	if o.Limit > constants.MaxLimit {
		o.Limit = constants.MaxLimit
	}
}

// Build produces the ordered stage list:
// match -> sort -> skip -> limit -> lookups -> project.
// Skip is (page-1)*limit, applied after sort and before limit, so pages are
// stable for a fixed sort key as long as the data does not move underneath.
func (o Options) Build() []bson.D {
	o.Normalize()

	stages := make([]bson.D, 0, 6+2*len(o.Lookups))

	match := bson.M{}
	for k, v := range o.Filters {
		match[k] = v
	}
	if o.Search != "" {
		match["$text"] = bson.M{"$search": o.Search}
	}
	if len(match) > 0 {
		stages = append(stages, Match(match))
	}

	sortBy := o.SortBy
	order := o.SortOrder
	if sortBy == "" {
		sortBy = constants.DefaultSortField
		order = -1
	}
	if order == 0 {
		order = -1
	}
	stages = append(stages, Sort(sortBy, order))
	stages = append(stages, Skip((o.Page-1)*o.Limit))
	stages = append(stages, Limit(o.Limit))

	for _, lk := range o.Lookups {
		stages = append(stages, lk.Stage())
		if lk.Unwind {
			stages = append(stages, Unwind("$"+lk.As, true))
		}
	}

	if o.Project != nil {
		stages = append(stages, Project(o.Project))
	}
	return stages
}

// Stage constructors, shared by Build and by services composing bespoke
// pipelines (liked-videos feed, channel stats).

func Match(filter bson.M) bson.D {
	return bson.D{{Key: "$match", Value: filter}}
}

func Sort(field string, order int) bson.D {
	return bson.D{{Key: "$sort", Value: bson.D{{Key: field, Value: order}}}}
}

func Skip(n int64) bson.D {
	return bson.D{{Key: "$skip", Value: n}}
}

func Limit(n int64) bson.D {
	return bson.D{{Key: "$limit", Value: n}}
}

func Project(fields bson.M) bson.D {
	return bson.D{{Key: "$project", Value: fields}}
}

func Group(spec bson.M) bson.D {
	return bson.D{{Key: "$group", Value: spec}}
}

// Unwind flattens an array path. With preserveEmpty the parent document
// survives an empty join instead of being dropped.
func Unwind(path string, preserveEmpty bool) bson.D {
	return bson.D{{Key: "$unwind", Value: bson.M{
		"path":                       path,
		"preserveNullAndEmptyArrays": preserveEmpty,
	}}}
}

// Stage renders the lookup as a $lookup stage. With a projection the join
// runs as a sub-pipeline so only the requested fields come back.
func (lk Lookup) Stage() bson.D {
	if len(lk.Project) == 0 {
		return bson.D{{Key: "$lookup", Value: bson.M{
			"from":         lk.From,
			"localField":   lk.LocalField,
			"foreignField": lk.ForeignField,
			"as":           lk.As,
		}}}
	}
	proj := bson.M{"_id": 0}
	for _, f := range lk.Project {
		proj[f] = 1
	}
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from": lk.From,
		"let":  bson.M{"local": "$" + lk.LocalField},
		"pipeline": []bson.D{
			Match(bson.M{"$expr": bson.M{"$eq": []string{"$" + lk.ForeignField, "$$local"}}}),
			Project(proj),
		},
		"as": lk.As,
	}}}
}
