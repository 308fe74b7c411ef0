package query

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"VidTube.com/pkg/constants"
)

func stageValue(t *testing.T, stages []bson.D, name string) (interface{}, bool) {
	t.Helper()
	for _, s := range stages {
		if len(s) > 0 && s[0].Key == name {
			return s[0].Value, true
		}
	}
	return nil, false
}

func TestNormalizeClampsPaging(t *testing.T) {
	cases := []struct {
		name                string
		page, limit         int64
		wantPage, wantLimit int64
	}{
		{"Defaults", 0, 0, 1, constants.DefaultLimit},
		{"NegativePage", -3, 5, 1, 5},
		{"LimitAboveMax", 2, 100, 2, constants.MaxLimit},
		{"LimitAtMax", 1, 20, 1, 20},
		{"NegativeLimit", 1, -1, 1, constants.DefaultLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := Options{Page: tc.page, Limit: tc.limit}
			o.Normalize()
			if o.Page != tc.wantPage || o.Limit != tc.wantLimit {
				t.Errorf("got page=%d limit=%d, want page=%d limit=%d",
					o.Page, o.Limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}

func TestBuildSkipIsPageMinusOneTimesLimit(t *testing.T) {
	for page := int64(1); page <= 5; page++ {
		for _, limit := range []int64{1, 7, 20, 50} {
			stages := Options{Page: page, Limit: limit}.Build()

			clamped := limit
			if clamped > constants.MaxLimit {
				clamped = constants.MaxLimit
			}
			skip, ok := stageValue(t, stages, "$skip")
			if !ok {
				t.Fatal("missing $skip stage")
			}
			if skip.(int64) != (page-1)*clamped {
				t.Errorf("page=%d limit=%d: skip=%v, want %d", page, limit, skip, (page-1)*clamped)
			}
			lim, ok := stageValue(t, stages, "$limit")
			if !ok {
				t.Fatal("missing $limit stage")
			}
			if lim.(int64) != clamped {
				t.Errorf("limit stage=%v, want %d", lim, clamped)
			}
		}
	}
}

func TestBuildDefaultSort(t *testing.T) {
	stages := Options{}.Build()
	v, ok := stageValue(t, stages, "$sort")
	if !ok {
		t.Fatal("missing $sort stage")
	}
	sort := v.(bson.D)
	if sort[0].Key != constants.DefaultSortField || sort[0].Value.(int) != -1 {
		t.Errorf("default sort = %v, want %s descending", sort, constants.DefaultSortField)
	}
}

func TestBuildStageOrder(t *testing.T) {
	owner := primitive.NewObjectID()
	stages := Options{
		Filters: bson.M{"owner": owner},
		Search:  "cats",
		SortBy:  "views",
		Page:    2,
		Limit:   5,
		Lookups: []Lookup{{From: "users", LocalField: "owner", ForeignField: "_id", As: "owner"}},
		Project: bson.M{"title": 1},
	}.Build()

	var order []string
	for _, s := range stages {
		order = append(order, s[0].Key)
	}
	want := []string{"$match", "$sort", "$skip", "$limit", "$lookup", "$project"}
	if len(order) != len(want) {
		t.Fatalf("stage keys = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("stage[%d] = %s, want %s (full: %v)", i, order[i], want[i], order)
		}
	}
}

func TestBuildCombinesSearchAndFiltersWithAnd(t *testing.T) {
	owner := primitive.NewObjectID()
	stages := Options{Filters: bson.M{"owner": owner}, Search: "golang"}.Build()

	v, ok := stageValue(t, stages, "$match")
	if !ok {
		t.Fatal("missing $match stage")
	}
	match := v.(bson.M)
	if match["owner"] != owner {
		t.Error("equality filter missing from match")
	}
	text, ok := match["$text"].(bson.M)
	if !ok || text["$search"] != "golang" {
		t.Errorf("text search missing from match: %v", match)
	}
}

func TestLookupStage(t *testing.T) {
	t.Run("PlainLeftJoin", func(t *testing.T) {
		st := Lookup{From: "videos", LocalField: "video", ForeignField: "_id", As: "video"}.Stage()
		spec := st[0].Value.(bson.M)
		if spec["from"] != "videos" || spec["localField"] != "video" || spec["foreignField"] != "_id" {
			t.Errorf("unexpected lookup spec: %v", spec)
		}
	})

	t.Run("ProjectedJoinUsesSubPipeline", func(t *testing.T) {
		st := Lookup{
			From: "users", LocalField: "owner", ForeignField: "_id", As: "owner",
			Project: []string{"username", "avatar"},
		}.Stage()
		spec := st[0].Value.(bson.M)
		if _, ok := spec["pipeline"]; !ok {
			t.Fatalf("projected lookup should use a sub-pipeline: %v", spec)
		}
	})

	t.Run("UnwindFollowsLookup", func(t *testing.T) {
		stages := Options{
			Lookups: []Lookup{{From: "users", LocalField: "owner", ForeignField: "_id", As: "owner", Unwind: true}},
		}.Build()
		v, ok := stageValue(t, stages, "$unwind")
		if !ok {
			t.Fatal("missing $unwind stage")
		}
		uw := v.(bson.M)
		if uw["path"] != "$owner" || uw["preserveNullAndEmptyArrays"] != true {
			t.Errorf("unexpected unwind: %v", uw)
		}
	})
}
