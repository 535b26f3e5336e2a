package store

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestWatchPipelinePassesDeleteEvents(t *testing.T) {
	pipeline := watchPipeline("user-1")
	if len(pipeline) != 1 {
		t.Fatalf("pipeline stages = %d, want 1", len(pipeline))
	}

	match, ok := pipeline[0][0].Value.(bson.M)
	if !ok {
		t.Fatalf("match stage value is %T, want bson.M", pipeline[0][0].Value)
	}
	clauses, ok := match["$or"].(bson.A)
	if !ok {
		t.Fatalf("match stage = %#v, want an $or over user filter and deletes", match)
	}

	var userFiltered, deletesPass bool
	for _, clause := range clauses {
		m, ok := clause.(bson.M)
		if !ok {
			continue
		}
		if m["fullDocument.userId"] == "user-1" {
			userFiltered = true
		}
		if m["operationType"] == "delete" {
			deletesPass = true
		}
	}
	if !userFiltered {
		t.Error("pipeline does not filter on the user's documents")
	}
	if !deletesPass {
		t.Error("delete events carry no fullDocument and would be dropped")
	}
}
