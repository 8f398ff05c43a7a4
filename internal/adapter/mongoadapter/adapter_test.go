package mongoadapter

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

var (
	oid1 = primitive.NewObjectID()
	oid2 = primitive.NewObjectID()
	oid3 = primitive.NewObjectID()
)

func ns(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func doc(id primitive.ObjectID, title string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "title", Value: title}}
}

func titles(records []any) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.(bson.M)["title"].(string)
	}
	return out
}

func TestMatches(t *testing.T) {
	if !Matches(model.MustNew("Article", &Collection{})) {
		t.Error("expected *Collection source to match")
	}
	if Matches(model.MustNew("Article", struct{}{})) {
		t.Error("expected other sources not to match")
	}
}

func TestFetch(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("reorders to hit order", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			doc(oid1, "first"), doc(oid2, "second"), doc(oid3, "third")))
		c := model.MustNew("Article", &Collection{Coll: mt.Coll})

		got, err := Set().Records.Fetch(context.Background(), adapter.Lookup{
			Class: c,
			IDs:   []string{oid3.Hex(), oid1.Hex(), oid2.Hex()},
		})
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if tt := titles(adapter.Values(got)); len(tt) != 3 || tt[0] != "third" || tt[1] != "first" || tt[2] != "second" {
			mt.Errorf("titles = %v", tt)
		}
	})

	mt.Run("configured sort keeps backend order", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			doc(oid1, "first"), doc(oid3, "third")))
		c := model.MustNew("Article", &Collection{Coll: mt.Coll, Sort: bson.D{{Key: "title", Value: 1}}})

		got, err := Set().Records.Fetch(context.Background(), adapter.Lookup{
			Class: c,
			IDs:   []string{oid3.Hex(), oid1.Hex()},
		})
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if tt := titles(adapter.Values(got)); tt[0] != "first" {
			mt.Errorf("titles = %v, want backend order", tt)
		}
	})

	mt.Run("missing documents are omitted", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, doc(oid2, "second")))
		c := model.MustNew("Article", &Collection{Coll: mt.Coll})

		got, err := Set().Records.Fetch(context.Background(), adapter.Lookup{
			Class: c,
			IDs:   []string{oid1.Hex(), oid2.Hex()},
		})
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 {
			mt.Errorf("got %d records, want 1", len(got))
		}
	})

	mt.Run("command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Message: "unauthorized",
			Name:    "Unauthorized",
		}))
		c := model.MustNew("Article", &Collection{Coll: mt.Coll})

		if _, err := Set().Records.Fetch(context.Background(), adapter.Lookup{Class: c, IDs: []string{"x"}}); err == nil {
			mt.Fatal("expected error")
		}
	})
}

func TestFetch_InvalidSource(t *testing.T) {
	c := model.MustNew("Article", &Collection{})
	if _, err := Set().Records.Fetch(context.Background(), adapter.Lookup{Class: c}); err == nil {
		t.Fatal("expected error for collection without handle")
	}
}

func TestFindInBatches(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("splits cursor into batches", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			doc(oid1, "first"), doc(oid2, "second"), doc(oid3, "third")))
		c := model.MustNew("Article", &Collection{Coll: mt.Coll})

		var sizes []int
		err := Set().Importing.FindInBatches(context.Background(), c, adapter.BatchOptions{Size: 2}, func(b []any) error {
			sizes = append(sizes, len(b))
			return nil
		})
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if len(sizes) != 2 || sizes[0] != 2 || sizes[1] != 1 {
			mt.Errorf("sizes = %v", sizes)
		}
	})

	mt.Run("callback error stops iteration", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			doc(oid1, "first"), doc(oid2, "second")))
		c := model.MustNew("Article", &Collection{Coll: mt.Coll})
		stop := errors.New("stop")

		err := Set().Importing.FindInBatches(context.Background(), c, adapter.BatchOptions{Size: 1}, func([]any) error { return stop })
		if !errors.Is(err, stop) {
			mt.Fatalf("expected callback error, got %v", err)
		}
	})

	mt.Run("unsupported scope", func(mt *mtest.T) {
		c := model.MustNew("Article", &Collection{Coll: mt.Coll})
		err := Set().Importing.FindInBatches(context.Background(), c, adapter.BatchOptions{Scope: 42}, func([]any) error { return nil })
		if err == nil {
			mt.Fatal("expected error")
		}
	})
}

func TestToObjectIDs(t *testing.T) {
	got := toObjectIDs([]string{oid1.Hex(), "slug"})
	if got[0] != oid1 {
		t.Errorf("got[0] = %v, want ObjectID", got[0])
	}
	if got[1] != "slug" {
		t.Errorf("got[1] = %v, want string", got[1])
	}
}

func TestFilter(t *testing.T) {
	c := &Collection{}
	if f := c.filter(nil); len(f) != 0 {
		t.Errorf("empty filter = %v", f)
	}
	c.Filter = bson.M{"published": true}
	if f := c.filter(nil); f["published"] != true {
		t.Errorf("static filter = %v", f)
	}
	f := c.filter(bson.M{"author": "x"})
	if and, ok := f["$and"].(bson.A); !ok || len(and) != 2 {
		t.Errorf("combined filter = %v", f)
	}
}

func TestParseSort(t *testing.T) {
	got := ParseSort("title, -created_at, score desc")
	want := bson.D{{Key: "title", Value: 1}, {Key: "created_at", Value: -1}, {Key: "score", Value: -1}}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestIDOf(t *testing.T) {
	idFn := idOf(model.MustNew("Article", &Collection{}))
	if id, err := idFn(bson.M{"_id": oid1}); err != nil || id != oid1.Hex() {
		t.Errorf("id = %q, %v", id, err)
	}
	if id, err := idFn(map[string]any{"_id": "slug"}); err != nil || id != "slug" {
		t.Errorf("id = %q, %v", id, err)
	}
	if _, err := idFn(bson.M{"title": "x"}); err == nil {
		t.Error("expected error for document without _id")
	}
}
