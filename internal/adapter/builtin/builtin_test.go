package builtin

import (
	"testing"

	"github.com/kailas-cloud/esmodel/internal/adapter"
	"github.com/kailas-cloud/esmodel/internal/adapter/mongoadapter"
	"github.com/kailas-cloud/esmodel/internal/adapter/multimodel"
	"github.com/kailas-cloud/esmodel/internal/adapter/redisadapter"
	"github.com/kailas-cloud/esmodel/internal/adapter/sqladapter"
	"github.com/kailas-cloud/esmodel/internal/domain/model"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.Len() != 4 {
		t.Fatalf("Len = %d, want 4", r.Len())
	}

	mm, err := multimodel.New(r, nil)
	if err != nil {
		t.Fatalf("multimodel: %v", err)
	}

	tests := []struct {
		source any
		want   string
	}{
		{&sqladapter.Table{}, sqladapter.Name},
		{&mongoadapter.Collection{}, mongoadapter.Name},
		{&redisadapter.Keyspace{}, redisadapter.Name},
		{struct{}{}, adapter.DefaultName},
	}
	for _, tc := range tests {
		c := model.MustNew("Article", tc.source)
		if got := r.FromClass(c).Name(); got != tc.want {
			t.Errorf("FromClass(%T) = %q, want %q", tc.source, got, tc.want)
		}
	}
	if got := r.FromClass(mm.Class()).Name(); got != multimodel.Name {
		t.Errorf("FromClass(multimodel) = %q", got)
	}
}
