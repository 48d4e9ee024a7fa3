package diagnostics

import (
	"reflect"
	"testing"

	"github.com/nhdewitt/netscope/internal/protocol"
)

func TestDefaultCatalog(t *testing.T) {
	cat := DefaultCatalog()

	wantPorts := []int{80, 443, 21, 22, 25, 53, 161, 3306, 5432, 27017}
	if len(cat) != len(wantPorts) {
		t.Fatalf("expected %d entries, got %d", len(wantPorts), len(cat))
	}
	for i, p := range wantPorts {
		if cat[i].Port != p {
			t.Errorf("entry %d: got port %d, want %d", i, cat[i].Port, p)
		}
	}
	if cat[0].Name != "HTTP" || cat[9].Name != "MongoDB" {
		t.Errorf("unexpected names: %+v", cat)
	}

	// Callers may modify the returned slice.
	cat[0].Port = 1
	if DefaultCatalog()[0].Port != 80 {
		t.Error("DefaultCatalog should return a fresh slice")
	}
}

func TestMergeCatalog(t *testing.T) {
	base := []protocol.Service{{Name: "HTTP", Port: 80}, {Name: "SSH", Port: 22}}
	got := MergeCatalog(base,
		[]protocol.Service{{Name: "web/80", Port: 80}, {Name: "Redis", Port: 6379}},
		[]protocol.Service{{Name: "api/8080", Port: 8080}},
	)

	want := []protocol.Service{
		{Name: "HTTP", Port: 80},
		{Name: "SSH", Port: 22},
		{Name: "Redis", Port: 6379},
		{Name: "api/8080", Port: 8080},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
