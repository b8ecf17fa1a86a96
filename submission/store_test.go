package submission

import "testing"

func TestMemoryStoreLifecycle(t *testing.T) {
	s := NewMemoryStore()
	if s.Len() != 0 {
		t.Fatalf("new store len = %d", s.Len())
	}

	rec := Record{ID: "1_100", Title: "t", Body: "b", AuthorID: 1, AuthorName: "alice"}
	s.Put(rec.ID, rec)
	if s.Len() != 1 {
		t.Fatalf("len after put = %d", s.Len())
	}

	got, ok := s.Get(rec.ID)
	if !ok {
		t.Fatal("expected record")
	}
	if got != rec {
		t.Fatalf("got %+v, expected %+v", got, rec)
	}

	s.Delete(rec.ID)
	if _, ok := s.Get(rec.ID); ok {
		t.Fatal("record should be gone after delete")
	}
	if s.Len() != 0 {
		t.Fatalf("len after delete = %d", s.Len())
	}
}

func TestMemoryStoreDeleteAbsentIsNoop(t *testing.T) {
	s := NewMemoryStore()
	s.Put("a", Record{ID: "a"})
	s.Delete("missing")
	if s.Len() != 1 {
		t.Fatalf("len = %d, delete of absent id must not touch others", s.Len())
	}
}

func TestMemoryStorePutOverwrites(t *testing.T) {
	s := NewMemoryStore()
	s.Put("a", Record{ID: "a", Title: "first"})
	s.Put("a", Record{ID: "a", Title: "second"})
	got, _ := s.Get("a")
	if got.Title != "second" {
		t.Fatalf("title = %q, expected overwrite", got.Title)
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d after overwrite", s.Len())
	}
}
