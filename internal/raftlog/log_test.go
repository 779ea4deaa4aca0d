package raftlog

import "testing"

func TestAppendContiguous(t *testing.T) {
	l, err := Open("")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		e, err := l.Append(1, []byte("cmd"))
		if err != nil {
			t.Fatal(err)
		}
		if e.Index != uint64(i+1) {
			t.Fatalf("expected index %d, got %d", i+1, e.Index)
		}
	}
	if l.LastIndex() != 3 {
		t.Fatalf("expected last index 3, got %d", l.LastIndex())
	}
	if l.LastTerm() != 1 {
		t.Fatalf("expected last term 1, got %d", l.LastTerm())
	}
}

func TestGetMissing(t *testing.T) {
	l, _ := Open("")
	if _, ok := l.Get(1); ok {
		t.Fatal("expected miss on empty log")
	}
}

func TestAppendReplicatedReplacesSuffix(t *testing.T) {
	l, _ := Open("")
	l.Append(1, []byte("a"))
	l.Append(1, []byte("b"))
	l.Append(1, []byte("c"))

	err := l.AppendReplicated(1, []Entry{
		{Index: 2, Term: 2, Command: []byte("b2")},
		{Index: 3, Term: 2, Command: []byte("c2")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if l.LastIndex() != 3 {
		t.Fatalf("expected last index 3, got %d", l.LastIndex())
	}
	e, ok := l.Get(2)
	if !ok || e.Term != 2 || string(e.Command) != "b2" {
		t.Fatalf("expected overwritten entry at index 2, got %+v ok=%v", e, ok)
	}
}

func TestInconsistentAppendReplicated(t *testing.T) {
	l, _ := Open("")
	err := l.AppendReplicated(5, []Entry{{Index: 6, Term: 1, Command: []byte("x")}})
	if err != ErrInconsistentAppend {
		t.Fatalf("expected ErrInconsistentAppend, got %v", err)
	}
}

func TestEntriesFrom(t *testing.T) {
	l, _ := Open("")
	l.Append(1, []byte("a"))
	l.Append(1, []byte("b"))
	l.Append(2, []byte("c"))
	entries := l.EntriesFrom(2)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Index != 2 || entries[1].Index != 3 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}
