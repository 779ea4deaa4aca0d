package statemachine

import (
	"encoding/json"
	"testing"
)

func mustCmd(t *testing.T, c Command) []byte {
	t.Helper()
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestAddShowThenReserve(t *testing.T) {
	sm, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	if err := sm.Apply(mustCmd(t, Command{Type: CommandAddShow, ShowID: "s1", TotalSeats: 10, PriceCents: 100})); err != nil {
		t.Fatal(err)
	}
	if err := sm.Apply(mustCmd(t, Command{Type: CommandReserve, ShowID: "s1", SeatID: 3, UserID: "u1", BookingID: "b1"})); err != nil {
		t.Fatal(err)
	}

	res := sm.Query("s1", 3)
	if !res.Exists || !res.Reserved || res.UserID != "u1" || res.PriceCents != 100 {
		t.Fatalf("unexpected query result: %+v", res)
	}
}

func TestReserveIsNoOpWhenAlreadyReserved(t *testing.T) {
	sm, _ := New("")
	sm.Apply(mustCmd(t, Command{Type: CommandAddShow, ShowID: "s1", TotalSeats: 10, PriceCents: 100}))
	sm.Apply(mustCmd(t, Command{Type: CommandReserve, ShowID: "s1", SeatID: 1, UserID: "u1", BookingID: "b1"}))
	sm.Apply(mustCmd(t, Command{Type: CommandReserve, ShowID: "s1", SeatID: 1, UserID: "u2", BookingID: "b2"}))

	res := sm.Query("s1", 1)
	if res.UserID != "u1" {
		t.Fatalf("expected first reservation to stick, got user %q", res.UserID)
	}
}

func TestReserveUnknownShowIsNoOp(t *testing.T) {
	sm, _ := New("")
	sm.Apply(mustCmd(t, Command{Type: CommandReserve, ShowID: "missing", SeatID: 1, UserID: "u1", BookingID: "b1"}))
	res := sm.Query("missing", 1)
	if res.Exists {
		t.Fatalf("expected no-op for unknown show, got %+v", res)
	}
}

func TestReserveOutOfRangeSeatIsNoOp(t *testing.T) {
	sm, _ := New("")
	sm.Apply(mustCmd(t, Command{Type: CommandAddShow, ShowID: "s1", TotalSeats: 2, PriceCents: 100}))
	sm.Apply(mustCmd(t, Command{Type: CommandReserve, ShowID: "s1", SeatID: 99, UserID: "u1", BookingID: "b1"}))
	res := sm.Query("s1", 99)
	if res.Exists {
		t.Fatalf("expected out-of-range seat query to report not exists, got %+v", res)
	}
}

func TestDeterministicReplay(t *testing.T) {
	commands := [][]byte{
		mustCmd(t, Command{Type: CommandAddShow, ShowID: "s1", TotalSeats: 5, PriceCents: 200}),
		mustCmd(t, Command{Type: CommandReserve, ShowID: "s1", SeatID: 1, UserID: "u1", BookingID: "b1"}),
		mustCmd(t, Command{Type: CommandReserve, ShowID: "s1", SeatID: 2, UserID: "u2", BookingID: "b2"}),
	}

	a, _ := New("")
	b, _ := New("")
	for _, c := range commands {
		a.Apply(c)
		b.Apply(c)
	}

	for seat := uint32(1); seat <= 5; seat++ {
		if a.Query("s1", seat) != b.Query("s1", seat) {
			t.Fatalf("replicas diverged on seat %d", seat)
		}
	}
}

func TestListShowsCounts(t *testing.T) {
	sm, _ := New("")
	sm.Apply(mustCmd(t, Command{Type: CommandAddShow, ShowID: "s1", TotalSeats: 3, PriceCents: 500}))
	sm.Apply(mustCmd(t, Command{Type: CommandReserve, ShowID: "s1", SeatID: 1, UserID: "u1", BookingID: "b1"}))

	shows := sm.ListShows()
	if len(shows) != 1 {
		t.Fatalf("expected 1 show, got %d", len(shows))
	}
	if shows[0].BookedSeats != 1 || shows[0].AvailableSeats != 2 {
		t.Fatalf("unexpected counts: %+v", shows[0])
	}
}

func TestListSeatsPagination(t *testing.T) {
	sm, _ := New("")
	sm.Apply(mustCmd(t, Command{Type: CommandAddShow, ShowID: "s1", TotalSeats: 5, PriceCents: 100}))

	seats, nums, next := sm.ListSeats("s1", 0, 2)
	if len(seats) != 2 || nums[0] != 1 || nums[1] != 2 || next != 3 {
		t.Fatalf("unexpected first page: seats=%v nums=%v next=%d", seats, nums, next)
	}
	seats, nums, next = sm.ListSeats("s1", next, 2)
	if len(seats) != 2 || nums[0] != 3 || nums[1] != 4 || next != 5 {
		t.Fatalf("unexpected second page: seats=%v nums=%v next=%d", seats, nums, next)
	}
	seats, nums, next = sm.ListSeats("s1", next, 2)
	if len(seats) != 1 || nums[0] != 5 || next != 0 {
		t.Fatalf("unexpected final page: seats=%v nums=%v next=%d", seats, nums, next)
	}
}
