package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{10, 10},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
	}
	for _, tc := range cases {
		if got := NormalizeLimit(tc.in); got != tc.want {
			t.Errorf("NormalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Now().UTC().Truncate(time.Microsecond), ID: uuid.New()}

	out, err := ParseCursor(EncodeCursor(in))
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if out == nil {
		t.Fatal("expected cursor, got nil")
	}
	if !out.CreatedAt.Equal(in.CreatedAt) || out.ID != in.ID {
		t.Errorf("round trip mismatch: got %+v want %+v", out, in)
	}
}

func TestParseCursorEmpty(t *testing.T) {
	out, err := ParseCursor("  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Errorf("expected nil cursor for blank value, got %+v", out)
	}
}

func TestParseCursorInvalid(t *testing.T) {
	for _, value := range []string{"not-base64!!", "bm8tcGlwZQ=="} {
		if _, err := ParseCursor(value); err == nil {
			t.Errorf("expected error for %q", value)
		}
	}
}

type row struct {
	at time.Time
	id uuid.UUID
}

func TestBuildPage(t *testing.T) {
	base := time.Now().UTC()
	rows := make([]row, 4)
	for i := range rows {
		rows[i] = row{at: base.Add(-time.Duration(i) * time.Minute), id: uuid.New()}
	}
	keyOf := func(r row) Cursor { return Cursor{CreatedAt: r.at, ID: r.id} }

	page := BuildPage(rows, 3, keyOf)
	if len(page.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(page.Items))
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor when a buffered row exists")
	}
	cur, err := ParseCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("parse next cursor: %v", err)
	}
	if cur.ID != rows[2].id {
		t.Errorf("next cursor keyed on %s, want last visible row %s", cur.ID, rows[2].id)
	}

	last := BuildPage(rows[:2], 3, keyOf)
	if last.NextCursor != "" {
		t.Errorf("expected empty cursor on final page, got %q", last.NextCursor)
	}
}
