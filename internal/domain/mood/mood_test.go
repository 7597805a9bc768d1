package mood

import (
	"strings"
	"testing"
	"time"
)

func TestDerive_Boundaries(t *testing.T) {
	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		created time.Time
		want    Mood
	}{
		{"recien creada", now, Happy},
		{"1 dia exacto", now.Add(-24 * time.Hour), Happy},
		{"1 dia + 1s", now.Add(-24*time.Hour - time.Second), Excited},
		{"2 dias", now.Add(-48 * time.Hour), Excited},
		{"3 dias exactos", now.Add(-72 * time.Hour), Excited},
		{"3 dias + 1s", now.Add(-72*time.Hour - time.Second), Sad},
		{"30 dias", now.Add(-30 * 24 * time.Hour), Sad},
		{"creada en el futuro", now.Add(2 * time.Hour), Happy},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Derive(tc.created, false, now); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestDerive_AdoptedIsAlwaysHappy(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 24*30; h += 7 {
		now := created.Add(time.Duration(h) * time.Hour)
		if got := Derive(created, true, now); got != Happy {
			t.Fatalf("adopted pet at +%dh: expected Happy, got %s", h, got)
		}
	}
}

func TestDerive_IgnoresAdoptionPolicy(t *testing.T) {
	p := Policy{IgnoresAdoption: true}
	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

	if got := p.Derive(now.Add(-5*24*time.Hour), true, now); got != Sad {
		t.Fatalf("expected Sad when adoption is ignored, got %s", got)
	}
	if got := p.Derive(now, true, now); got != Happy {
		t.Fatalf("expected Happy for fresh pet, got %s", got)
	}
}

func TestDerive_NeverImprovesWithTime(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	prev := Derive(created, false, created)
	for m := 0; m <= 6*24*60; m += 17 {
		now := created.Add(time.Duration(m) * time.Minute)
		cur := Derive(created, false, now)
		if Rank(cur) > Rank(prev) {
			t.Fatalf("mood improved at +%dm: %s -> %s", m, prev, cur)
		}
		prev = cur
	}
}

func TestParse(t *testing.T) {
	for in, want := range map[string]Mood{"happy": Happy, "EXCITED": Excited, " Sad ": Sad} {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("Parse(%q): expected %s, got %s", in, want, got)
		}
	}

	if _, err := Parse("grumpy"); err != ErrUnknownMood {
		t.Fatalf("expected ErrUnknownMood, got %v", err)
	}
}

func TestAll_OrderedByRankAndParseable(t *testing.T) {
	all := All()
	if len(all) != 3 {
		t.Fatalf("expected 3 moods, got %d", len(all))
	}
	for i, m := range all {
		if i > 0 && Rank(all[i-1]) <= Rank(m) {
			t.Fatalf("%s should rank above %s", all[i-1], m)
		}
		got, err := Parse(strings.ToLower(string(m)))
		if err != nil || got != m {
			t.Fatalf("Parse(%q): got %s err=%v", m, got, err)
		}
	}
}
