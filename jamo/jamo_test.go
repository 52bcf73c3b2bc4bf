package jamo

import "testing"

func TestComposeDecomposeRoundTrip(t *testing.T) {
	for onset := 0; onset < LCount; onset++ {
		for nucleus := 0; nucleus < VCount; nucleus++ {
			for coda := 0; coda < TCount; coda++ {
				r, ok := Compose(onset, nucleus, coda)
				if !ok {
					t.Fatalf("Compose(%d,%d,%d) not ok", onset, nucleus, coda)
				}
				o2, n2, c2, ok := Decompose(r)
				if !ok || o2 != onset || n2 != nucleus || c2 != coda {
					t.Fatalf("Decompose(Compose(%d,%d,%d))=%d,%d,%d,%v", onset, nucleus, coda, o2, n2, c2, ok)
				}
			}
		}
	}
}

func TestNormalizeJoinRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"한글",
		"안녕하세요",
		"hello",
		"hello한글123",
		"ㄱㄴㄷ",
		"값",
		"닭",
		"꽃",
		"맛있었음",
		" 섞인 text 42 ",
	}
	for _, s := range cases {
		got := JoinString(NormalizeString(s))
		if got != s {
			t.Errorf("Join(Normalize(%q)) = %q, want %q", s, got, s)
		}
	}
}

func TestNormalizeDecomposesCoda(t *testing.T) {
	units := Normalize("값")
	if len(units) != 3 {
		t.Fatalf("len(Normalize(값)) = %d, want 3", len(units))
	}
	if !IsOnset(units[0]) || !IsNucleus(units[1]) || !IsCoda(units[2]) {
		t.Fatalf("Normalize(값) = %v, want onset,nucleus,coda", units)
	}
}

func TestNormalizeOmitsAbsentCoda(t *testing.T) {
	units := Normalize("가")
	if len(units) != 2 {
		t.Fatalf("len(Normalize(가)) = %d, want 2 (no coda)", len(units))
	}
}

func TestNonHangulPassesThrough(t *testing.T) {
	units := Normalize("a1!")
	if string(units) != "a1!" {
		t.Fatalf("Normalize(a1!) = %q, want unchanged", string(units))
	}
}

func FuzzNormalizeJoinRoundTrip(f *testing.F) {
	seeds := []string{"한글", "값", "안녕하세요!", "hello", "", "ㄱ", "맛있었음", "꽃다발"}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		// The round trip holds for precomposed Hangul syllables and runes
		// outside the conjoining-jamo blocks: Normalize never produces
		// malformed partial sequences from such input, and Join recomposes
		// exactly what Normalize decomposed. A generated input that contains
		// conjoining jamo or invalid UTF-8 is reported as a failure.
		got := JoinString(NormalizeString(s))
		if got != s {
			t.Errorf("round trip failed: input %q, got %q", s, got)
		}
	})
}
