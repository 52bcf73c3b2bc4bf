package feature

import (
	"testing"

	"github.com/ko-nlp/komorph/jamo"
)

func TestVowelNonVowel(t *testing.T) {
	open := jamo.Normalize("가")  // ends in nucleus
	closed := jamo.Normalize("값") // ends in coda ㅄ

	if !Vowel(open) {
		t.Errorf("Vowel(가) = false, want true")
	}
	if Vowel(closed) {
		t.Errorf("Vowel(값) = true, want false")
	}
	if !NonVowel(closed) {
		t.Errorf("NonVowel(값) = false, want true")
	}
}

func TestVocalic(t *testing.T) {
	rieulEnd := jamo.Normalize("갈") // ends ㄹ coda
	if !Vocalic(rieulEnd) {
		t.Errorf("Vocalic(갈) = false, want true")
	}
	if Applosive(rieulEnd) {
		t.Errorf("Applosive(갈) = true, want false")
	}
}

func TestVocalicH(t *testing.T) {
	hEnd := jamo.Normalize("좋") // ends ㅎ coda
	if Vocalic(hEnd) {
		t.Errorf("Vocalic(좋) = true, want false (ㅎ alone is not plain vocalic)")
	}
	if !VocalicH(hEnd) {
		t.Errorf("VocalicH(좋) = false, want true")
	}
}

func TestApplosive(t *testing.T) {
	cases := map[string]bool{
		"먹": true,  // ㄱ
		"밖": true,  // ㄲ
		"있": true,  // ㅆ
		"갈": false, // ㄹ
		"간": false, // ㄴ
	}
	for word, want := range cases {
		got := Applosive(jamo.Normalize(word))
		if got != want {
			t.Errorf("Applosive(%s) = %v, want %v", word, got, want)
		}
	}
}

func TestPositive(t *testing.T) {
	cases := map[string]bool{
		"가": true,  // ㅏ
		"보": true,  // ㅗ
		"하": true,  // ㅏ, trivially positive on its own nucleus
		"먹": false, // ㅓ
		"서": false, // ㅓ
		"기": false, // ㅣ
	}
	for word, want := range cases {
		got := Positive(jamo.Normalize(word))
		if got != want {
			t.Errorf("Positive(%s) = %v, want %v", word, got, want)
		}
	}
}

// TestPositiveSkipsTrailingEu covers the multi-syllable 으-final (르/으
// irregular) case: the tail nucleus ㅡ carries no harmony information of its
// own, so Positive must fall through to the syllable before it.
func TestPositiveSkipsTrailingEu(t *testing.T) {
	cases := map[string]bool{
		"고르":  true,  // ㅗ precedes tail ㅡ: positive (골라)
		"구르":  false, // ㅜ precedes tail ㅡ: negative (굴러)
		"잠그":  true,  // ㅏ precedes tail ㅡ: positive (잠가)
		"끄":   false, // bare ㅡ, no preceding syllable: defaults negative (꺼)
		"쓰":   false, // bare ㅡ, no preceding syllable: defaults negative (써)
	}
	for word, want := range cases {
		got := Positive(jamo.Normalize(word))
		if got != want {
			t.Errorf("Positive(%s) = %v, want %v", word, got, want)
		}
	}
}

func TestMatchesEquivalenceOnSuffix(t *testing.T) {
	// matches(s, cond) == matches(last_syllable(s), cond) whenever cond is a
	// pure suffix condition.
	full := jamo.Normalize("아름다운갈")
	lastOnly := jamo.Normalize("갈")
	for _, cond := range []CondVowel{CVVowel, CVNonVowel, CVVocalic, CVNonVocalic, CVVocalicH, CVNonVocalicH, CVApplosive} {
		if Matches(full, cond) != Matches(lastOnly, cond) {
			t.Errorf("Matches mismatch for cond %v", cond)
		}
	}
}
