package services

import "testing"

func TestNormalizeID(t *testing.T) {
	cases := map[string]string{
		"My Test! 2024":      "my-test-2024",
		"  Big Five  ":       "big-five",
		"--already-a-slug--": "already-a-slug",
		"PHQ_9":              "phq-9",
		"中文":                 "",
		"":                   "",
		"a...b///c":          "a-b-c",
	}
	for in, want := range cases {
		if got := NormalizeID(in); got != want {
			t.Fatalf("NormalizeID(%q) = %q, want %q", in, got, want)
		}
		if again := NormalizeID(want); again != want {
			t.Fatalf("NormalizeID not idempotent for %q: %q", want, again)
		}
	}
}

func TestNormalizeIDParam(t *testing.T) {
	if id, ok := NormalizeIDParam(" MBTI "); !ok || id != "mbti" {
		t.Fatalf("NormalizeIDParam = %q, %v", id, ok)
	}
	if _, ok := NormalizeIDParam("!!!"); ok {
		t.Fatalf("expected empty slug to be rejected")
	}
}
