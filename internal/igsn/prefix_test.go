package igsn

import (
	"errors"
	"testing"
)

func TestValidatePrefix(t *testing.T) {
	vocab, err := DefaultVocabulary()
	if err != nil {
		t.Fatalf("DefaultVocabulary() failed: %v", err)
	}

	cases := []struct {
		name       string
		prefix     string
		wantReason PrefixReason
	}{
		{
			name:       "too_short",
			prefix:     "foo",
			wantReason: ReasonBadLength,
		},
		{
			name:       "unknown_institution",
			prefix:     "ZZCDEF",
			wantReason: ReasonUnknownInstitution,
		},
		{
			name:       "unknown_lab",
			prefix:     "JHZDEF",
			wantReason: ReasonUnknownLab,
		},
		{
			name:       "unknown_material",
			prefix:     "JHXZZZ",
			wantReason: ReasonUnknownMaterial,
		},
		{
			name:       "unknown_subcategory",
			prefix:     "JHXMAZ",
			wantReason: ReasonUnknownSubcategory,
		},
		{
			name:   "valid",
			prefix: "JHXMAA",
		},
		{
			name:   "no_subcategory_marker_always_valid",
			prefix: "JHABOX",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePrefix(tc.prefix, vocab)
			if tc.wantReason == "" {
				if err != nil {
					t.Fatalf("ValidatePrefix(%q) failed: %v", tc.prefix, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidatePrefix(%q) succeeded, want %s error", tc.prefix, tc.wantReason)
			}
			if !errors.Is(err, ErrInvalidPrefix) {
				t.Fatalf("ValidatePrefix(%q) error %v is not ErrInvalidPrefix", tc.prefix, err)
			}
			var perr *PrefixError
			if !errors.As(err, &perr) {
				t.Fatalf("ValidatePrefix(%q) error %T is not a PrefixError", tc.prefix, err)
			}
			if perr.Reason != tc.wantReason {
				t.Fatalf("ValidatePrefix(%q) reason=%s, want %s", tc.prefix, perr.Reason, tc.wantReason)
			}
		})
	}
}

func TestPrefixErrorNamesOffendingCode(t *testing.T) {
	vocab, err := DefaultVocabulary()
	if err != nil {
		t.Fatalf("DefaultVocabulary() failed: %v", err)
	}
	verr := ValidatePrefix("ZZCDEF", vocab)
	if verr == nil {
		t.Fatal("ValidatePrefix(ZZCDEF) succeeded")
	}
	if got, want := verr.Error(), "unknown institution ZZ"; got != want {
		t.Fatalf("error=%q, want %q", got, want)
	}
}

func TestFormatIdentifier(t *testing.T) {
	cases := []struct {
		prefix string
		seq    int64
		want   string
	}{
		{prefix: "JHXMAA", seq: 1, want: "JHXMAA00001"},
		{prefix: "JHXMAA", seq: 2, want: "JHXMAA00002"},
		{prefix: "JHABOX", seq: 12345, want: "JHABOX12345"},
	}
	for _, tc := range cases {
		if got := FormatIdentifier(tc.prefix, tc.seq); got != tc.want {
			t.Fatalf("FormatIdentifier(%q, %d)=%q, want %q", tc.prefix, tc.seq, got, tc.want)
		}
	}
}

func TestChildIdentifier(t *testing.T) {
	if got, want := ChildIdentifier("JHABOX00001", "S2R1C1"), "JHABOX00001-S2R1C1"; got != want {
		t.Fatalf("ChildIdentifier=%q, want %q", got, want)
	}
}
