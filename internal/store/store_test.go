package store

import (
	"context"
	"errors"
	"testing"
)

func TestHashPassword(t *testing.T) {
	cases := []struct {
		password string
		want     string
	}{
		{"password", "5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8"},
		{"123456", "7C4A8D09CA3762AF61E59520943DC26494F8941B"},
	}

	for _, tc := range cases {
		if got := HashPassword(tc.password); got != tc.want {
			t.Errorf("HashPassword(%q): %s, want: %s", tc.password, got, tc.want)
		}
	}
}

func TestNormalizeHash(t *testing.T) {
	got, err := NormalizeHash(" 5baa61e4c9b93f3f0682250b6cf8331b7ee68fd8\r")
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}
	if got != "5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8" {
		t.Errorf("NormalizeHash should uppercase, got: %s", got)
	}

	for _, bad := range []string{"", "5BAA61E4", "ZZAA61E4C9B93F3F0682250B6CF8331B7EE68FD8", "5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8AA"} {
		if _, err = NormalizeHash(bad); !errors.Is(err, ErrInvalidHash) {
			t.Errorf("NormalizeHash(%q) should fail with ErrInvalidHash, got: %v", bad, err)
		}
	}
}

func TestParseRecord(t *testing.T) {
	cases := []struct {
		line string
		want Record
		fail bool
	}{
		{"5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8", Record{Hash: "5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8"}, false},
		{"5baa61e4c9b93f3f0682250b6cf8331b7ee68fd8:9545824\r", Record{Hash: "5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8", Count: 9545824}, false},
		{"5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8:many", Record{}, true},
		{"password", Record{}, true},
	}

	for _, tc := range cases {
		got, err := ParseRecord(tc.line)
		if tc.fail {
			if err == nil {
				t.Errorf("ParseRecord(%q) should fail", tc.line)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRecord(%q) should not fail: %s", tc.line, err)
		}
		if got != tc.want {
			t.Errorf("ParseRecord(%q): %+v, want: %+v", tc.line, got, tc.want)
		}
	}
}

func TestOpen_UnknownStore(t *testing.T) {
	if _, err := Open(context.Background(), "redis", ""); err == nil {
		t.Errorf("Should fail for an unknown store")
	}
}
