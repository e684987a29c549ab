package util

import (
	"testing"
)

func TestToScreamingSnakeCase(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Port", "PORT"},
		{"GcsFile", "GCS_FILE"},
		{"TLSCert", "TLS_CERT"},
		{"SelfTLS", "SELF_TLS"},
		{"CheckerURL", "CHECKER_URL"},
		{"DatabaseURL SqliteFile", "DATABASE_URL, SQLITE_FILE"},
		{"PostgresDB", "POSTGRES_DB"},
	}

	for _, tc := range cases {
		if got := ToScreamingSnakeCase(tc.in); got != tc.want {
			t.Errorf("ToScreamingSnakeCase(%q): %q, want: %q", tc.in, got, tc.want)
		}
	}
}

func TestCheckRam_NoItems(t *testing.T) {
	if err := CheckRam(0, true); err != nil {
		t.Errorf("Should not fail for no items: %s", err)
	}
}
