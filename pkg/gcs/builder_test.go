package gcs

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

func buildSet(t *testing.T, members []string, probability, granularity uint64) string {
	t.Helper()

	var in bytes.Buffer
	for i, m := range members {
		// Half of the lines carry a HIBP style count suffix.
		if i%2 == 0 {
			fmt.Fprintf(&in, "%s:%d\n", sha1Hex(m), i+1)
		} else {
			fmt.Fprintf(&in, "%s\n", sha1Hex(m))
		}
	}
	in.WriteString("not a hash\n")

	path := filepath.Join(t.TempDir(), "set.gcs")
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	builder := NewBuilder(&in, out, probability, granularity)
	if err = builder.Process(true); err != nil {
		t.Fatalf("Process should not fail: %s", err)
	}
	if err = out.Close(); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestBuilderAndReader(t *testing.T) {
	members := make([]string, 0, 500)
	for i := 0; i < 500; i++ {
		members = append(members, fmt.Sprintf("password%d", i))
	}

	for _, granularity := range []uint64{1, 16, 1024} {
		path := buildSet(t, members, 1<<20, granularity)

		reader := NewReader(path)
		if err := reader.Initialize(); err != nil {
			t.Fatalf("Initialize should not fail: %s", err)
		}

		if reader.Len() != uint64(len(members)) {
			t.Errorf("Len: %d, want: %d", reader.Len(), len(members))
		}

		for _, m := range members {
			h, _ := U64FromHex([]byte(sha1Hex(m)))
			found, err := reader.Exists(h)
			if err != nil {
				t.Fatalf("Exists should not fail: %s", err)
			}
			if !found {
				t.Errorf("Should find %q with index granularity %d", m, granularity)
			}
		}

		misses := 0
		for i := 0; i < 500; i++ {
			h, _ := U64FromHex([]byte(sha1Hex(fmt.Sprintf("correct horse %d", i))))
			found, err := reader.Exists(h)
			if err != nil {
				t.Fatalf("Exists should not fail: %s", err)
			}
			if !found {
				misses++
			}
		}
		if misses < 495 {
			t.Errorf("Should not find most non members, only %d of 500 missed", misses)
		}
	}
}

func TestBuilder_Duplicates(t *testing.T) {
	path := buildSet(t, []string{"a", "b", "a", "c", "b"}, 1024, 2)

	reader := NewReader(path)
	if err := reader.Initialize(); err != nil {
		t.Fatalf("Initialize should not fail: %s", err)
	}

	for _, m := range []string{"a", "b", "c"} {
		h, _ := U64FromHex([]byte(sha1Hex(m)))
		if found, err := reader.Exists(h); err != nil || !found {
			t.Errorf("Should find %q, got %v, %v", m, found, err)
		}
	}
}

func TestBuilder_Errors(t *testing.T) {
	var out bytes.Buffer

	err := NewBuilder(strings.NewReader("nothing here\n"), &out, 1024, 16).Process(true)
	if err == nil {
		t.Errorf("Should fail without any hash in the input")
	}

	err = NewBuilder(strings.NewReader(sha1Hex("a")+"\n"), &out, 1, 16).Process(true)
	if err == nil {
		t.Errorf("Should fail with a false positive rate below 2")
	}
}

func TestReader_NotGCS(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name    string
		content []byte
	}{
		{"empty", []byte{}},
		{"short", []byte("[GCS:v0]")},
		{"no magic", bytes.Repeat([]byte{0x01}, 64)},
	}

	for _, tc := range cases {
		path := filepath.Join(dir, tc.name)
		if err := os.WriteFile(path, tc.content, 0o600); err != nil {
			t.Fatal(err)
		}

		if err := NewReader(path).Initialize(); err == nil {
			t.Errorf("Initialize of %s file should fail", tc.name)
		}
	}

	if err := NewReader(filepath.Join(dir, "missing")).Initialize(); err == nil {
		t.Errorf("Initialize of a missing file should fail")
	}
}

func TestReader_Uninitialized(t *testing.T) {
	if _, err := NewReader("unused").Exists(42); err == nil {
		t.Errorf("Exists should fail before Initialize")
	}
}

func TestU64FromHex(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
		fail bool
	}{
		{"0000000000000001", 1, false},
		{"00000000000000FFAAAA", 255, false},
		{"5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8:3", 0x5BAA61E4C9B93F3F, false},
		{"ABC", 0, true},
		{"ZZZZZZZZZZZZZZZZ", 0, true},
	}

	for _, tc := range cases {
		got, err := U64FromHex([]byte(tc.in))
		if tc.fail {
			if err == nil {
				t.Errorf("U64FromHex(%q) should fail", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("U64FromHex(%q) should not fail: %s", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("U64FromHex(%q): %x, want: %x", tc.in, got, tc.want)
		}
	}
}

func TestClosestIndex(t *testing.T) {
	index := []indexPair{{0, 0}, {10, 5}, {20, 9}, {30, 14}}

	cases := []struct {
		value uint64
		want  int
	}{
		{0, 0},
		{5, 0},
		{10, 1},
		{19, 1},
		{20, 2},
		{31, 3},
		{1 << 40, 3},
	}

	for _, tc := range cases {
		if got := closestIndex(index, tc.value); got != tc.want {
			t.Errorf("closestIndex(%d): %d, want: %d", tc.value, got, tc.want)
		}
	}
}

func TestDedup(t *testing.T) {
	got := dedup([]uint64{1, 1, 2, 3, 3, 3, 4})
	want := []uint64{1, 2, 3, 4}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("dedup: %v, want: %v", got, want)
	}
}
