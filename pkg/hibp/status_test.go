package hibp

import (
	"context"
	"golang.org/x/net/http/httpproxy"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestStatus(t *testing.T) {
	s := newStatus(40)
	if s.step != 2 {
		t.Errorf("Should report every 2 ranges, have %d", s.step)
	}

	hit := &http.Response{Header: http.Header{"Cf-Cache-Status": []string{"HIT"}}}
	miss := &http.Response{Header: http.Header{}}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%3 == 0 {
				s.RangeFailed()
				s.RequestComplete(miss, time.Millisecond)
				return
			}
			s.RangeDone(5)
			s.RequestComplete(hit, time.Millisecond)
		}(i)
	}
	wg.Wait()
	s.Done()

	if s.Failed() != 10 {
		t.Errorf("Should count 10 failed ranges, have %d", s.Failed())
	}
	if s.Hashes() != 100 {
		t.Errorf("Should count 100 hashes, have %d", s.Hashes())
	}
	if s.requests != 30 || s.cacheHits != 20 {
		t.Errorf("Should count 30 requests and 20 cache hits, have %d and %d", s.requests, s.cacheHits)
	}
}

func TestStatus_NoRequests(t *testing.T) {
	s := newStatus(1)
	if s.step != 0 {
		t.Errorf("Should not step under 20 ranges, have %d", s.step)
	}
	// Must not divide by zero requests.
	s.Done()
}

func TestDownloader_Status(t *testing.T) {
	srv := rangeServer(t, "00001")

	file, err := os.Create(filepath.Join(t.TempDir(), "download.txt"))
	if err != nil {
		t.Fatalf("Should not fail creating a file: %s", err)
	}
	defer file.Close()

	downloader := NewDownloader(file, 2, WithRangeURL(srv.URL+"/range/"), WithRetries(0))
	if err = downloader.ProcessRanges(context.Background(), 3, true); err == nil {
		t.Fatal("Should report the failed range")
	}

	if downloader.stat.Hashes() != 4 {
		t.Errorf("Should count 4 hashes, have %d", downloader.stat.Hashes())
	}
	if downloader.stat.Failed() != 1 {
		t.Errorf("Should count 1 failed range, have %d", downloader.stat.Failed())
	}
	if downloader.stat.requests != 2 || downloader.stat.cacheHits != 2 {
		t.Errorf("Should count 2 cached requests, have %d of %d", downloader.stat.cacheHits, downloader.stat.requests)
	}
}

func TestRangeProxy(t *testing.T) {
	proxy := rangeProxy(&httpproxy.Config{
		HTTPSProxy: "http://proxy.internal:3128",
		NoProxy:    "mirror.internal",
	})

	cases := []struct {
		url  string
		want string
	}{
		{DefaultRangeURL + "00000", "proxy.internal:3128"},
		{"https://mirror.internal/range/00000", ""},
		{"http://api.pwnedpasswords.com/range/00000", ""},
	}

	for _, tc := range cases {
		req, err := http.NewRequest(http.MethodGet, tc.url, nil)
		if err != nil {
			t.Fatal(err)
		}

		got, err := proxy(req)
		if err != nil {
			t.Fatalf("Should not fail resolving the proxy of %s: %s", tc.url, err)
		}

		host := ""
		if got != nil {
			host = got.Host
		}
		if host != tc.want {
			t.Errorf("Proxy of %s: %q, want: %q", tc.url, host, tc.want)
		}
	}
}
