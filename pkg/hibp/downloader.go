// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"github.com/alvinbaena/pwd-advisor/internal/util"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
	"github.com/thinhdanggroup/executor"
	"golang.org/x/net/http/httpproxy"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	// RangeCount is the number of 5 character hash prefixes, 00000 to FFFFF.
	RangeCount = 1 << 20
	// DefaultRangeURL is the k-anonymity range API of Pwned Passwords.
	DefaultRangeURL = "https://api.pwnedpasswords.com/range/"
	// A full download is close to 40 GiB, about 40 KiB per range.
	rangeSizeKb = 40
)

type Downloader struct {
	parallelism int
	stat        *status
	wm          sync.Mutex
	fileName    string
	writer      *bufio.Writer
	http        *retryablehttp.Client
	rangeURL    string
	writeErr    error
}

type Option func(*Downloader)

// WithRangeURL replaces the range API base URL. The prefix is appended to it.
func WithRangeURL(url string) Option {
	return func(d *Downloader) {
		d.rangeURL = url
	}
}

// WithRetries sets the retries on protocol errors. Defaults to 10.
func WithRetries(retries int) Option {
	return func(d *Downloader) {
		d.http.RetryMax = retries
	}
}

// NewDownloader writes every downloaded hash to out as HASH:COUNT lines.
// parallelism < 1 uses eight workers per logical processor.
func NewDownloader(out *os.File, parallelism int, opts ...Option) *Downloader {
	d := &Downloader{
		parallelism: parallelism,
		writer:      bufio.NewWriter(out),
		http:        initHttpClient(httpproxy.FromEnvironment()),
		fileName:    out.Name(),
		rangeURL:    DefaultRangeURL,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func initHttpClient(proxy *httpproxy.Config) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	// Too much garbage in the logs, it slowed the download too much.
	client.Logger = nil

	// Retry Max 10 times on protocol errors. Any other are just reported and not retried.
	client.RetryMax = 10

	client.HTTPClient = &http.Client{
		Transport: &http.Transport{
			Proxy:              rangeProxy(proxy),
			DisableCompression: false,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS13,
			},
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       10 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			// HTTP/2 only establishes one connection, and it introduced read errors
			// when getting the responses. HTTP/1.1 it is.
			ForceAttemptHTTP2:   false,
			MaxIdleConnsPerHost: runtime.GOMAXPROCS(0) + 1,
		},
	}

	return client
}

// rangeProxy resolves the proxy of a range request from the HTTP_PROXY,
// HTTPS_PROXY and NO_PROXY settings read when the client was built.
func rangeProxy(cfg *httpproxy.Config) func(*http.Request) (*url.URL, error) {
	proxyFunc := cfg.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return proxyFunc(req.URL)
	}
}

// ProcessRanges downloads the first ranges prefixes (RangeCount for the whole
// corpus) with a bounded worker pool. Ranges that fail are logged and
// reported in the returned error, the rest of the download continues.
func (d *Downloader) ProcessRanges(ctx context.Context, ranges int, skipWait bool) error {
	if ranges < 1 || ranges > RangeCount {
		return fmt.Errorf("ranges must be between 1 and %d", RangeCount)
	}

	sizeMb := (uint64(ranges)*rangeSizeKb + 1023) / 1024
	if err := util.CheckDiskSpace(d.fileName, sizeMb); err != nil {
		return err
	}

	s := util.Stats()
	defer s()

	var threads int
	if d.parallelism > 0 {
		threads = d.parallelism
	} else {
		// About 8 times nets a sustained download of about 150 Mbit/s (96 threads)
		threads = runtime.NumCPU() * 8
	}

	downloadTasks, err := executor.New(executor.Config{
		ReqPerSeconds: 0,
		QueueSize:     2 * threads,
		NumWorkers:    threads,
	})
	if err != nil {
		return err
	}
	defer downloadTasks.Close()

	log.Info().Msgf("download Pwned Passwords SHA1 Hashes in file %s with %d threads, ^C to stop the process", d.fileName, threads)
	if !skipWait {
		time.Sleep(10 * time.Second)
	}
	log.Info().Msg("starting process. This might take a while, be patient :)")
	d.stat = newStatus(ranges)

	for i := 0; i < ranges; i++ {
		if ctx.Err() != nil {
			break
		}

		prefix := getHashRange(i)
		if err = downloadTasks.Publish(d.processRange, ctx, prefix); err != nil {
			return fmt.Errorf("queueing range %s: %w", prefix, err)
		}
	}

	downloadTasks.Wait()
	d.stat.Done()

	if f, err := os.Stat(d.fileName); err == nil {
		log.Debug().Msgf("file %s is %.2fGiB", d.fileName, float64(f.Size())/(1024*1024*1024))
	}

	if d.writeErr != nil {
		return fmt.Errorf("writing hashes: %w", d.writeErr)
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if failed := d.stat.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d ranges failed to download", failed, ranges)
	}

	return nil
}

func getHashRange(i int) string {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(i))
	// First 5 characters, k-anonymity needs the hash like this
	return strings.ToUpper(hex.EncodeToString(buf)[3:])
}

func (d *Downloader) rangeHttpRequest(ctx context.Context, prefix string) (*retryablehttp.Request, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, d.rangeURL+prefix, nil)
	if err != nil {
		return nil, err
	}
	// This user agent string is identifying enough
	req.Header.Set("User-Agent", "pwd-advisor-hibp-downloader/1.0")
	return req, nil
}

func (d *Downloader) processRange(ctx context.Context, prefix string) {
	data, err := d.downloadRange(ctx, prefix)
	if err != nil {
		d.stat.RangeFailed()
		log.Error().Err(err).Msgf("error downloading range %s", prefix)
		return
	}

	hashes, err := d.writeRangeToFile(prefix, data)
	if err != nil {
		log.Error().Err(err).Msgf("error during file write for range %s", prefix)
		return
	}

	d.stat.RangeDone(hashes)
}

func (d *Downloader) downloadRange(ctx context.Context, prefix string) ([]byte, error) {
	timer := time.Now()
	req, err := d.rangeHttpRequest(ctx, prefix)
	if err != nil {
		return nil, err
	}

	res, err := d.http.Do(req)
	if err != nil {
		return nil, err
	}

	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Warn().Err(err).Msgf("error closing body for range %s", prefix)
		}
	}(res.Body)

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("request for range [%s] failed with status %s", prefix, res.Status)
	}

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	d.stat.RequestComplete(res, time.Since(timer))
	return resBody, nil
}

// writeRangeToFile writes the suffixes of a range prefixed with it, one
// HASH:COUNT per line, and returns how many were written.
func (d *Downloader) writeRangeToFile(prefix string, r []byte) (uint64, error) {
	// Synchronize file writes, we don't want intersected or incomplete lines written to the file.
	d.wm.Lock()
	defer d.wm.Unlock()

	if d.writeErr != nil {
		return 0, d.writeErr
	}

	var hashes uint64
	scanner := bufio.NewScanner(bytes.NewReader(r))
	for scanner.Scan() {
		suffix := strings.TrimSpace(scanner.Text())
		if suffix == "" {
			continue
		}

		if _, err := d.writer.WriteString(prefix + suffix + "\n"); err != nil {
			d.writeErr = err
			return hashes, err
		}
		hashes++
	}

	if err := d.writer.Flush(); err != nil {
		d.writeErr = err
		return hashes, err
	}

	return hashes, scanner.Err()
}
