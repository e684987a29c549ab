// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package util

import (
	"fmt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"net/http"
	"runtime"
	"strings"
	"time"
	"unicode"
)

// Stats returns a function that logs the elapsed time and memory usage at debug level.
func Stats() func() {
	start := time.Now()
	return func() {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		log.Debug().Msgf("time to run %v", time.Since(start))
		log.Debug().Msgf("Alloc: %d MB, TotalAlloc: %d MB, Sys: %d MB",
			ms.Alloc/1024/1024, ms.TotalAlloc/1024/1024, ms.Sys/1024/1024)
		log.Debug().Msgf("Mallocs: %d, Frees: %d, GC: %d", ms.Mallocs, ms.Frees, ms.NumGC)
		log.Debug().Msgf("HeapAlloc: %d MB, HeapSys: %d MB, HeapIdle: %d MB",
			ms.HeapAlloc/1024/1024, ms.HeapSys/1024/1024, ms.HeapIdle/1024/1024)
	}
}

func ApplyCliSettings(verbose bool, profile bool, pprofPort uint16) {
	if verbose {
		log.Warn().Msgf("verbosity up")
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if profile {
		log.Info().Msgf("profiling is enabled for this session. Server will listen on port %d", pprofPort)
		go func() {
			if err := http.ListenAndServe(fmt.Sprintf("localhost:%d", pprofPort), nil); err != nil {
				log.Error().Err(err).Msgf("error starting profiling server on port %d", pprofPort)
				return
			}
		}()
	}
}

// CheckRam fails when the system cannot hold items 8 byte values in memory.
func CheckRam(items uint64, skipWait bool) error {
	required := items * 8
	if memStat, err := mem.VirtualMemory(); err == nil {
		log.Debug().Msgf("system has %.2f MiB of RAM available", float64(memStat.Available)/(1024*1024))
		if required > memStat.Available {
			return fmt.Errorf("the system does not have the %d MiB of RAM required to hold %d items", required/(1024*1024), items)
		}
	} else {
		log.Warn().Msgf("estimated memory use for %d items %d MiB", items, required/(1024*1024))
		log.Warn().Msgf("this process will cause disk swapping and general slowness if your "+
			"current system memory is not at least %d MiB", required/(1024*1024))
	}

	if !skipWait && items > 0 {
		log.Info().Msgf("^C now to stop the process.")
		time.Sleep(5 * time.Second)
	}

	return nil
}

// CheckDiskSpace fails when the partition holding fileName has less than sizeMb MiB free.
func CheckDiskSpace(fileName string, sizeMb uint64) error {
	parts, err := disk.Partitions(false)
	if err != nil {
		log.Debug().Err(err).Msgf("error getting current storage sizes")
		log.Warn().Msgf("IMPORTANT: please ensure you have at least %d MiB free for the download.", sizeMb)
		return nil
	}

	// The longest mount point containing the file is the partition it lives on.
	mountpoint := ""
	for _, part := range parts {
		if strings.HasPrefix(fileName, part.Mountpoint) && len(part.Mountpoint) > len(mountpoint) {
			mountpoint = part.Mountpoint
		}
	}
	if mountpoint == "" {
		return nil
	}

	usage, err := disk.Usage(mountpoint)
	if err != nil {
		log.Debug().Err(err).Msgf("error getting current storage sizes")
		return nil
	}

	log.Debug().Msgf("%s has %.2f GiB free", mountpoint, float64(usage.Free)/(1024*1024*1024))
	required := sizeMb * 1024 * 1024
	if required > usage.Free {
		return fmt.Errorf("drive %s does not have sufficient space free (%d MiB) for the download", mountpoint, sizeMb)
	}

	return nil
}

// ToScreamingSnakeCase turns a Go field name (or a space separated list of
// them) into the environment variable style, GcsFile -> GCS_FILE.
func ToScreamingSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == ' ':
			b.WriteString(", ")
			continue
		case unicode.IsUpper(r) && i > 0 && runes[i-1] != ' ':
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}

	return b.String()
}
