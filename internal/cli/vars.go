// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

var (
	// create, hash, load
	inputFile string
	// root
	verbose bool
	// root
	profile bool
	// root
	pprofPort uint16
	// create
	gcsOutFile string
	// download
	downloadOutFile string
	// hash
	hashOutFile string
	// create
	probability uint64
	// create
	indexGranularity uint64
	// evaluate
	interactive bool
	// evaluate
	format string
	// evaluate
	offline bool
	// download
	downloadThreads int
	// load
	loadThreads int
	// download
	ranges int
	// create, download, hash
	overwrite bool
	// load
	chunkSize int
	// create, download
	skipWait bool
)
