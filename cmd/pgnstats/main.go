// Command pgnstats ingests PGN archives into an ordered key-value store
// and serves per-position win/loss/draw statistics over HTTP.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/chessql/pgnstats/internal/ingest"
	"github.com/chessql/pgnstats/internal/pgnstream"
	"github.com/chessql/pgnstats/internal/queryserver"
	"github.com/chessql/pgnstats/internal/store"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s ingest <config.json> | serve <config.json>\n", os.Args[0])
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	command, configPath := flag.Arg(0), flag.Arg(1)
	switch command {
	case "ingest":
		runIngest(configPath)
	case "serve":
		runServe(configPath)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

// ingestConfig mirrors the ingest config.json shape: db_path plus either
// pgn_dir (walked non-recursively for .pgn/.pgn.gz/.pgn.zst files) or an
// explicit pgn_files list.
type ingestConfig struct {
	DBPath       string   `json:"db_path"`
	PGNDir       string   `json:"pgn_dir"`
	PGNFiles     []string `json:"pgn_files"`
	MinPlyCount  int      `json:"min_ply_count"`
	MinRating    int      `json:"min_rating"`
	TimeControls []string `json:"time_controls"`
	CacheSize    int      `json:"cache_size"`
}

func runIngest(configPath string) {
	var cfg ingestConfig
	if err := loadConfig(configPath, &cfg); err != nil {
		log.Fatal(err)
	}

	files := cfg.PGNFiles
	if cfg.PGNDir != "" {
		walked, err := walkPGNDir(cfg.PGNDir)
		if err != nil {
			log.Fatal(err)
		}
		files = append(files, walked...)
	}
	if len(files) == 0 {
		log.Fatal("pgnstats ingest: no pgn_dir or pgn_files configured")
	}

	err := ingest.Run(ingest.Config{
		DBPath: cfg.DBPath,
		Files:  files,
		Filter: pgnstream.Filter{
			MinRating:    cfg.MinRating,
			MinPlyCount:  cfg.MinPlyCount,
			TimeControls: cfg.TimeControls,
		},
		CacheSize: cfg.CacheSize,
	})
	if err != nil {
		log.Fatal(err)
	}
}

type serverConfig struct {
	DBPath string `json:"db_path"`
	Addr   string `json:"addr"`
}

func runServe(configPath string) {
	var cfg serverConfig
	if err := loadConfig(configPath, &cfg); err != nil {
		log.Fatal(err)
	}
	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}

	st, err := store.Open(cfg.DBPath, store.Options{})
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	log.Printf("pgnstats serve: listening on %s against %s", addr, cfg.DBPath)
	log.Fatal(http.ListenAndServe(addr, queryserver.New(st)))
}

func loadConfig(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("pgnstats: read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("pgnstats: parse config %s: %w", path, err)
	}
	return nil
}

func walkPGNDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("pgnstats: read pgn_dir %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case hasSuffixAny(name, ".pgn", ".pgn.gz", ".pgn.zst"):
			files = append(files, filepath.Join(dir, name))
		}
	}
	return files, nil
}

func hasSuffixAny(name string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if len(name) >= len(suffix) && name[len(name)-len(suffix):] == suffix {
			return true
		}
	}
	return false
}
