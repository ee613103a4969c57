package commands

import (
	"database/sql"
	"os"
	"strings"

	"investor-parser/lib/configutil"
	"investor-parser/lib/investorstore"
	"investor-parser/lib/investorstore/db"
	"investor-parser/lib/scrapers/signal"
	"investor-parser/lib/serviceutil"
	"investor-parser/lib/sqliteutil"
)

type Config struct {
	BaseUrl    string `json:"base_url"`
	UrlFile    string `json:"url_file"`
	HtmlDir    string `json:"html_dir"`
	OutputFile string `json:"output_file"`
	Database   string `json:"database"`
}

func defaultConfig() Config {
	return Config{
		BaseUrl:    signal.DefaultBaseUrl,
		UrlFile:    "investor_urls.txt",
		HtmlDir:    "data/html",
		OutputFile: "data/output/investor_data.json",
		Database:   "data/investors.db",
	}
}

func loadConfig() Config {
	cfg, err := configutil.ReadConfigDefault("config.json5", defaultConfig())
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func openStore(cfg Config) (investorstore.Store, *sql.DB) {
	database, err := sqliteutil.OpenDB(db.Schema, cfg.Database)
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}
	return investorstore.NewStore(database), database
}

type urlEntry struct {
	Name string
	Url  string
}

// readUrlFile parses the investor url list. Lines are either a bare
// url or "Name, url"; blank lines and #-comments are skipped.
func readUrlFile(path string) ([]urlEntry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []urlEntry
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, url, found := strings.Cut(line, ",")
		if !found {
			entries = append(entries, urlEntry{Url: line})
			continue
		}
		entries = append(entries, urlEntry{
			Name: strings.TrimSpace(name),
			Url:  strings.TrimSpace(url),
		})
	}
	return entries, nil
}
