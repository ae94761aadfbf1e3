package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/bfarley42/wxlens/internal/api"
	"github.com/bfarley42/wxlens/internal/store"
	"github.com/bfarley42/wxlens/internal/upstream"
)

var cli struct {
	Addr        string `help:"HTTP listen address." default:":8080" env:"WXLENS_ADDR"`
	DB          string `help:"Path to SQLite database." default:"data/wxlens.db" env:"WXLENS_DB"`
	UpstreamURL string `help:"Base URL of the weather history API." default:"https://api.weather.example.com" env:"WXLENS_UPSTREAM_URL"`
	APIKey      string `help:"API key for the weather history API." env:"WXLENS_API_KEY" required:""`
	Timezone    string `help:"Display timezone for station-day boundaries." default:"America/New_York" env:"WXLENS_TZ"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("wxlens"),
		kong.Description("Historical weather lookup service."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	db, err := sql.Open("sqlite", cli.DB)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	loc, err := time.LoadLocation(cli.Timezone)
	if err != nil {
		log.Printf("Warning: could not load timezone %s, using UTC: %v", cli.Timezone, err)
		loc = time.UTC
	}

	st := store.New(db, loc)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("database migrated")

	source := upstream.NewClient(cli.UpstreamURL, cli.APIKey)
	normals := upstream.NewNormalsClient()
	server := api.NewServer(st, source, normals, cli.Addr, loc)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("starting server on %s", cli.Addr)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
