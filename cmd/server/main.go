package main

import (
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/drakos74/digits-embed/internal/imgs"
	"github.com/drakos74/digits-embed/internal/metrics"
	"github.com/drakos74/digits-embed/internal/server"
	"github.com/drakos74/digits-embed/internal/storage"
	"github.com/drakos74/digits-embed/internal/storage/file/json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func main() {
	port := flag.Int("port", 6080, "port to listen on")
	dir := flag.String("dir", "out/digits", "output dir of a sweep")
	images := flag.String("imgs", imgs.DefaultDir, "dir of the sample images")
	store := flag.String("storage", storage.DefaultDir, "root dir of the file storage")
	debug := flag.Bool("debug", false, "log every request")
	flag.Parse()

	srv := server.NewServer("digits-embed", *port).
		Add(server.Live(), server.Report(*dir),
			server.Runs(json.NewEventRegistry(filepath.Join(*store, storage.RunsDir))),
			server.Colors(*debug)).
		Mount("/metrics", metrics.Handler())

	// the pages reference the images relative to the output dir,
	// which a browser resolves to their absolute path on this server
	if abs, err := filepath.Abs(*images); err == nil {
		prefix := filepath.ToSlash(abs) + "/"
		srv.Static(prefix, abs)
	} else {
		log.Warn().Err(err).Str("dir", *images).Msg("not serving images")
	}
	srv.Static("/", *dir)
	if *debug {
		srv.Debug()
	}

	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
