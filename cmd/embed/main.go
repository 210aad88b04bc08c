package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/drakos74/digits-embed/infra/config"
	"github.com/drakos74/digits-embed/internal/storage"
	"github.com/drakos74/digits-embed/internal/storage/file/json"
	"github.com/drakos74/digits-embed/internal/sweep"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func main() {
	key := flag.String("config", "sweep", "config file name in the config dir")
	dir := flag.String("config-dir", config.Path, "config dir")
	ds := flag.String("dataset", "", "dataset to embed, digits or random")
	data := flag.String("data", "", "path of the optdigits csv file")
	out := flag.String("out", "", "output dir for the plots and the report")
	imgs := flag.String("imgs", "", "dir for the sample images")
	cache := flag.Bool("cache", true, "reuse embeddings of previous runs")
	level := flag.String("log", "info", "log level")
	flag.Parse()

	lvl, err := zerolog.ParseLevel(*level)
	if err != nil {
		log.Fatal().Err(err).Str("level", *level).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(lvl)

	config.Path = *dir
	var cfg sweep.Config
	config.MustLoad(*key, &cfg)
	if *ds != "" {
		cfg.Dataset = *ds
	}
	if *data != "" {
		cfg.Data = *data
	}
	if *out != "" {
		cfg.Output = *out
	}
	if *imgs != "" {
		cfg.Images.Dir = *imgs
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Str("config", *key).Msg("invalid config")
	}

	dataset, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Str("dataset", cfg.Dataset).Msg("could not load dataset")
	}

	ctx, cnl := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cnl()

	shard := json.BlobShard(cfg.StorageDir(), storage.EmbeddingsDir)
	if !*cache {
		shard = storage.NoCacheShard()
	}
	store, err := shard(dataset.Name)
	if err != nil {
		log.Fatal().Err(err).Str("dataset", dataset.Name).Msg("could not create embedding storage")
	}
	history := json.NewEventRegistry(filepath.Join(cfg.StorageDir(), storage.RunsDir))
	report, err := sweep.New(cfg, store).WithHistory(history).Run(ctx, dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("sweep failed")
	}

	for _, p := range report.Plots {
		e := log.Info().
			Str("plot", p.Title).
			Bool("cached", p.Cached).
			Float64("duration", p.Duration)
		if p.Score != nil {
			e = e.Float64("knn", p.Score.KNNAccuracy).Float64("purity", p.Score.Purity)
		}
		e.Msg("plot")
	}
	log.Info().
		Str("id", report.ID).
		Str("grid", filepath.Join(cfg.Output, "grid.html")).
		Msg("done")
}
