package main

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"shelter_board/internal/adapters/observability"
	redisad "shelter_board/internal/adapters/redis"
	"shelter_board/internal/adapters/shelterapi"
	"shelter_board/internal/app"
	"shelter_board/internal/shared"
	mysqlrepo "shelter_board/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.ShelterBase).
		Int("workers", cfg.Workers).
		Int("window_days", cfg.WindowDays).
		Msg("sync starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := shelterapi.New(cfg.ShelterBase, cfg.ShelterKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize shelter client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	svc := app.NewSyncService(client, repo, cache)

	kennels, err := client.ListKennels(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list kennels failed")
	}
	log.Info().Int("kennels", len(kennels)).Msg("kennel listing ok")

	// Sync a month back so recent checkouts stay visible, WindowDays ahead
	// for future reservations.
	today := time.Now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -30)
	to := today.AddDate(0, 0, cfg.WindowDays)

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, k := range kennels {
		id, _ := k["kennel_id"].(string)
		if id == "" {
			id, _ = k["id"].(string)
		}
		if id == "" {
			log.Warn().Msg("skipping kennel without id in listing")
			continue
		}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(kennelID string) {
			defer wg.Done()
			defer sem.Release(1)

			if err := svc.SyncKennel(ctx, kennelID, from, to); err != nil {
				log.Warn().Str("kennel", kennelID).Err(err).Msg("sync failed")
				return
			}
			log.Info().Str("kennel", kennelID).Msg("sync ok")
		}(id)
	}

	wg.Wait()
	log.Info().Msg("sync completed")
}
