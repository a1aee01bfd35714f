package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-colorable"
	"github.com/schollz/progressbar/v3"
	"github.com/utxoscope/utxo_grapher/api"
	"github.com/utxoscope/utxo_grapher/common"
	"github.com/utxoscope/utxo_grapher/config"
	"github.com/utxoscope/utxo_grapher/storage"
)

func main() {
	fmt.Println("Starting UTXO graph service...")
	defer func() {
		if r := recover(); r != nil {
			log.Printf("==============>global panic: %v", r)
		}
	}()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	utxoStore, metaStore, err := initDb(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer closeDb(utxoStore, metaStore)

	if cfg.RestoreSnapshot != "" {
		if err := restoreSnapshot(cfg, utxoStore, metaStore); err != nil {
			log.Fatalf("Failed to restore snapshot: %v", err)
		}
	}

	count, err := utxoStore.Count()
	if err != nil {
		log.Printf("Failed to count stored UTXOs: %v", err)
	} else {
		log.Printf("UTXO store ready, %d records", count)
	}

	// Create stop signal channel
	stopCh := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Received stop signal, preparing to shutdown...")
		close(stopCh)
	}()

	server, err := api.NewServer(utxoStore, metaStore, cfg, stopCh)
	if err != nil {
		log.Fatalf("Failed to create API server: %v", err)
	}
	log.Printf("Starting graph API, port: %s", cfg.APIPort)
	go server.Start(fmt.Sprintf(":%s", cfg.APIPort))

	<-stopCh
	log.Println("Program is shutting down...")
}

func initDb(cfg *config.Config) (*storage.UTXOStore, *storage.MetaStore, error) {
	utxoStore, err := storage.NewUTXOStore(cfg.DataDir, cfg.ShardCount)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open utxo store: %w", err)
	}
	metaStore, err := storage.NewMetaStore(cfg.DataDir)
	if err != nil {
		utxoStore.Close()
		return nil, nil, fmt.Errorf("failed to open meta store: %w", err)
	}
	return utxoStore, metaStore, nil
}

func closeDb(utxoStore *storage.UTXOStore, metaStore *storage.MetaStore) {
	if err := utxoStore.Close(); err != nil {
		log.Printf("Failed to close utxo store: %v", err)
	}
	if err := metaStore.Close(); err != nil {
		log.Printf("Failed to close meta store: %v", err)
	}
}

// restoreSnapshot bulk-loads a previously exported UTXO set, showing
// progress for large restores.
func restoreSnapshot(cfg *config.Config, utxoStore *storage.UTXOStore, metaStore *storage.MetaStore) error {
	log.Printf("Restoring snapshot from %s", cfg.RestoreSnapshot)
	utxos, err := storage.LoadSnapshot(cfg.RestoreSnapshot)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(utxos),
		progressbar.OptionSetWriter(colorable.NewColorableStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription("Restoring UTXO snapshot..."),
		progressbar.OptionShowCount(),
	)

	const chunkSize = 1000
	for start := 0; start < len(utxos); start += chunkSize {
		end := start + chunkSize
		if end > len(utxos) {
			end = len(utxos)
		}
		batch := make([]*common.UTXO, 0, end-start)
		for _, u := range utxos[start:end] {
			n := common.Normalize(*u)
			batch = append(batch, &n)
		}
		if err := utxoStore.PutBatch(batch); err != nil {
			return err
		}
		bar.Add(end - start)
	}
	fmt.Println()

	if _, err := metaStore.BumpDatasetVersion(); err != nil {
		return err
	}
	log.Printf("Snapshot restore complete, %d UTXOs loaded", len(utxos))
	return nil
}
