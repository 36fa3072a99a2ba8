package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"time"

	"learnhub/config"
	"learnhub/services"
	"learnhub/storage"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	pgDump := flag.Bool("pgdump", false, "zusätzlich einen pg_dump der Datenbank hochladen")
	flag.Parse()

	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()
	logging.Info("Starte Backup-Prozess...")

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Fehler beim Laden der Konfiguration", zap.Error(err))
	}
	if !cfg.S3Enabled() {
		logging.Fatal("S3 ist nicht konfiguriert, Backup nicht möglich")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}

	bucket, err := storage.NewBucket(ctx, cfg, logging)
	if err != nil {
		logging.Fatal("Fehler beim Erstellen des S3-Clients", zap.Error(err))
	}
	exports := services.NewExportService(cfg, db, bucket, logging)

	// 1. JSON-Snapshot aller Projekte hochladen und rotieren
	result, err := exports.BackupAll(ctx)
	if err != nil {
		logging.Fatal("Fehler beim Snapshot-Backup", zap.Error(err))
	}
	logging.Info("Snapshot hochgeladen", zap.String("key", result.Key), zap.Int("bytes", result.Size))

	// 2. Optional den vollständigen Datenbank-Dump
	if *pgDump {
		dumpData, err := createDump(ctx, cfg)
		if err != nil {
			logging.Fatal("Fehler beim Erstellen des DB-Dumps", zap.Error(err))
		}
		name := fmt.Sprintf("backup-%s.sql.gz", time.Now().UTC().Format("2006-01-02T15-04-05Z"))
		result, err := exports.UploadRaw(ctx, name, dumpData)
		if err != nil {
			logging.Fatal("Fehler beim Hochladen des Dumps", zap.Error(err))
		}
		logging.Info("Dump hochgeladen", zap.String("key", result.Key), zap.Int("bytes", result.Size))
	}

	logging.Info("Backup-Prozess erfolgreich abgeschlossen.")
}

func createDump(ctx context.Context, cfg *config.Config) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "pg_dump",
		"-h", cfg.DBHost,
		"-p", fmt.Sprint(cfg.DBPort),
		"-U", cfg.DBUser,
		"-d", cfg.DBName,
		"-w", // Passwort wird über PGPASSWORD bereitgestellt
	)
	cmd.Env = append(os.Environ(), fmt.Sprintf("PGPASSWORD=%s", cfg.DBPassword))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if _, err := io.Copy(gzipWriter, stdout); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}
	if err := cmd.Wait(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
