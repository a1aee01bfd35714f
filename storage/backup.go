package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
	"github.com/utxoscope/utxo_grapher/common"
)

const snapshotExt = ".dat.zst"

// snapshotFile is the on-disk layout of an exported UTXO set.
type snapshotFile struct {
	ExportedAt int64          `json:"exported_at"`
	Count      int            `json:"count"`
	UTXOs      []*common.UTXO `json:"utxos"`
}

// ExportSnapshot writes the full UTXO set to a zstd-compressed file under
// backupDir and returns the file path.
func (s *UTXOStore) ExportSnapshot(backupDir string) (string, error) {
	utxos, err := s.All()
	if err != nil {
		return "", fmt.Errorf("failed to collect utxos for snapshot: %w", err)
	}
	snap := snapshotFile{
		ExportedAt: time.Now().Unix(),
		Count:      len(utxos),
		UTXOs:      utxos,
	}
	data, err := sonic.Marshal(&snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	encoder, _ := zstd.NewWriter(nil)
	compressed := encoder.EncodeAll(data, make([]byte, 0, len(data)))
	encoder.Close()

	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory %s: %w", backupDir, err)
	}
	name := fmt.Sprintf("utxos_%s%s", time.Now().Format("20060102_150405"), snapshotExt)
	filePath := filepath.Join(backupDir, name)
	if err := os.WriteFile(filePath, compressed, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot %s: %w", filePath, err)
	}
	return filePath, nil
}

// LoadSnapshot reads, decompresses and decodes a snapshot file.
func LoadSnapshot(filePath string) ([]*common.UTXO, error) {
	compressed, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", filePath, err)
	}

	decoder, _ := zstd.NewReader(nil)
	data, err := decoder.DecodeAll(compressed, nil)
	decoder.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot %s: %w", filePath, err)
	}

	var snap snapshotFile
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", filePath, err)
	}
	return snap.UTXOs, nil
}
