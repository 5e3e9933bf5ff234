package persistence

import (
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/juju/errors"

	"ecometrics/internal/models"
	"ecometrics/internal/providers"
)

// FileManager writes ledger snapshots as zstd compressed JSON.
type FileManager struct {
	compressor SnapshotCodec
	logger     providers.Logger
}

func NewFileManager(compressor SnapshotCodec, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		logger:     logger,
	}
}

// SaveToFile replaces fileName atomically: the snapshot goes to a
// temporary file which is synced and then renamed over the target.
func (f *FileManager) SaveToFile(fileName string, snapshot *models.Snapshot) error {
	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Annotate(err, "encoding snapshot")
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return errors.Annotate(err, "compressing snapshot")
	}

	if err := os.MkdirAll(filepath.Dir(fileName), 0755); err != nil {
		return errors.Trace(err)
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return errors.Trace(err)
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return errors.Trace(err)
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return errors.Trace(err)
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return errors.Trace(err)
	}

	return errors.Trace(os.Rename(tmpFile, fileName))
}

// LoadFromFile reads a snapshot. A missing file is not an error and
// yields a nil snapshot.
func (f *FileManager) LoadFromFile(fileName string) (*models.Snapshot, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Trace(err)
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		return nil, errors.Annotatef(err, "decompressing %s", fileName)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(decompressed, &snapshot); err != nil {
		return nil, errors.Annotatef(err, "decoding %s", fileName)
	}
	if snapshot.Version == 0 {
		f.logger.Warnf(providers.TypeApp, "Snapshot %s has no version, assuming %d", fileName, models.SnapshotVersion)
		snapshot.Version = models.SnapshotVersion
	}
	return &snapshot, nil
}

func (f *FileManager) Close() {
	f.compressor.Close()
}
