package persistence

import (
	"github.com/juju/errors"
	"github.com/klauspost/compress/zstd"
)

// SnapshotCodec shrinks encoded ledger snapshots before they hit disk.
type SnapshotCodec interface {
	Compress(snapshot []byte) ([]byte, error)
	Decompress(frame []byte) ([]byte, error)
	Close()
}

// ZstdCodec keeps one encoder and one decoder for the lifetime of the
// process; both are safe for concurrent EncodeAll/DecodeAll calls.
type ZstdCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func (z *ZstdCodec) Compress(snapshot []byte) ([]byte, error) {
	return z.encoder.EncodeAll(snapshot, make([]byte, 0, len(snapshot)/2)), nil
}

func (z *ZstdCodec) Decompress(frame []byte) ([]byte, error) {
	raw, err := z.decoder.DecodeAll(frame, nil)
	if err != nil {
		return nil, errors.Annotate(err, "corrupt snapshot frame")
	}
	return raw, nil
}

func (z *ZstdCodec) Close() {
	_ = z.encoder.Close()
	z.decoder.Close()
}

func NewSnapshotCodec() (SnapshotCodec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, errors.Annotate(err, "snapshot encoder")
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, errors.Annotate(err, "snapshot decoder")
	}
	return &ZstdCodec{encoder: encoder, decoder: decoder}, nil
}
