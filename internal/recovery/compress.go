package recovery

import (
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/fresh-editor/fresh/internal/errors"
)

// Recovery blobs are write-rarely/read-rarely compared to the pack files
// restic streams, so a single shared encoder/decoder pair (guarded by a
// mutex, same as restic's repository-wide zstd instances) is simpler than
// pooling one per write.
var (
	encOnce sync.Once
	encoder *zstd.Encoder
	encErr  error

	decOnce sync.Once
	decoder *zstd.Decoder
	decErr  error

	compressMu sync.Mutex
)

func getEncoder() (*zstd.Encoder, error) {
	encOnce.Do(func() {
		encoder, encErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	return encoder, encErr
}

func getDecoder() (*zstd.Decoder, error) {
	decOnce.Do(func() {
		decoder, decErr = zstd.NewReader(nil)
	})
	return decoder, decErr
}

// compress zstd-encodes data for storage as a recovery blob.
func compress(data []byte) ([]byte, error) {
	enc, err := getEncoder()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	compressMu.Lock()
	defer compressMu.Unlock()
	return enc.EncodeAll(data, nil), nil
}

// decompress reverses compress.
func decompress(data []byte) ([]byte, error) {
	dec, err := getDecoder()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	compressMu.Lock()
	defer compressMu.Unlock()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}
