package kv

import (
	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
)

func encodeTimestamps(timestamps []int64) ([]byte, error) {
	encoded, err := binary.Marshal(timestamps)
	if err != nil {
		return nil, err
	}
	return zstd.Compress(nil, encoded)
}

func decodeTimestamps(bb []byte) ([]int64, error) {
	decompressed, err := zstd.Decompress(nil, bb)
	if err != nil {
		return nil, err
	}
	var timestamps []int64
	err = binary.Unmarshal(decompressed, &timestamps)
	return timestamps, err
}
