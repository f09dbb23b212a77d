package util

import (
	"github.com/vmihailenco/msgpack"

	"bptreeidx/internal/diskio"
)

// ToByteSlice serializes obj into a page-sized buffer via msgpack. The
// result is always exactly diskio.PageSize bytes so it can be copied
// directly into a pinned frame.
func ToByteSlice[T any](obj T) ([]byte, error) {
	res := make([]byte, diskio.PageSize)

	data, err := msgpack.Marshal(obj)
	if err != nil {
		return nil, err
	}
	copy(res, data)

	return res, nil
}

// ToStruct deserializes a page buffer produced by ToByteSlice back into T.
func ToStruct[T any](data []byte) (T, error) {
	var res T

	if err := msgpack.Unmarshal(data, &res); err != nil {
		return res, err
	}

	return res, nil
}
