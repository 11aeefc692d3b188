package checksum

import "hash/crc32"

// CRC32 is the zlib/IEEE CRC32 of the whole range, carried across frames.
type CRC32 struct{}

func (CRC32) Kind() Kind { return KindCRC32 }

func (CRC32) Update(frame []byte, acc Accumulator) Accumulator {
	acc.Value = crc32.Update(acc.Value, crc32.IEEETable, frame)
	return acc
}
