package core

import "encoding/binary"

func putUint64LE(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
func getUint64LE(b []byte) uint64    { return binary.LittleEndian.Uint64(b) }

func putUint32LE(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func getUint32LE(b []byte) uint32    { return binary.LittleEndian.Uint32(b) }
