package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeAddressRejectsWrongLength(t *testing.T) {
	_, err := decodeAddress("aabb")
	require.Error(t, err)
}

func TestDecodeAddressRoundTrip(t *testing.T) {
	hex64 := ""
	for i := 0; i < 32; i++ {
		hex64 += "ab"
	}
	addr, err := decodeAddress(hex64)
	require.NoError(t, err)
	require.Equal(t, byte(0xab), addr[0])
	require.Equal(t, byte(0xab), addr[31])
}

func TestDecodeHashEmptyStringIsZero(t *testing.T) {
	h, err := decodeHash("")
	require.NoError(t, err)
	require.True(t, h == [32]byte{})
}

func TestDecodeUint128EmptyStringIsZero(t *testing.T) {
	u, err := decodeUint128("")
	require.NoError(t, err)
	require.True(t, u == [16]byte{})
}
