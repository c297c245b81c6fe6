package primitives

import "lukechampine.com/blake3"

// HashSize is the length, in bytes, of a BLAKE3 content hash.
const HashSize = 32

// Blake3 returns the 32-byte BLAKE3 digest of data, used to derive the
// content-addressed object path for an encrypted blob (§4.4: "Object
// hash = BLAKE3(ciphertext)").
func Blake3(data []byte) [HashSize]byte {
	return blake3.Sum256(data)
}
