// Package vault provides authenticated encryption of opaque blobs with
// AES-256-GCM, keeping ciphertext, IV and tag as separate components so
// they map directly onto the persisted account columns.
package vault
