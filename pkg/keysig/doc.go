// Package keysig generates per-account RSA-2048 keypairs and signs and
// verifies note content with RSA-PSS (SHA-256, MGF1-SHA-256, maximal salt
// length). Keys travel as PEM: PKCS#8 for private keys, SPKI for public.
package keysig
