// Package token issues and consumes time-limited signed tokens for the
// recovery flows. A token is a base64url JSON payload and an HMAC-SHA-256
// signature keyed by the server secret plus a per-issuance random salt:
// without the stored salt the signature cannot be reproduced, so a token
// is only ever valid against the account record it was issued for.
package token
