// Package encryption seals secrets stored at rest, such as the provider
// API keys inside a persisted conversation document.
//
//	enc, err := encryption.New(os.Getenv("CHATGATE_ENCRYPTION_KEY"))
//	sealed, err := encryption.SealMap(enc, cfg.APIKeys)
package encryption
