package auth

import "sync"

// APIKeyAuth provides a simple API key authentication. With no keys
// configured every request is let through.
type APIKeyAuth struct {
	mu        sync.RWMutex
	validKeys map[string]struct{}
}

// NewAPIKeyAuth creates a new API key authentication middleware
func NewAPIKeyAuth(keys []string) *APIKeyAuth {
	validKeys := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if key != "" {
			validKeys[key] = struct{}{}
		}
	}

	return &APIKeyAuth{
		validKeys: validKeys,
	}
}

// AddKey adds a new valid API key
func (a *APIKeyAuth) AddKey(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.validKeys[key] = struct{}{}
}

// RemoveKey removes a valid API key
func (a *APIKeyAuth) RemoveKey(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.validKeys, key)
}

// Enabled reports whether any key is configured
func (a *APIKeyAuth) Enabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return len(a.validKeys) > 0
}

// IsValidKey checks if a key is valid
func (a *APIKeyAuth) IsValidKey(key string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.validKeys) == 0 {
		return true
	}

	_, valid := a.validKeys[key]
	return valid
}
