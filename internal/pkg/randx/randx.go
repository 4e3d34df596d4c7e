/*
Package randx provides functions for generating cryptographically secure random identifiers.

It generates the Base62 browser profile ids that name preference store
namespaces, and UUIDs for tabs, messages and notifications.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// ProfileIDPrefix is the required prefix of every browser profile id.
	ProfileIDPrefix = "prf_"

	// ProfileIDRawLength is the fixed length of the Base62 part of a profile id.
	ProfileIDRawLength = 12
)

// base62 returns n random Base62 characters drawn from crypto/rand.
func base62(n int) (string, error) {
	result := make([]byte, n)

	for i := range n {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// ProfileID generates a new browser profile id such as "prf_3fZk0QmL9aBc".
func ProfileID() (string, error) {
	raw, err := base62(ProfileIDRawLength)
	if err != nil {
		return "", fmt.Errorf("profile id: %w", err)
	}
	return ProfileIDPrefix + raw, nil
}

// IsValidProfileID checks prefix, length and alphabet of a profile id.
func IsValidProfileID(id string) bool {
	if !strings.HasPrefix(id, ProfileIDPrefix) {
		return false
	}

	rawID := id[len(ProfileIDPrefix):]

	if len(rawID) != ProfileIDRawLength {
		return false
	}

	for _, char := range rawID {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}

// MessageID generates a standard UUID v4 string for WebSocket messages and notifications.
func MessageID() string {
	return uuid.New().String()
}

// TabID generates an id for a tab that did not supply one.
func TabID() string {
	return "tab_" + uuid.New().String()
}

// IsValidTabID accepts client-chosen tab ids of 1-64 printable ASCII characters
// without spaces.
func IsValidTabID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
