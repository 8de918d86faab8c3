// Package refid issues the short reference shown to a visitor after a successful
// submission. It correlates support requests with logs and is not a secret.
package refid

import (
	"encoding/hex"
	"strconv"
	"strings"

	ptime "contactgate/internal/platform/time"

	"github.com/google/uuid"
)

// DefaultPrefix tags contact references
const DefaultPrefix = "MSG"

// Issuer builds PREFIX-<base36 millis>-<8 hex>
type Issuer struct {
	prefix string
	clock  ptime.Clock
	random func() ([4]byte, error)
}

// New returns an Issuer; an empty prefix uses DefaultPrefix
func New(prefix string, clock ptime.Clock) *Issuer {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultPrefix
	}
	return &Issuer{prefix: prefix, clock: ptime.OrSystem(clock), random: uuidRandom}
}

// uuidRandom takes four bytes from a v4 UUID, which reads crypto/rand
func uuidRandom() ([4]byte, error) {
	var out [4]byte
	u, err := uuid.NewRandom()
	if err != nil {
		return out, err
	}
	copy(out[:], u[:4])
	return out, nil
}

// Issue returns a fresh reference id
func (i *Issuer) Issue() (string, error) {
	suffix, err := i.random()
	if err != nil {
		return "", err
	}
	ts := strconv.FormatInt(i.clock.Now().UnixMilli(), 36)
	return strings.ToUpper(i.prefix + "-" + ts + "-" + hex.EncodeToString(suffix[:])), nil
}
