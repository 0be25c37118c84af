package market

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// CodeIssuer mints the one-time codes that gate physical handoff and hashes
// them at rest. Hashing cost is injected at construction so there is no
// process-wide mutable hashing state.
type CodeIssuer struct {
	Cost int
}

func NewCodeIssuer(cost int) *CodeIssuer {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &CodeIssuer{Cost: cost}
}

// Generate draws a 6-digit code uniformly from [100000, 999999].
func (ci *CodeIssuer) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(100000+n.Int64(), 10), nil
}

func (ci *CodeIssuer) Hash(code string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(code), ci.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether the presented code matches the stored hash.
func (ci *CodeIssuer) Verify(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
