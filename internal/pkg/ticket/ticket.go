// Package ticket generates booking ticket identifiers and the transaction
// identifiers derived from them.
package ticket

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strings"
	"sync"
)

const (
	Prefix            = "TICKET-"
	TransactionPrefix = "TXN-"
	SuffixLen         = 9
	txnSuffixLen      = 6
)

var (
	// 36^9 distinct suffixes.
	suffixSpace = new(big.Int).Exp(big.NewInt(36), big.NewInt(SuffixLen), nil)
	format      = regexp.MustCompile(`^TICKET-[0-9A-Z]{9}$`)
)

// Generator produces candidate ticket identifiers. Uniqueness is not its
// concern: the booking store rejects duplicates atomically and the caller
// retries with a fresh candidate.
type Generator struct {
	mu  sync.Mutex
	src io.Reader
}

// NewGenerator reads randomness from crypto/rand.
func NewGenerator() *Generator {
	return &Generator{src: rand.Reader}
}

// NewGeneratorFromSource reads randomness from src. src need not be safe
// for concurrent use.
func NewGeneratorFromSource(src io.Reader) *Generator {
	return &Generator{src: src}
}

// Next returns a candidate of the form TICKET-XXXXXXXXX (base-36, uppercase).
func (g *Generator) Next() (string, error) {
	g.mu.Lock()
	n, err := rand.Int(g.src, suffixSpace)
	g.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("read ticket randomness: %w", err)
	}
	suffix := strings.ToUpper(n.Text(36))
	if pad := SuffixLen - len(suffix); pad > 0 {
		suffix = strings.Repeat("0", pad) + suffix
	}
	return Prefix + suffix, nil
}

// TransactionID derives the transaction identifier from a ticket
// identifier: TXN- followed by its last six characters. It is guessable
// from the ticket identifier and is not a payment reference.
func TransactionID(ticketID string) string {
	if len(ticketID) <= txnSuffixLen {
		return TransactionPrefix + ticketID
	}
	return TransactionPrefix + ticketID[len(ticketID)-txnSuffixLen:]
}

// Valid reports whether s has the ticket identifier format.
func Valid(s string) bool {
	return format.MatchString(s)
}
