// Package numbering issues human-readable document numbers for sales and
// invoices. Numbers are prefix plus a millisecond timestamp plus a short
// random suffix, which keeps them sortable and unique without a DB sequence.
package numbering

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generator produces the next document number for a prefix.
type Generator interface {
	Next(prefix string) string
}

type timestampGenerator struct {
	now func() time.Time
}

// NewGenerator returns the default timestamp-based generator.
func NewGenerator() Generator {
	return &timestampGenerator{now: time.Now}
}

func (g *timestampGenerator) Next(prefix string) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%s-%d-%s", strings.ToUpper(prefix), g.now().UnixMilli(), suffix)
}
