// Package sku implements the in-memory, read-only table mapping
// product codes and BINK identifiers to curve parameters and
// algorithm selection (spec §4.7 SkuRegistry).
package sku

import (
	"fmt"
	"math/big"

	"github.com/umskt/umskt-go/pkg/curve"
	"github.com/umskt/umskt-go/pkg/umskterr"
)

// Algorithm names the cryptographic scheme a BINK entry uses.
type Algorithm int

const (
	AlgorithmPIDGEN2 Algorithm = iota
	AlgorithmBINK1998
	AlgorithmBINK2002
	AlgorithmCONFID
)

// ChannelRange is a DPC ("Default Product Channel") entry: a
// contiguous range of channel IDs, optionally flagged as evaluation
// media (spec §4.7, §6 "DPC table").
type ChannelRange struct {
	Min, Max     int
	IsEvaluation bool
}

// BinkEntry is one fully-loaded curve parameter bundle, keyed by its
// 2-character hex BINK identifier.
type BinkEntry struct {
	ID        string
	Curve     *curve.Curve
	Priv      *big.Int // nil if only the public key is available
	Algorithm Algorithm
	DPC       []ChannelRange
}

// Flavour is one variant of a product (retail vs. OEM, etc.): an
// ordered list of BINK IDs (index 0 = retail, 1 = OEM per spec §6).
// Channel ranges are kept per BINK entry (BinkEntry.DPC), not here.
type Flavour struct {
	Name  string
	Binks []string
}

// Product describes one SKU's metadata and available flavours.
type Product struct {
	Code           string
	Name           string
	DefaultFlavour string
	Flavours       map[string]Flavour
}

// Registry is the immutable, in-memory table populated once at process
// start (spec §4.7, §5 "Shared state").
type Registry struct {
	binks    map[string]*BinkEntry
	products map[string]*Product
}

// NewRegistry returns an empty registry; callers populate it via
// AddBink/AddProduct before handing it to generators.
func NewRegistry() *Registry {
	return &Registry{
		binks:    make(map[string]*BinkEntry),
		products: make(map[string]*Product),
	}
}

// AddBink registers a curve parameter bundle under its BINK ID.
func (r *Registry) AddBink(e *BinkEntry) {
	r.binks[e.ID] = e
}

// AddProduct registers a product's metadata.
func (r *Registry) AddProduct(p *Product) {
	r.products[p.Code] = p
}

// Bink looks up a BINK entry by ID.
func (r *Registry) Bink(id string) (*BinkEntry, error) {
	e, ok := r.binks[id]
	if !ok {
		return nil, fmt.Errorf("sku: Bink(%q): %w", id, umskterr.ErrUnknownSku)
	}
	return e, nil
}

// Product looks up a product by code.
func (r *Registry) Product(code string) (*Product, error) {
	p, ok := r.products[code]
	if !ok {
		return nil, fmt.Errorf("sku: Product(%q): %w", code, umskterr.ErrUnknownSku)
	}
	return p, nil
}

// ResolveFlavour returns the named flavour of a product, or its
// default flavour if flavourName is empty.
func (p *Product) ResolveFlavour(flavourName string) (Flavour, error) {
	if flavourName == "" {
		flavourName = p.DefaultFlavour
	}
	f, ok := p.Flavours[flavourName]
	if !ok {
		return Flavour{}, fmt.Errorf("sku: ResolveFlavour(%q): %w", flavourName, umskterr.ErrUnknownSku)
	}
	return f, nil
}

// DefaultChannelID returns the first non-evaluation channel ID in a
// BINK entry's DPC table, used when the caller does not specify one.
func (e *BinkEntry) DefaultChannelID() (int, error) {
	for _, r := range e.DPC {
		if !r.IsEvaluation {
			return r.Min, nil
		}
	}
	if len(e.DPC) > 0 {
		return e.DPC[0].Min, nil
	}
	return 0, fmt.Errorf("sku: DefaultChannelID(%q): %w", e.ID, umskterr.ErrMissingParameter)
}

// SelectAlgorithm mirrors pidgen3.SelectScheme for a BinkEntry that
// hasn't had its Algorithm field set explicitly: BINK1998 for fields of
// at most 385 bits (p < 2^385), BINK2002 otherwise (spec §9 "Dynamic
// dispatch").
func SelectAlgorithm(fieldBitLen int) Algorithm {
	const threshold = 385
	if fieldBitLen <= threshold {
		return AlgorithmBINK1998
	}
	return AlgorithmBINK2002
}
