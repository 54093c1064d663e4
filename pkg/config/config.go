// Package config loads the JSON parameter document described in spec
// §6 ("Parameter file format") and turns it into sku.Registry entries
// and confid.Params bundles. Loading this document is explicitly out
// of core scope (spec §1 Non-goals); this package is the passive
// loader the front-end calls into.
package config

import (
	"embed"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/umskt/umskt-go/pkg/confid"
	"github.com/umskt/umskt-go/pkg/curve"
	"github.com/umskt/umskt-go/pkg/sku"
	"github.com/umskt/umskt-go/pkg/umskterr"
)

//go:embed data/default_params.json
var embeddedParams embed.FS

const defaultParamsPath = "data/default_params.json"

type pointJSON struct {
	X string `json:"x"`
	Y string `json:"y"`
}

type binkJSON struct {
	P    string    `json:"p"`
	A    string    `json:"a"`
	B    string    `json:"b"`
	G    pointJSON `json:"g"`
	Pub  pointJSON `json:"pub"`
	N    string    `json:"n"`
	Priv string    `json:"priv"`
}

type dpcRangeJSON struct {
	Min          int  `json:"min"`
	Max          int  `json:"max"`
	IsEvaluation bool `json:"isEvaluation"`
}

type flavourJSON struct {
	Bink []string                  `json:"BINK"`
	DPC  map[string][]dpcRangeJSON `json:"DPC"`
}

type productJSON struct {
	Name     string                 `json:"name"`
	Bink     string                 `json:"BINK"`
	Meta     map[string]string      `json:"meta"`
	Flavours map[string]flavourJSON `json:"flavours"`
}

type activationJSON struct {
	X           []string `json:"x"`
	P           string   `json:"p"`
	Priv        string   `json:"priv"`
	Quotient    string   `json:"quotient"`
	NonResidue  string   `json:"non_residue"`
	IIDKey      string   `json:"iid_key"`
	IsOffice    bool     `json:"isOffice"`
	IsXPBrand   bool     `json:"isXPBrand"`
	FlagVersion int      `json:"flagVersion"`
}

// Document is the parsed shape of the top-level JSON parameter file.
type Document struct {
	BINK       map[string]binkJSON       `json:"BINK"`
	Products   map[string]productJSON    `json:"products"`
	Activation map[string]activationJSON `json:"activation"`
}

func bigFromDecimal(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("config: %q is not a valid decimal integer: %w", s, umskterr.ErrMissingParameter)
	}
	return v, nil
}

// Load reads and parses a parameter document from path, or from the
// module's embedded default if path is empty (spec §6 "--file
// overrides the embedded parameter file").
func Load(path string) (*Document, error) {
	var raw []byte
	var err error
	if path == "" {
		raw, err = embeddedParams.ReadFile(defaultParamsPath)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("config: Load: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config: Load: %w", err)
	}
	return &doc, nil
}

// BuildRegistry turns a parsed Document into a populated sku.Registry,
// resolving every BINK's decimal strings into big.Int curve parameters
// and asserting on-curve fidelity at load time (spec §4.1 fidelity
// requirement).
func (d *Document) BuildRegistry() (*sku.Registry, error) {
	reg := sku.NewRegistry()

	for id, b := range d.BINK {
		entry, err := buildBinkEntry(id, b)
		if err != nil {
			return nil, err
		}
		reg.AddBink(entry)
	}

	for code, p := range d.Products {
		product := &sku.Product{
			Code:     code,
			Name:     p.Name,
			Flavours: make(map[string]sku.Flavour),
		}
		for name, fl := range p.Flavours {
			product.Flavours[name] = sku.Flavour{Name: name, Binks: fl.Bink}
			if product.DefaultFlavour == "" {
				product.DefaultFlavour = name
			}
		}
		reg.AddProduct(product)
	}

	return reg, nil
}

func buildBinkEntry(id string, b binkJSON) (*sku.BinkEntry, error) {
	p, err := bigFromDecimal(b.P)
	if err != nil {
		return nil, err
	}
	a, err := bigFromDecimal(b.A)
	if err != nil {
		return nil, err
	}
	bb, err := bigFromDecimal(b.B)
	if err != nil {
		return nil, err
	}
	gx, err := bigFromDecimal(b.G.X)
	if err != nil {
		return nil, err
	}
	gy, err := bigFromDecimal(b.G.Y)
	if err != nil {
		return nil, err
	}
	n, err := bigFromDecimal(b.N)
	if err != nil {
		return nil, err
	}

	c, err := curve.New(p, a, bb, curve.Point{X: gx, Y: gy}, n)
	if err != nil {
		return nil, fmt.Errorf("config: BINK %s: %w", id, err)
	}

	pubX, err := bigFromDecimal(b.Pub.X)
	if err != nil {
		return nil, err
	}
	pubY, err := bigFromDecimal(b.Pub.Y)
	if err != nil {
		return nil, err
	}
	if !c.OnCurve(curve.Point{X: pubX, Y: pubY}) {
		return nil, fmt.Errorf("config: BINK %s: public key: %w", id, umskterr.ErrNotOnCurve)
	}

	var priv *big.Int
	if b.Priv != "" {
		priv, err = bigFromDecimal(b.Priv)
		if err != nil {
			return nil, err
		}
	}

	algo := sku.SelectAlgorithm(p.BitLen())

	return &sku.BinkEntry{ID: id, Curve: c, Priv: priv, Algorithm: algo}, nil
}

// BuildActivationParams resolves one named activation curve's JSON
// record into a confid.Params bundle (spec §6 "activation" table,
// §4.6 sextic + 128-bit private scalar + iid_key).
func (d *Document) BuildActivationParams(name string) (*confid.Params, error) {
	a, ok := d.Activation[name]
	if !ok {
		return nil, fmt.Errorf("config: BuildActivationParams(%q): %w", name, umskterr.ErrUnknownSku)
	}
	if len(a.X) != 6 {
		return nil, fmt.Errorf("config: activation %q: sextic needs 6 coefficients: %w", name, umskterr.ErrMissingParameter)
	}

	modulus, err := bigFromDecimal(a.P)
	if err != nil {
		return nil, err
	}
	nonResidue, err := bigFromDecimal(a.NonResidue)
	if err != nil {
		return nil, err
	}
	priv, err := bigFromDecimal(a.Priv)
	if err != nil {
		return nil, err
	}

	sextic := make([]*big.Int, 6)
	for i, s := range a.X {
		v, err := bigFromDecimal(s)
		if err != nil {
			return nil, err
		}
		sextic[i] = v
	}

	field := confid.NewField(modulus, nonResidue)
	c := confid.NewCurve(field, sextic)

	mask64 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(1))
	privLo := new(big.Int).And(priv, mask64).Uint64()
	privHi := new(big.Int).Rsh(priv, 64).Uint64()

	iidKeyInt, err := bigFromDecimal(a.IIDKey)
	if err != nil {
		return nil, err
	}
	var iidKey [4]byte
	for i := 0; i < 4; i++ {
		iidKey[i] = byte(new(big.Int).Rsh(iidKeyInt, uint(8*i)).Uint64() & 0xFF)
	}

	return &confid.Params{
		Curve:       c,
		PrivLo:      privLo,
		PrivHi:      privHi,
		IIDKey:      iidKey,
		IsOffice:    a.IsOffice,
		IsXPBrand:   a.IsXPBrand,
		FlagVersion: byte(a.FlagVersion),
	}, nil
}
