// Command umskt is the front-end for the product-key and Confirmation
// ID core: argument parsing, SKU listing, and the embedded/overridden
// parameter file (spec §1 "out of scope" front-end, §6 "External
// interfaces"). It contains no cryptography of its own; every verb
// maps to one call into pkg/pidgen3 or pkg/confid. PIDGEN2 keys are
// not reachable from this command.
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/umskt/umskt-go/pkg/config"
	"github.com/umskt/umskt-go/pkg/pidgen3"
	"github.com/umskt/umskt-go/pkg/sku"
)

const (
	exitSuccess = 0
	exitInvalid = 1
	exitConfig  = 2
)

func newLogger(verbose, debug bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		// Logging setup failing is itself not fatal to the core; fall
		// back to a no-op logger rather than aborting key generation.
		logger = zap.NewNop()
	}
	return logger.Sugar()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		args = []string{"generate"}
	}
	verb := args[0]
	rest := args[1:]

	fs := flag.NewFlagSet(verb, flag.ContinueOnError)
	product := fs.String("product", "", "product code")
	flavour := fs.String("flavour", "", "product flavour")
	binkID := fs.String("bink", "", "explicit BINK id, overriding the product's default")
	channelID := fs.Int("channelid", 640, "channel id (000-999)")
	serial := fs.Int("serial", 111111, "serial number (BINK1998 only)")
	authData := fs.Int("authdata", 0, "auth info (BINK2002 only)")
	upgrade := fs.Bool("upgrade", false, "set the upgrade bit")
	number := fs.Int("number", 1, "number of keys to generate")
	filePath := fs.String("file", "", "override the embedded parameter file")
	verbose := fs.Bool("verbose", false, "enable info-level logging")
	debug := fs.Bool("debug", false, "enable debug-level logging")
	installationID := fs.String("installationid", "", "installation id (confirmationid verb)")
	productID := fs.String("productid", "", "product id (confirmationid verb, Office branding)")

	if err := fs.Parse(rest); err != nil {
		return exitConfig
	}

	log := newLogger(*verbose, *debug)
	defer log.Sync() //nolint:errcheck // best-effort flush on exit

	doc, err := config.Load(*filePath)
	if err != nil {
		log.Errorw("failed to load parameter file", "error", err)
		return exitConfig
	}
	registry, err := doc.BuildRegistry()
	if err != nil {
		log.Errorw("failed to build sku registry", "error", err)
		return exitConfig
	}

	switch verb {
	case "generate":
		return cmdGenerate(log, registry, *product, *flavour, *binkID, *channelID, *serial, *authData, *upgrade, *number)
	case "validate":
		if fs.NArg() == 0 {
			fmt.Fprintln(os.Stderr, "validate: missing key argument")
			return exitInvalid
		}
		return cmdValidate(log, registry, *product, *flavour, *binkID, fs.Arg(0))
	case "confirmationid":
		return cmdConfirmationID(log, doc, *installationID, *productID)
	case "list":
		return cmdList(registry, doc)
	default:
		fmt.Fprintf(os.Stderr, "unknown verb %q\n", verb)
		return exitInvalid
	}
}

func resolveBink(registry *sku.Registry, product, flavour, binkOverride string) (*sku.BinkEntry, error) {
	if binkOverride != "" {
		return registry.Bink(binkOverride)
	}
	p, err := registry.Product(product)
	if err != nil {
		return nil, err
	}
	fl, err := p.ResolveFlavour(flavour)
	if err != nil {
		return nil, err
	}
	if len(fl.Binks) == 0 {
		return nil, fmt.Errorf("umskt: flavour %q has no BINK entries", fl.Name)
	}
	return registry.Bink(fl.Binks[0])
}

func cmdGenerate(log *zap.SugaredLogger, registry *sku.Registry, product, flavour, binkOverride string, channelID, serial, authData int, upgrade bool, number int) int {
	entry, err := resolveBink(registry, product, flavour, binkOverride)
	if err != nil {
		log.Errorw("generate: could not resolve BINK entry", "error", err)
		return exitConfig
	}
	if entry.Priv == nil {
		log.Errorw("generate: BINK entry has no private key loaded")
		return exitConfig
	}

	scheme := pidgen3.SelectScheme(entry.Curve.P)
	pub := entry.Curve.BaseMul(entry.Priv)

	for i := 0; i < number; i++ {
		var key string
		var genErr error

		switch scheme {
		case pidgen3.BINK1998:
			params, err := pidgen3.NewBink1998Params(entry.Curve, pub, entry.Priv)
			if err != nil {
				log.Errorw("generate: bad BINK1998 params", "error", err)
				return exitConfig
			}
			key, genErr = params.Generate(pidgen3.Bink1998Info{IsUpgrade: upgrade, Serial: uint32(serial)}, rand.Reader)
		case pidgen3.BINK2002:
			params, err := pidgen3.NewBink2002Params(entry.Curve, pub, entry.Priv)
			if err != nil {
				log.Errorw("generate: bad BINK2002 params", "error", err)
				return exitConfig
			}
			key, genErr = params.Generate(pidgen3.Bink2002Info{
				IsUpgrade: upgrade,
				ChannelID: uint16(channelID),
				AuthInfo:  uint16(authData),
			}, rand.Reader)
		}

		if genErr != nil {
			log.Errorw("generate: key generation failed", "error", genErr)
			return exitInvalid
		}
		grouped := key[0:5]
		for j := 5; j < len(key); j += 5 {
			grouped += "-" + key[j:j+5]
		}
		fmt.Println(grouped)
	}
	return exitSuccess
}

func cmdValidate(log *zap.SugaredLogger, registry *sku.Registry, product, flavour, binkOverride, key string) int {
	entry, err := resolveBink(registry, product, flavour, binkOverride)
	if err != nil {
		log.Errorw("validate: could not resolve BINK entry", "error", err)
		return exitConfig
	}

	scheme := pidgen3.SelectScheme(entry.Curve.P)
	var pub = entry.Curve.G
	if entry.Priv != nil {
		pub = entry.Curve.BaseMul(entry.Priv)
	}

	var ok bool
	switch scheme {
	case pidgen3.BINK1998:
		params, err := pidgen3.NewBink1998Params(entry.Curve, pub, nil)
		if err != nil {
			log.Errorw("validate: bad BINK1998 params", "error", err)
			return exitConfig
		}
		ok, err = params.Validate(key)
		if err != nil {
			log.Errorw("validate: error", "error", err)
			return exitConfig
		}
	case pidgen3.BINK2002:
		params, err := pidgen3.NewBink2002Params(entry.Curve, pub, nil)
		if err != nil {
			log.Errorw("validate: bad BINK2002 params", "error", err)
			return exitConfig
		}
		ok, err = params.Validate(key)
		if err != nil {
			log.Errorw("validate: error", "error", err)
			return exitConfig
		}
	}

	if !ok {
		fmt.Println("invalid")
		return exitInvalid
	}
	fmt.Println("valid")
	return exitSuccess
}

func cmdConfirmationID(log *zap.SugaredLogger, doc *config.Document, installationID, productID string) int {
	if installationID == "" {
		fmt.Fprintln(os.Stderr, "confirmationid: --installationid is required")
		return exitInvalid
	}
	for name := range doc.Activation {
		params, err := doc.BuildActivationParams(name)
		if err != nil {
			log.Errorw("confirmationid: bad activation params", "name", name, "error", err)
			continue
		}
		cid, err := params.Generate(installationID, productID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "confirmationid: %v\n", err)
			return exitInvalid
		}
		fmt.Println(cid)
		return exitSuccess
	}
	fmt.Fprintln(os.Stderr, "confirmationid: no activation parameters configured")
	return exitConfig
}

func cmdList(registry *sku.Registry, doc *config.Document) int {
	for code := range doc.Products {
		p, err := registry.Product(code)
		if err != nil {
			continue
		}
		fmt.Printf("%s: %s\n", p.Code, p.Name)
		for name, fl := range p.Flavours {
			fmt.Printf("  %s: %v\n", name, fl.Binks)
		}
	}
	return exitSuccess
}
