package attention

import (
	"fmt"
	"strings"
)

// Feature names accepted by NewFeature.
const (
	NameCenterBias     = "center_bias"
	NameContrast       = "contrast"
	NameEdgeDensity    = "edge_density"
	NameCenterSurround = "center_surround"
)

// FeatureNames lists the built-in features in a stable order.
func FeatureNames() []string {
	return []string{NameCenterBias, NameContrast, NameEdgeDensity, NameCenterSurround}
}

// Options carries per-feature configuration for NewFeature. Zero sigmas
// select the CenterSurround defaults.
type Options struct {
	SigmaCenter   float64
	SigmaSurround float64
}

// NewFeature builds a built-in feature by name.
//
// Names are matched case-insensitively and may use '-' in place of '_'.
// Unknown names yield ErrInvalidConfiguration, as do sigmas rejected by
// NewCenterSurround.
func NewFeature(name string, opts Options) (Feature, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	switch key {
	case NameCenterBias:
		return NewCenterBias(), nil
	case NameContrast:
		return NewContrast(), nil
	case NameEdgeDensity:
		return NewEdgeDensity(), nil
	case NameCenterSurround:
		sc, ss := opts.SigmaCenter, opts.SigmaSurround
		if sc == 0 {
			sc = DefaultSigmaCenter
		}
		if ss == 0 {
			ss = DefaultSigmaSurround
		}
		return NewCenterSurround(sc, ss)
	default:
		return nil, fmt.Errorf("%w: unknown feature %q (want one of %s)",
			ErrInvalidConfiguration, name, strings.Join(FeatureNames(), ", "))
	}
}
