// Package scene holds the shared annotation scene: review layers, comment
// pins, and vector markups. The store is the single source of truth for
// rendering, hit testing, and persistence sync.
package scene

import "image/color"

// LayerKey identifies one of the fixed review layers.
type LayerKey string

const (
	LayerCustomer LayerKey = "customer"
	LayerDesigner LayerKey = "designer"
	LayerManager  LayerKey = "manager"
)

// LayerConfig describes a review layer's fixed presentation.
type LayerConfig struct {
	Key   LayerKey
	Label string
	Color color.NRGBA
}

// Layers lists the review layers in display order. The set is fixed for the
// life of a session.
var Layers = []LayerConfig{
	{Key: LayerCustomer, Label: "Customer", Color: color.NRGBA{R: 0x4f, G: 0x7f, B: 0xff, A: 0xff}},
	{Key: LayerDesigner, Label: "Designer", Color: color.NRGBA{R: 0x22, G: 0xc0, B: 0x7a, A: 0xff}},
	{Key: LayerManager, Label: "Manager", Color: color.NRGBA{R: 0xf2, G: 0x5a, B: 0x5a, A: 0xff}},
}

// LayerByKey returns the configuration for a layer key, or false if the key
// is not one of the fixed layers.
func LayerByKey(key LayerKey) (LayerConfig, bool) {
	for _, l := range Layers {
		if l.Key == key {
			return l, true
		}
	}
	return LayerConfig{}, false
}
