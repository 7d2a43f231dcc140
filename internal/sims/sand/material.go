package sand

import (
	"fmt"
	"image/color"
	"strings"
)

// MaterialID enumerates the kinds of matter a cell can hold.
type MaterialID uint8

const (
	Empty MaterialID = iota
	Wall
	Stone
	Sand
	Water
	Oil
	Steam

	numMaterials
)

// Mobility selects the movement rule applied to a material.
type Mobility uint8

const (
	Static Mobility = iota
	Granular
	Liquid
	Gas
)

func (m Mobility) String() string {
	switch m {
	case Static:
		return "static"
	case Granular:
		return "granular"
	case Liquid:
		return "liquid"
	case Gas:
		return "gas"
	default:
		return fmt.Sprintf("mobility(%d)", uint8(m))
	}
}

// Material is the immutable descriptor for a MaterialID.
type Material struct {
	ID       MaterialID
	Name     string
	Mobility Mobility
	// Density orders mobile materials: a denser mover displaces a lighter one.
	Density   uint8
	Color     color.RGBA
	Placeable bool
}

// Mobile reports whether the material ever moves.
func (m Material) Mobile() bool { return m.ID != Empty && m.Mobility != Static }

var materials = [numMaterials]Material{
	Empty: {ID: Empty, Name: "empty", Mobility: Static, Color: color.RGBA{A: 255}},
	Wall:  {ID: Wall, Name: "wall", Mobility: Static, Density: 255, Color: color.RGBA{R: 60, G: 60, B: 70, A: 255}},
	Stone: {ID: Stone, Name: "stone", Mobility: Static, Density: 255, Color: color.RGBA{R: 128, G: 128, B: 128, A: 255}, Placeable: true},
	Sand:  {ID: Sand, Name: "sand", Mobility: Granular, Density: 9, Color: color.RGBA{R: 194, G: 178, B: 128, A: 255}, Placeable: true},
	Water: {ID: Water, Name: "water", Mobility: Liquid, Density: 5, Color: color.RGBA{R: 64, G: 120, B: 220, A: 255}, Placeable: true},
	Oil:   {ID: Oil, Name: "oil", Mobility: Liquid, Density: 4, Color: color.RGBA{R: 110, G: 70, B: 40, A: 255}, Placeable: true},
	Steam: {ID: Steam, Name: "steam", Mobility: Gas, Density: 1, Color: color.RGBA{R: 200, G: 210, B: 220, A: 255}, Placeable: true},
}

// Lookup returns the descriptor for id. Ids outside the closed set are a
// programming error.
func Lookup(id MaterialID) Material {
	if id >= numMaterials {
		panic(fmt.Sprintf("sand: unknown material id %d", id))
	}
	return materials[id]
}

// Materials lists every material in id order.
func Materials() []Material {
	out := make([]Material, len(materials))
	copy(out, materials[:])
	return out
}

// Placeable lists the materials a brush may inject, in id order.
func Placeable() []MaterialID {
	var ids []MaterialID
	for _, m := range materials {
		if m.Placeable {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// ParseMaterial resolves a material by name.
func ParseMaterial(name string) (MaterialID, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, m := range materials {
		if m.Name == key {
			return m.ID, nil
		}
	}
	return Empty, fmt.Errorf("unknown material %q", name)
}

func (id MaterialID) String() string {
	if id >= numMaterials {
		return fmt.Sprintf("material(%d)", uint8(id))
	}
	return materials[id].Name
}
