package sand

import "testing"

func TestParseMaterial(t *testing.T) {
	id, err := ParseMaterial(" Water ")
	if err != nil || id != Water {
		t.Fatalf("ParseMaterial(Water) = %v, %v", id, err)
	}
	if _, err := ParseMaterial("lava"); err == nil {
		t.Fatal("expected error for unknown material")
	}
}

func TestPlaceableExcludesFixtures(t *testing.T) {
	for _, id := range Placeable() {
		if id == Empty || id == Wall {
			t.Fatalf("%v must not be placeable", id)
		}
	}
	if len(Placeable()) != 5 {
		t.Fatalf("expected 5 placeable materials, got %d", len(Placeable()))
	}
}

func TestDensityOrdering(t *testing.T) {
	if !(Lookup(Sand).Density > Lookup(Water).Density &&
		Lookup(Water).Density > Lookup(Oil).Density &&
		Lookup(Oil).Density > Lookup(Steam).Density) {
		t.Fatal("densities must order sand > water > oil > steam")
	}
	for _, m := range Materials() {
		if m.ID == Empty && m.Mobile() {
			t.Fatal("empty must not be mobile")
		}
		if (m.ID == Wall || m.ID == Stone) && m.Mobile() {
			t.Fatalf("%s must be static", m.Name)
		}
	}
}

func TestLookupUnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown material")
		}
	}()
	Lookup(numMaterials)
}
