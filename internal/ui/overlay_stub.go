//go:build !ebiten

package ui

import "sandfall/internal/core"

// Overlay is a no-op placeholder used when the ebiten build tag is absent.
type Overlay struct{}

// NewOverlay constructs a stub overlay.
func NewOverlay(core.Sim, int) *Overlay { return &Overlay{} }

// Update is a no-op in headless builds.
func (o *Overlay) Update() {}

// ShowRegion always reports false in headless builds.
func (o *Overlay) ShowRegion() bool { return false }

// SetCursor is a no-op in headless builds.
func (o *Overlay) SetCursor(int, int, int) {}

// Draw is a no-op placeholder.
func (o *Overlay) Draw(any) {}
