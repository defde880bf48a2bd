// Package description composes human-readable appointment descriptions by layering
// add-on phrases over a basic description.
package description

import (
	"fmt"

	"github.com/jwalitptl/dental-clinic/internal/model"
)

const (
	whiteningSuffix = ", including teeth whitening"
	xraySuffix      = ", including X-ray"
)

type Describer interface {
	Description() string
}

type Basic struct {
	appointment model.Appointment
}

func NewBasic(apt model.Appointment) *Basic {
	return &Basic{appointment: apt}
}

func (b *Basic) Description() string {
	return fmt.Sprintf("Basic appointment with %s", b.appointment.Dentist.Name)
}

// Whitening appends the teeth whitening add-on to the wrapped description.
type Whitening struct {
	inner Describer
}

func WithWhitening(inner Describer) *Whitening {
	return &Whitening{inner: inner}
}

func (w *Whitening) Description() string {
	return w.inner.Description() + whiteningSuffix
}

// XRay appends the X-ray add-on to the wrapped description.
type XRay struct {
	inner Describer
}

func WithXRay(inner Describer) *XRay {
	return &XRay{inner: inner}
}

func (x *XRay) Description() string {
	return x.inner.Description() + xraySuffix
}
