package models

import "TTVPull/pkg/uncert"

// PlanetProperties is the catalog record for a planet. Period and transit
// time carry asymmetric errors; the engine consumes the symmetric proxy
// max(upper, lower) as the standard deviation.
type PlanetProperties struct {
	Name             string
	CatalogID        int64
	OrbitalPeriod    float64 // days
	OrbitalPeriodErr float64 // max(upper, lower), days
	TransitTime      float64 // BJD
	TransitTimeErr   float64 // max(upper, lower), days
	StellarMass      float64 // solar masses
	PlanetMass       float64 // Jupiter masses
	MassReference    string
}

// Ephemeris is the linear transit model T(n) = ZeroEpoch + n*Period.
type Ephemeris struct {
	ZeroEpoch uncert.Value `json:"zero_epoch"` // BJD
	Period    uncert.Value `json:"period"`     // days
}

// Predict returns the predicted transit-center time for epoch n with
// propagated uncertainty.
func (e Ephemeris) Predict(n int) uncert.Value {
	return e.ZeroEpoch.Add(e.Period.MulScalar(float64(n)))
}

// Ephemeris derives the reference linear ephemeris from catalog properties.
func (p *PlanetProperties) Ephemeris() Ephemeris {
	return Ephemeris{
		ZeroEpoch: uncert.New(p.TransitTime, p.TransitTimeErr),
		Period:    uncert.New(p.OrbitalPeriod, p.OrbitalPeriodErr),
	}
}
