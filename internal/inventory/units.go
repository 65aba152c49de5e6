// Package inventory implements the stock rules of the kitchen: item types,
// units of measure and their conversions, quantity rounding, stock status and
// validation of items and recipe lines.
package inventory

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidConversion = errors.New("invalid unit conversion")
	ErrUnknownUnit       = errors.New("unknown unit of measure")
)

// Unit is a unit of measure.
type Unit string

const (
	Milligram  Unit = "MILLIGRAM"
	Gram       Unit = "GRAM"
	Kilogram   Unit = "KILOGRAM"
	Ounce      Unit = "OUNCE"
	Pound      Unit = "POUND"
	Milliliter Unit = "MILLILITER"
	Liter      Unit = "LITER"
	Gallon     Unit = "GALLON"
	UnitCount  Unit = "UNIT"
)

// UnitCategory groups units that convert into each other.
type UnitCategory string

const (
	CategoryMass   UnitCategory = "MASS"
	CategoryVolume UnitCategory = "VOLUME"
	CategoryCount  UnitCategory = "COUNT"
)

type unitInfo struct {
	category UnitCategory
	factor   float64 // multiples of the category base unit
}

// Base units: GRAM, MILLILITER, UNIT.
var units = map[Unit]unitInfo{
	Milligram:  {CategoryMass, 0.001},
	Gram:       {CategoryMass, 1},
	Kilogram:   {CategoryMass, 1000},
	Ounce:      {CategoryMass, 28.349523125},
	Pound:      {CategoryMass, 453.59237},
	Milliliter: {CategoryVolume, 1},
	Liter:      {CategoryVolume, 1000},
	Gallon:     {CategoryVolume, 3785.411784},
	UnitCount:  {CategoryCount, 1},
}

// AllUnits lists every unit grouped by category, base unit first.
var AllUnits = []Unit{
	Gram, Milligram, Kilogram, Ounce, Pound,
	Milliliter, Liter, Gallon,
	UnitCount,
}

var baseUnits = map[UnitCategory]Unit{
	CategoryMass:   Gram,
	CategoryVolume: Milliliter,
	CategoryCount:  UnitCount,
}

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	_, ok := units[u]
	return ok
}

// Category returns the unit's category, or "" for unknown units.
func (u Unit) Category() UnitCategory {
	return units[u].category
}

// Base returns the base unit of u's category.
func (u Unit) Base() Unit {
	return baseUnits[u.Category()]
}

// IsCount reports whether u is the count unit, which only holds whole numbers.
func (u Unit) IsCount() bool {
	return u.Category() == CategoryCount
}

// AreUnitsCompatible reports whether a and b belong to the same category.
func AreUnitsCompatible(a, b Unit) bool {
	ia, okA := units[a]
	ib, okB := units[b]
	return okA && okB && ia.category == ib.category
}

// GetCompatibleUnits returns every unit sharing u's category, u included.
func GetCompatibleUnits(u Unit) []Unit {
	info, ok := units[u]
	if !ok {
		return nil
	}
	var out []Unit
	for _, other := range AllUnits {
		if units[other].category == info.category {
			out = append(out, other)
		}
	}
	return out
}

// ConvertQuantity converts qty from one unit to another of the same category.
// Converting across categories is a programming or data error and fails with
// ErrInvalidConversion.
func ConvertQuantity(qty float64, from, to Unit) (float64, error) {
	fi, ok := units[from]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, from)
	}
	ti, ok := units[to]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, to)
	}
	if fi.category != ti.category {
		return 0, fmt.Errorf("%w: %s (%s) to %s (%s)", ErrInvalidConversion, from, fi.category, to, ti.category)
	}
	if from == to {
		return qty, nil
	}
	return qty * fi.factor / ti.factor, nil
}

var unitAliases = map[string]Unit{
	"mg": Milligram, "miligramo": Milligram, "miligramos": Milligram,
	"g": Gram, "gr": Gram, "gramo": Gram, "gramos": Gram,
	"kg": Kilogram, "kilo": Kilogram, "kilos": Kilogram, "kilogramo": Kilogram, "kilogramos": Kilogram,
	"oz": Ounce, "onza": Ounce, "onzas": Ounce,
	"lb": Pound, "lbs": Pound, "libra": Pound, "libras": Pound,
	"ml": Milliliter, "mililitro": Milliliter, "mililitros": Milliliter,
	"l": Liter, "lt": Liter, "ltr": Liter, "litro": Liter, "litros": Liter,
	"gal": Gallon, "galon": Gallon, "galones": Gallon,
	"u": UnitCount, "und": UnitCount, "unid": UnitCount, "unidad": UnitCount, "unidades": UnitCount,
	"pcs": UnitCount, "pz": UnitCount, "pieza": UnitCount, "piezas": UnitCount,
}

// ParseUnit accepts canonical unit names ("KILOGRAM") and the usual short
// forms written on the kitchen floor ("kg", "lt", "und").
func ParseUnit(s string) (Unit, error) {
	s = strings.TrimSpace(s)
	if u := Unit(strings.ToUpper(s)); u.Valid() {
		return u, nil
	}
	if u, ok := unitAliases[strings.ToLower(strings.TrimSuffix(s, "."))]; ok {
		return u, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}
